package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/monist/pkg/config"
	"github.com/matzehuels/monist/pkg/executor"
	"github.com/matzehuels/monist/pkg/monorepo"
)

// execFlags are the flags shared by the commands that run something in
// every member.
type execFlags struct {
	serial      bool
	localDeps   string
	inhibit     bool
	concurrency int
	tui         bool
}

func (f *execFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.serial, "serial", false, "run the members of a batch one after the other")
	cmd.Flags().StringVar(&f.localDeps, "local-deps", "", "make local dependencies available first: none, link, install or symlink")
	cmd.Flags().BoolVar(&f.inhibit, "inhibit-subprocess-output", false, "discard the output of the commands")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "maximum number of parallel commands per batch (0: no limit)")
	cmd.Flags().BoolVar(&f.tui, "tui", false, "show a live progress view instead of the command output")

	// Everything after the first argument belongs to the command.
	cmd.Flags().SetInterspersed(false)
}

// overrides returns the flags the user set explicitly. Flags left at their
// defaults do not override the configuration.
func (f *execFlags) overrides(cmd *cobra.Command) config.CommonOptions {
	var o config.CommonOptions
	if cmd.Flags().Changed("serial") {
		o.Serial = &f.serial
	}
	if cmd.Flags().Changed("local-deps") {
		o.LocalDeps = &f.localDeps
	}
	if cmd.Flags().Changed("inhibit-subprocess-output") {
		o.InhibitSubprocessOutput = &f.inhibit
	}
	return o
}

// runCommand creates the run command executing an npm script in every member.
func (c *CLI) runCommand() *cobra.Command {
	var flags execFlags
	cmd := &cobra.Command{
		Use:   "run <script> [args...]",
		Short: "Run an npm script in every member",
		Long: `Run an npm script in every member, dependencies first.

Batches run one after the other; the members of a batch run in parallel
unless --serial is given. Options for a script can be stored in the
configuration under cliOptions.run.<script>, or cliOptions.run."*" for
every script. Flags given on the command line take precedence.`,
		Example: `  monist run build
  monist run --serial --local-deps link test -- --coverage`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			npmArgs := []string{"run", args[0]}
			if len(args) > 1 {
				npmArgs = append(append(npmArgs, "--"), args[1:]...)
			}
			return c.execute(cmd, "run", args, &flags, executor.Static("npm", npmArgs...))
		},
	}
	flags.register(cmd)
	return cmd
}

// npmCommand creates the npm command passing its arguments to npm in every member.
func (c *CLI) npmCommand() *cobra.Command {
	var flags execFlags
	cmd := &cobra.Command{
		Use:   "npm <args...>",
		Short: "Run npm with the given arguments in every member",
		Example: `  monist npm install
  monist npm --serial publish --access public`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.execute(cmd, "npm", args, &flags, executor.Static("npm", args...))
		},
	}
	flags.register(cmd)
	return cmd
}

// execCommand creates the exec command running an arbitrary program in every member.
func (c *CLI) execCommand() *cobra.Command {
	var flags execFlags
	cmd := &cobra.Command{
		Use:   "exec <program> [args...]",
		Short: "Run a program in every member",
		Long: `Run a program in every member, dependencies first.

The arguments may contain {name} and {dir}, which are replaced by the
package name and the directory of each member.`,
		Example: `  monist exec -- ls -la
  monist exec echo "{name} lives in {dir}"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.execute(cmd, "exec", args, &flags, executor.Expand(args[0], args[1:]...))
		},
	}
	flags.register(cmd)
	return cmd
}

// execute resolves the options of command and runs x across the plan.
func (c *CLI) execute(cmd *cobra.Command, command string, args []string, flags *execFlags, x executor.Command) error {
	top, err := c.top()
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig(top)
	if err != nil {
		return err
	}
	opts, err := config.Resolve(cfg, command, args, flags.overrides(cmd))
	if err != nil {
		return err
	}
	strategy, err := executor.ParseStrategy(opts.LocalDeps)
	if err != nil {
		return err
	}

	repo, err := monorepo.Load(top, monorepo.Options{Logger: c.Logger})
	if err != nil {
		return err
	}
	plan, err := repo.Plan()
	if err != nil {
		return err
	}

	policy := executor.Policy{
		Serial:         opts.Serial,
		LocalDeps:      strategy,
		SuppressOutput: opts.InhibitSubprocessOutput,
		BuildDir:       cfg.BuildDir,
		Concurrency:    flags.concurrency,
	}
	c.Logger.Debug("resolved options", "command", command, "serial", policy.Serial,
		"localDeps", policy.LocalDeps, "inhibitSubprocessOutput", policy.SuppressOutput)

	prog := newProgress(c.Logger)
	if flags.tui {
		err = c.executeWithTUI(cmd.Context(), command+" "+args[0], plan, x, policy)
	} else {
		e := executor.New(c.runner, c.Logger)
		e.Stdout, e.Stderr = c.Stdout, c.Stderr
		err = e.Execute(cmd.Context(), plan, x, policy)
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Ran %s in %s", x.Program, plural(memberCount(plan), "member", "members")))
	return nil
}
