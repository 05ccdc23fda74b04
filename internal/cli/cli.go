// Package cli implements the monist command-line interface.
package cli

import (
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/monist/pkg/buildinfo"
	"github.com/matzehuels/monist/pkg/config"
	"github.com/matzehuels/monist/pkg/errors"
	"github.com/matzehuels/monist/pkg/executor"
	"github.com/matzehuels/monist/pkg/monorepo"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used as log prefix and in help texts.
const appName = "monist"

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	// Logger writes progress to standard output.
	Logger *log.Logger
	// ErrLogger writes failures to standard error.
	ErrLogger *log.Logger

	Stdout io.Writer
	Stderr io.Writer

	dir        string
	configPath string
	verbose    bool

	// runner starts the member commands; nil uses executor.ExecRunner.
	runner executor.Runner
}

// New creates a CLI writing to the given streams.
func New(stdout, stderr io.Writer) *CLI {
	return &CLI{
		Logger:    newLogger(stdout, log.InfoLevel),
		ErrLogger: newLogger(stderr, log.InfoLevel),
		Stdout:    stdout,
		Stderr:    stderr,
		dir:       ".",
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Monist runs npm commands across the packages of a monorepo",
		Long: `Monist manages monorepos of npm packages.

It finds the member packages declared in the "workspaces" field of the
root package.json, orders them by their local dependencies and runs
commands in every member, dependencies first. It also keeps the
dependency declarations, versions and scripts of the members consistent.`,
		Version:       buildinfo.Resolved(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.Logger.SetLevel(log.DebugLevel)
			}
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Stdout)
	root.SetErr(c.Stderr)

	root.PersistentFlags().StringVarP(&c.dir, "dir", "C", ".", "monorepo root directory")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "configuration file (default: monistrc.json, monist.toml or monist.yaml in the root)")

	root.AddCommand(c.planCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.npmCommand())
	root.AddCommand(c.execCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.updateVersionsCommand())
	root.AddCommand(c.setScriptCommand())
	root.AddCommand(c.delScriptCommand())
	root.AddCommand(c.lockfilesCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// ReportError logs a command failure the way users should see it.
func (c *CLI) ReportError(err error) {
	c.ErrLogger.Error(errors.UserMessage(err))
}

// =============================================================================
// Repository & Configuration
// =============================================================================

// top returns the absolute monorepo root.
func (c *CLI) top() (string, error) {
	top, err := filepath.Abs(c.dir)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "invalid directory %s", c.dir)
	}
	return top, nil
}

func (c *CLI) loadRepo() (*monorepo.Monorepo, error) {
	top, err := c.top()
	if err != nil {
		return nil, err
	}
	return monorepo.Load(top, monorepo.Options{Logger: c.Logger})
}

func (c *CLI) loadConfig(top string) (*config.Config, error) {
	cfg, err := config.Load(top, c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debugf("using configuration %s", cfg.Path)
	}
	return cfg, nil
}
