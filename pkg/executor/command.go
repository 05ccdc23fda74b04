package executor

import (
	"strings"

	"github.com/matzehuels/monist/pkg/errors"
	"github.com/matzehuels/monist/pkg/monorepo"
)

// Strategy selects how local dependencies are made available to a member
// before its command runs.
type Strategy int

const (
	// None leaves node_modules alone.
	None Strategy = iota
	// Link runs "npm link" against the build directory of the dependency.
	Link
	// Install runs "npm install --no-save" against the build directory.
	Install
	// Symlink points node_modules/<name> at the build directory directly.
	Symlink
)

// ParseStrategy maps the names used by the command line and the
// configuration to a Strategy. The empty string is None.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "none":
		return None, nil
	case "link":
		return Link, nil
	case "install":
		return Install, nil
	case "symlink":
		return Symlink, nil
	}
	return None, errors.New(errors.ErrCodeInvalidInput, "%q is not a supported localDeps value", s)
}

func (s Strategy) String() string {
	switch s {
	case None:
		return "none"
	case Link:
		return "link"
	case Install:
		return "install"
	case Symlink:
		return "symlink"
	}
	return "unknown"
}

// Policy controls how a plan is executed.
type Policy struct {
	Serial         bool     // Run the members of a batch one after the other
	LocalDeps      Strategy // Preparation of local dependencies
	SuppressOutput bool     // Discard the output of the commands
	BuildDir       string   // Build output directory, relative to a member
	Concurrency    int      // Maximum parallel commands per batch, <= 0 for no limit
}

// Command is what runs in every member. Args is called once per member.
type Command struct {
	Program string
	Args    func(m *monorepo.Member) []string
}

// Static returns a command with the same arguments for every member.
func Static(program string, args ...string) Command {
	return Command{
		Program: program,
		Args:    func(*monorepo.Member) []string { return args },
	}
}

// Expand returns a command whose arguments may contain the placeholders
// {name} and {dir}, replaced by the name and directory of each member.
func Expand(program string, args ...string) Command {
	return Command{
		Program: program,
		Args: func(m *monorepo.Member) []string {
			r := strings.NewReplacer("{name}", m.Name, "{dir}", m.Top)
			out := make([]string, len(args))
			for i, a := range args {
				out[i] = r.Replace(a)
			}
			return out
		},
	}
}

// argsFor returns the arguments of c for m.
func (c Command) argsFor(m *monorepo.Member) []string {
	if c.Args == nil {
		return nil
	}
	return c.Args(m)
}

// String renders the command line for m the way it is logged.
func (c Command) String(m *monorepo.Member) string {
	return strings.Join(append([]string{c.Program}, c.argsFor(m)...), " ")
}
