package config

import "github.com/matzehuels/monist/pkg/errors"

// Resolved is the outcome of merging configuration and command line flags.
type Resolved struct {
	Serial                  bool
	LocalDeps               string // Empty when local dependencies are left alone
	InhibitSubprocessOutput bool
}

// Resolve computes the execution options of command run with args. The
// first argument selects the script-specific entry of cliOptions.
//
// Options are applied in increasing precedence: the [Wildcard] entry of the
// command, the script entry, then the fields of flags that are set.
func Resolve(cfg *Config, command string, args []string, flags CommonOptions) (Resolved, error) {
	if len(args) == 0 {
		return Resolved{}, errors.New(errors.ErrCodeInvalidInput,
			"args must have a cmd property set which must contain at least one element")
	}

	merged := CommonOptions{}
	if cfg != nil {
		scripts := cfg.CLIOptions[command]
		merged = merged.merge(scripts[Wildcard])
		merged = merged.merge(scripts[args[0]])
	}
	merged = merged.merge(flags)

	var out Resolved
	if merged.Serial != nil {
		out.Serial = *merged.Serial
	}
	if merged.LocalDeps != nil {
		if err := validateLocalDeps(*merged.LocalDeps); err != nil {
			return Resolved{}, err
		}
		out.LocalDeps = *merged.LocalDeps
	}
	if merged.InhibitSubprocessOutput != nil {
		out.InhibitSubprocessOutput = *merged.InhibitSubprocessOutput
	}
	return out, nil
}

// merge returns o with every field that is set in over replaced.
func (o CommonOptions) merge(over CommonOptions) CommonOptions {
	if over.Serial != nil {
		o.Serial = over.Serial
	}
	if over.LocalDeps != nil {
		o.LocalDeps = over.LocalDeps
	}
	if over.InhibitSubprocessOutput != nil {
		o.InhibitSubprocessOutput = over.InhibitSubprocessOutput
	}
	return o
}
