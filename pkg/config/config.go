// Package config loads the optional repository configuration of monist.
//
// The configuration lives next to the root package.json in one of these
// files, the first one found wins:
//
//	monistrc.json
//	monist.toml
//	monist.yaml
//	monist.yml
//
// Unknown keys are rejected in every format. A repository without any of
// these files gets [Default].
//
// Example monistrc.json:
//
//	{
//	  "buildDir": "build/dist",
//	  "cliOptions": {
//	    "run": {
//	      "*": {"localDeps": "link"},
//	      "test": {"serial": true, "inhibitSubprocessOutput": true}
//	    }
//	  }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/monist/pkg/errors"
)

// DefaultBuildDir is where members put the output that local dependencies
// are linked or installed from.
const DefaultBuildDir = "build/dist"

// Wildcard is the cliOptions key that applies to every script of a command.
const Wildcard = "*"

// FileNames lists the configuration files looked up by [Load], in order.
var FileNames = []string{"monistrc.json", "monist.toml", "monist.yaml", "monist.yml"}

// Local dependency strategies accepted by the localDeps option.
const (
	LocalDepsNone    = "none"
	LocalDepsLink    = "link"
	LocalDepsInstall = "install"
	LocalDepsSymlink = "symlink"
)

// CommonOptions are the execution options shared by run, npm and exec.
// Nil fields are unset and do not override anything when merged.
type CommonOptions struct {
	Serial                  *bool   `json:"serial,omitempty" toml:"serial" yaml:"serial"`
	LocalDeps               *string `json:"localDeps,omitempty" toml:"localDeps" yaml:"localDeps"`
	InhibitSubprocessOutput *bool   `json:"inhibitSubprocessOutput,omitempty" toml:"inhibitSubprocessOutput" yaml:"inhibitSubprocessOutput"`
}

// Config is the repository configuration.
type Config struct {
	// BuildDir is the directory, relative to a member, holding its build
	// output.
	BuildDir string `json:"buildDir" toml:"buildDir" yaml:"buildDir"`

	// CLIOptions holds option defaults per command, then per script name
	// (the first command argument) or [Wildcard].
	CLIOptions map[string]map[string]CommonOptions `json:"cliOptions" toml:"cliOptions" yaml:"cliOptions"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `json:"-" toml:"-" yaml:"-"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{BuildDir: DefaultBuildDir}
}

// Load reads the configuration of the repository at dir. When explicit is
// not empty, that file is read instead and must exist.
func Load(dir, explicit string) (*Config, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFile(path)
	}
	return Default(), nil
}

// LoadFile reads one configuration file. The format is chosen from the file
// extension; anything that is neither TOML nor YAML is read as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "configuration file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cannot read %s", path)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = decodeTOML(data, cfg)
	case ".yaml", ".yml":
		err = decodeYAML(data, cfg)
	default:
		err = decodeJSON(data, cfg)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "the configuration passed to monist is not valid: %s", path)
	}

	cfg.Path = path
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeJSON(data []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// ValidateAndSetDefaults checks the configuration and fills in defaults.
func (c *Config) ValidateAndSetDefaults() error {
	if c.BuildDir == "" {
		c.BuildDir = DefaultBuildDir
	}
	if err := errors.ValidateRelativePath(c.BuildDir); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "buildDir")
	}
	for command, scripts := range c.CLIOptions {
		for script, opts := range scripts {
			if opts.LocalDeps == nil {
				continue
			}
			if err := validateLocalDeps(*opts.LocalDeps); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "cliOptions.%s.%s.localDeps", command, script)
			}
		}
	}
	return nil
}

func validateLocalDeps(v string) error {
	switch v {
	case LocalDepsNone, LocalDepsLink, LocalDepsInstall, LocalDepsSymlink:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "%q is not one of %s, %s, %s, %s",
		v, LocalDepsNone, LocalDepsLink, LocalDepsInstall, LocalDepsSymlink)
}
