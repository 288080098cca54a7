// Package config loads ts-scaffold settings from an optional YAML file,
// TS_SCAFFOLD_* environment variables, and bound command-line flags.
//
// Precedence, highest first: flags, environment, config file, defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shinji-kodama/ts-scaffold/internal/model"
	"github.com/shinji-kodama/ts-scaffold/internal/npm"
	"github.com/shinji-kodama/ts-scaffold/internal/toolchain"
)

const (
	appName   = "ts-scaffold"
	fileName  = "config"
	fileType  = "yaml"
	envPrefix = "TS_SCAFFOLD"
)

// Config keys.
const (
	KeyNPM     = "npm"
	KeyTSC     = "tsc"
	KeyGit     = "git"
	KeyOptions = "options"
	KeySkipRun = "skip_run"
	KeyPins    = "pins"
)

// Config is the resolved configuration for one run.
type Config struct {
	Binaries toolchain.Binaries `mapstructure:",squash"`

	// Options is the default selection used instead of the interactive
	// multi-select. Only meaningful when OptionsSet is true.
	Options    []string `mapstructure:"options"`
	OptionsSet bool     `mapstructure:"-"`

	SkipRun bool `mapstructure:"skip_run"`

	// Pins maps package names to semver constraints used at install time.
	Pins map[string]string `mapstructure:"pins"`

	// File is the config file that was read, or empty.
	File string `mapstructure:"-"`
}

// DefaultPath returns $XDG_CONFIG_HOME/ts-scaffold/config.yaml, or the
// platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, fileName+"."+fileType)
}

// Load resolves the configuration. An explicit path must exist; the
// default path is read only when present. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	// Package names may contain dots, so "::" separates nested keys.
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigType(fileType)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	defaults := toolchain.DefaultBinaries()
	v.SetDefault(KeyNPM, defaults.NPM)
	v.SetDefault(KeyTSC, defaults.TSC)
	v.SetDefault(KeyGit, defaults.Git)
	v.SetDefault(KeySkipRun, false)

	// Unmarshal only sees environment values for keys viper knows about.
	for _, key := range []string{KeyNPM, KeyTSC, KeyGit, KeyOptions, KeySkipRun} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding environment for %s: %w", key, err)
		}
	}

	if flags != nil {
		if f := flags.Lookup("skip-run"); f != nil {
			if err := v.BindPFlag(KeySkipRun, f); err != nil {
				return nil, fmt.Errorf("binding flag --skip-run: %w", err)
			}
		}
	}

	file, err := readConfigFile(v, path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.OptionsSet = v.IsSet(KeyOptions)
	cfg.File = file

	if cfg.OptionsSet {
		if _, err := model.ParseOptions(cfg.Options); err != nil {
			return nil, fmt.Errorf("config key %s: %w", KeyOptions, err)
		}
	}
	if _, err := npm.ParsePins(cfg.Pins); err != nil {
		return nil, fmt.Errorf("config key %s: %w", KeyPins, err)
	}

	return cfg, nil
}

// readConfigFile reads path into v and returns the file that was used.
func readConfigFile(v *viper.Viper, path string) (string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return "", nil
		}
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config file %s: %w", path, err)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("reading config file %s: %w", path, err)
	}
	return path, nil
}

// Selection returns the configured default selection.
func (c *Config) Selection() (model.Selection, error) {
	return model.ParseOptions(c.Options)
}
