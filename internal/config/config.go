// Package config holds the tool's global configuration and the dependency
// package table.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

const (
	// ConfigName is the config file name without extension.
	ConfigName = "rocdecode-tool"
	// EnvPrefix prefixes environment overrides, e.g. ROCDECODE_TOOL_LOGGING_LEVEL.
	EnvPrefix = "ROCDECODE_TOOL"
	// DefaultROCmPath is used when neither flag nor ROCM_PATH is set.
	DefaultROCmPath = "/opt/rocm"
)

// GlobalConfig is built once at start-up and passed by pointer to the
// commands. It is not modified after Load returns.
type GlobalConfig struct {
	ROCmPath string        `mapstructure:"rocm_path" yaml:"rocm_path"`
	Logging  LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Setup    SetupConfig   `mapstructure:"setup" yaml:"setup"`
	Runner   RunnerConfig  `mapstructure:"runner" yaml:"runner"`
}

// LoggingConfig controls the console logger.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// SetupConfig holds defaults for the setup command.
type SetupConfig struct {
	// PackageTable overrides the embedded package table when set.
	PackageTable string `mapstructure:"package_table" yaml:"package_table"`
	UpdateIndex  bool   `mapstructure:"update_index" yaml:"update_index"`
	// ReportDir receives the list of completed install commands.
	ReportDir string `mapstructure:"report_dir" yaml:"report_dir"`
}

// RunnerConfig holds defaults for the samples and conformance commands.
type RunnerConfig struct {
	SDKDir     string `mapstructure:"sdk_dir" yaml:"sdk_dir"`
	ResultsDir string `mapstructure:"results_dir" yaml:"results_dir"`
	DeviceID   int    `mapstructure:"device_id" yaml:"device_id"`
	// Archive is "", "zstd" or "xz".
	Archive string `mapstructure:"archive" yaml:"archive"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *GlobalConfig {
	return &GlobalConfig{
		ROCmPath: DefaultROCmPath,
		Logging:  LoggingConfig{Level: "info"},
		Setup:    SetupConfig{ReportDir: "."},
		Runner: RunnerConfig{
			SDKDir:     ".",
			ResultsDir: ".",
		},
	}
}

var (
	globalMu     sync.RWMutex
	globalConfig = DefaultConfig()
)

// Global returns the configuration set by SetGlobal, or the defaults.
func Global() *GlobalConfig {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the process-wide configuration.
func SetGlobal(cfg *GlobalConfig) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// Load reads configFile, or searches the default locations when it is empty.
// A missing file in the search path is not an error; environment variables
// still apply on top of the defaults.
func Load(configFile string) (*GlobalConfig, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// ROCM_PATH is the conventional unprefixed override.
	if err := v.BindEnv("rocm_path", EnvPrefix+"_ROCM_PATH", "ROCM_PATH"); err != nil {
		return nil, fmt.Errorf("failed to bind ROCM_PATH: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			used := v.ConfigFileUsed()
			if used == "" {
				used = configFile
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", used, err)
		}
	}

	cfg := &GlobalConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *GlobalConfig) {
	v.SetDefault("rocm_path", d.ROCmPath)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("setup.package_table", d.Setup.PackageTable)
	v.SetDefault("setup.update_index", d.Setup.UpdateIndex)
	v.SetDefault("setup.report_dir", d.Setup.ReportDir)
	v.SetDefault("runner.sdk_dir", d.Runner.SDKDir)
	v.SetDefault("runner.results_dir", d.Runner.ResultsDir)
	v.SetDefault("runner.device_id", d.Runner.DeviceID)
	v.SetDefault("runner.archive", d.Runner.Archive)
}

// configDir returns $XDG_CONFIG_HOME/rocdecode-tool.
func configDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, ConfigName), nil
}

// Validate checks value ranges that viper cannot express.
func (c *GlobalConfig) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q (expected debug, info, warn or error)", c.Logging.Level)
	}
	switch c.Runner.Archive {
	case "", "zstd", "xz":
	default:
		return fmt.Errorf("invalid archive format %q (expected zstd or xz)", c.Runner.Archive)
	}
	if c.Runner.DeviceID < 0 {
		return fmt.Errorf("invalid device id %d", c.Runner.DeviceID)
	}
	return nil
}
