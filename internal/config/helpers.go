package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigHelpers provides convenient access to global configuration
type ConfigHelpers struct {
	config *GlobalConfig
}

// NewConfigHelpers creates a new config helpers instance
func NewConfigHelpers(config *GlobalConfig) *ConfigHelpers {
	return &ConfigHelpers{config: config}
}

// ResultsDir returns the absolute path to the results root directory
func (c *ConfigHelpers) ResultsDir() (string, error) {
	return filepath.Abs(c.config.Runner.ResultsDir)
}

// ReportDir returns the absolute path to the setup report directory
func (c *ConfigHelpers) ReportDir() (string, error) {
	return filepath.Abs(c.config.Setup.ReportDir)
}

// SDKDir returns the absolute path to the rocDecode source tree
func (c *ConfigHelpers) SDKDir() (string, error) {
	return filepath.Abs(c.config.Runner.SDKDir)
}

// LogLevel returns the configured log level
func (c *ConfigHelpers) LogLevel() string {
	return c.config.Logging.Level
}

// CreateReportDir ensures the setup report directory exists
func (c *ConfigHelpers) CreateReportDir() (string, error) {
	dir, err := c.ReportDir()
	if err != nil {
		return "", fmt.Errorf("resolving report directory: %w", err)
	}
	return dir, createDirIfNotExists(dir)
}

// Helper function to create directories
func createDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
