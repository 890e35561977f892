package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/open-edge-platform/rocdecode-tool/internal/config"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/logger"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// Global command flags
var (
	configFile string
	logLevel   string
)

func main() {
	rootCmd := createRootCommand()
	if err := rootCmd.Execute(); err != nil {
		logger.Logger().Errorf("%v", err)
		logger.Sync()
		os.Exit(exitCode(err))
	}
	logger.Sync()
}

// createRootCommand builds the command tree.
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rocdecode-tool",
		Short: "rocDecode dependency setup and decode test runner",
		Long: `rocdecode-tool installs the build and runtime dependencies of the
rocDecode SDK on supported Linux distributions, and runs the decode,
decode-performance and conformance samples over a directory of media
files, producing CSV and Markdown reports.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to the configuration file (default: ./rocdecode-tool.yml or $XDG_CONFIG_HOME/rocdecode-tool/rocdecode-tool.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(createSetupCommand())
	rootCmd.AddCommand(createSamplesCommand())
	rootCmd.AddCommand(createConformanceCommand())
	rootCmd.AddCommand(createValidateCommand())

	attachLoggingHooks(rootCmd)
	return rootCmd
}

// attachLoggingHooks installs the configuration and logger initialization
// on every subcommand.
func attachLoggingHooks(rootCmd *cobra.Command) {
	for _, cmd := range rootCmd.Commands() {
		cmd.PersistentPreRunE = initialize
	}
}

func initialize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	config.SetGlobal(cfg)

	level := resolveRequestedLogLevel(cmd)
	if level == "" {
		level = config.NewConfigHelpers(cfg).LogLevel()
	}
	if err := logger.Init(level); err != nil {
		return err
	}
	logger.Logger().Debugf("Configuration loaded, log level %s", logger.Level())
	return nil
}

// resolveRequestedLogLevel returns the level asked for on the command line:
// --log-level wins, then --verbose. Empty means use the configuration.
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd == nil {
		return ""
	}
	if flag := cmd.Flags().Lookup("verbose"); flag != nil && flag.Changed {
		if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && verbose {
			return "debug"
		}
	}
	return ""
}

// exitCode returns the subprocess exit status carried by err, or 1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}

func printf(cmd *cobra.Command, format string, a ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, a...)
}
