package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/open-edge-platform/rocdecode-tool/internal/config"
	"github.com/open-edge-platform/rocdecode-tool/internal/platform"
	"github.com/open-edge-platform/rocdecode-tool/internal/provision"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/logger"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/shell"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/system"
	"github.com/spf13/cobra"
)

var errROCmNotFound = errors.New("ROCm installation not found")

// Setup command flags
var (
	rocmPath     string
	developer    onOffValue
	updateIndex  bool
	dryRun       bool
	packageTable string
)

// createSetupCommand creates the setup subcommand
func createSetupCommand() *cobra.Command {
	setupCmd := &cobra.Command{
		Use:   "setup [flags]",
		Short: "Install rocDecode build and runtime dependencies",
		Long: `Setup detects the host distribution, selects the matching package
set and installs it with the native package manager. Installation is
fail-fast: the first failing command aborts the run.`,
		Args: cobra.NoArgs,
		RunE: executeSetup,
	}

	setupCmd.Flags().StringVar(&rocmPath, "rocm-path", config.DefaultROCmPath,
		"ROCm installation path (overrides ROCM_PATH)")
	developer = false
	setupCmd.Flags().Var(&developer, "developer",
		"Install the developer packages (ffmpeg development headers): ON or OFF")
	setupCmd.Flags().BoolVar(&updateIndex, "update-index", false,
		"Refresh the package index before installing")
	setupCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Print the package-manager commands without running them")
	setupCmd.Flags().StringVar(&packageTable, "package-table", "",
		"Package table YAML file (default: built-in table)")
	return setupCmd
}

// resolveROCmPath applies flag > ROCM_PATH/config > default precedence.
func resolveROCmPath(cmd *cobra.Command, cfg *config.GlobalConfig) string {
	if cmd.Flags().Changed("rocm-path") {
		return rocmPath
	}
	if cfg.ROCmPath != "" {
		return cfg.ROCmPath
	}
	return config.DefaultROCmPath
}

func checkROCm(path string) error {
	log := logger.Logger()
	if _, err := os.Stat(path); err != nil {
		log.Warnf("If ROCm is installed, set its path with --rocm-path or ROCM_PATH [default: %s]", config.DefaultROCmPath)
		return fmt.Errorf("%w at %s: setup requires ROCm", errROCmNotFound, path)
	}
	log.Infof("ROCm installation found: %s", path)

	output, err := shell.ExecCmd(shell.Quote(filepath.Join(path, "bin", "rocminfo")), false, nil)
	if err != nil {
		log.Warnf("rocminfo failed: %v", err)
		return nil
	}
	log.Debugf("ROCm info:\n%s", strings.TrimSpace(output))
	return nil
}

// executeSetup handles the setup command execution logic
func executeSetup(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	cfg := config.Global()

	if err := checkROCm(resolveROCmPath(cmd, cfg)); err != nil {
		return err
	}

	dist, err := system.DetectOsDistribution()
	if err != nil {
		return fmt.Errorf("detecting host distribution: %w", err)
	}
	profile, err := platform.Resolve(dist)
	if err != nil {
		return err
	}
	log.Infof("rocDecode setup on %s", profile)

	tablePath := packageTable
	if !cmd.Flags().Changed("package-table") {
		tablePath = cfg.Setup.PackageTable
	}
	table, err := config.LoadPackageTableFile(tablePath)
	if err != nil {
		return err
	}
	set, err := table.Select(profile)
	if err != nil {
		return err
	}

	opts := provision.Options{
		Developer:   bool(developer),
		UpdateIndex: updateIndex || (!cmd.Flags().Changed("update-index") && cfg.Setup.UpdateIndex),
		DryRun:      dryRun,
	}
	installer := provision.NewInstaller(profile, provision.NewElevator())
	if err := installer.Run(set, opts); err != nil {
		return err
	}
	if opts.DryRun {
		return nil
	}

	reportDir, err := config.NewConfigHelpers(cfg).CreateReportDir()
	if err != nil {
		return err
	}
	reportPath, err := logger.GlobalInstallReport.WriteToFile(reportDir)
	if err != nil {
		return fmt.Errorf("writing install report: %w", err)
	}
	log.Infof("rocDecode dependencies installed, command list in %s", reportPath)
	return nil
}
