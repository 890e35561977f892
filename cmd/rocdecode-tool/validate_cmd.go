package main

import (
	"fmt"
	"os"

	"github.com/open-edge-platform/rocdecode-tool/internal/config"
	"github.com/open-edge-platform/rocdecode-tool/internal/config/validate"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/logger"
	"github.com/spf13/cobra"
)

var printDefaultTable bool

// createValidateCommand creates the validate subcommand
func createValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate [flags] [PACKAGE_TABLE_FILE]",
		Short: "Validate a package table file against its schema",
		Args:  cobra.MaximumNArgs(1),
		RunE:  executeValidate,
	}
	validateCmd.Flags().BoolVar(&printDefaultTable, "print-default", false,
		"Print the built-in package table instead of validating a file")
	return validateCmd
}

// executeValidate handles the validate command execution logic
func executeValidate(cmd *cobra.Command, args []string) error {
	log := logger.Logger()

	if printDefaultTable {
		_, err := cmd.OutOrStdout().Write(config.DefaultPackageTableYAML())
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("a package table file is required")
	}

	path := args[0]
	log.Infof("Validating package table: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}
	if err := validate.ValidatePackageTableYAML(data); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if _, err := config.LoadPackageTable(data); err != nil {
		return err
	}
	printf(cmd, "%s: valid package table\n", path)
	return nil
}
