package main

import (
	"github.com/open-edge-platform/rocdecode-tool/internal/config"
	"github.com/open-edge-platform/rocdecode-tool/internal/runner"
	"github.com/spf13/cobra"
)

var videoDecodeExe string

// createConformanceCommand creates the conformance subcommand
func createConformanceCommand() *cobra.Command {
	conformanceCmd := &cobra.Command{
		Use:   "conformance [flags]",
		Short: "Run the MD5 conformance test over stream/digest pairs",
		Long: `Conformance decodes every file in <files-directory>/Streams with MD5
checking against the file at the same sorted position in
<files-directory>/MD5, then reports passing, failing and incomplete
streams.`,
		Args: cobra.NoArgs,
		RunE: executeConformance,
	}

	addRunnerFlags(conformanceCmd)
	conformanceCmd.Flags().StringVar(&videoDecodeExe, "videodecode-exe", "",
		"Video decode sample executable (default: <rocdecode-directory>/samples/videoDecode/build/videodecode)")
	return conformanceCmd
}

// executeConformance handles the conformance command execution logic
func executeConformance(cmd *cobra.Command, args []string) error {
	cfg := config.Global()
	opts, err := runnerOptions(cmd, cfg, runner.ModeConformance)
	if err != nil {
		return err
	}
	opts.Executable = videoDecodeExe
	return runAndReport(cmd, cfg, opts)
}
