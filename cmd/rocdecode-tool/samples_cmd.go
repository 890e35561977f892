package main

import (
	"fmt"
	"time"

	"github.com/open-edge-platform/rocdecode-tool/internal/config"
	"github.com/open-edge-platform/rocdecode-tool/internal/report"
	"github.com/open-edge-platform/rocdecode-tool/internal/runner"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/logger"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/system"
	"github.com/spf13/cobra"
)

// Runner command flags, shared by samples and conformance
var (
	sdkDir        string
	deviceID      int
	filesDir      string
	resultsDir    string
	archiveFormat archiveValue

	sampleMode int
	numThreads int
	maxFrames  int
)

func addRunnerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sdkDir, "rocdecode-directory", "",
		"The rocDecode source directory holding the built samples (required)")
	cmd.Flags().IntVar(&deviceID, "gpu-device-id", 0,
		"GPU device ID to run on [range: 0 - N-1]")
	cmd.Flags().StringVar(&filesDir, "files-directory", "",
		"Directory of input files (required)")
	cmd.Flags().StringVar(&resultsDir, "results-directory", "",
		"Directory to store results (default: config runner.results_dir)")
	archiveFormat = ""
	cmd.Flags().Var(&archiveFormat, "archive",
		"Also pack the results directory: zstd or xz")
}

// createSamplesCommand creates the samples subcommand
func createSamplesCommand() *cobra.Command {
	samplesCmd := &cobra.Command{
		Use:   "samples [flags]",
		Short: "Run the videoDecode or videoDecodePerf sample over a directory",
		Long: `Samples runs the selected decode sample once per file found
recursively in the files directory, collects the decoder output into a
log, and writes a CSV of per-file results and a Markdown report.`,
		Args: cobra.NoArgs,
		RunE: executeSamples,
	}

	addRunnerFlags(samplesCmd)
	samplesCmd.Flags().IntVar(&sampleMode, "sample-mode", 0,
		"Sample to run: 0 videoDecode, 1 videoDecodePerf")
	samplesCmd.Flags().IntVar(&numThreads, "num-threads", 1,
		"Number of decode threads (videoDecodePerf only)")
	samplesCmd.Flags().IntVar(&maxFrames, "max-num-decoded-frames", 0,
		"Maximum number of decoded frames per file, 0 means no limit")
	return samplesCmd
}

// runnerOptions fills options from flags, falling back to configuration.
func runnerOptions(cmd *cobra.Command, cfg *config.GlobalConfig, mode runner.Mode) (runner.Options, error) {
	helpers := config.NewConfigHelpers(cfg)
	opts := runner.Options{
		Mode:       mode,
		SDKDir:     sdkDir,
		DeviceID:   deviceID,
		FilesDir:   filesDir,
		ResultsDir: resultsDir,
		Threads:    numThreads,
		MaxFrames:  maxFrames,
	}
	var err error
	if !cmd.Flags().Changed("rocdecode-directory") {
		if opts.SDKDir, err = helpers.SDKDir(); err != nil {
			return opts, fmt.Errorf("resolving rocDecode directory: %w", err)
		}
	}
	if !cmd.Flags().Changed("gpu-device-id") {
		opts.DeviceID = cfg.Runner.DeviceID
	}
	if !cmd.Flags().Changed("results-directory") {
		if opts.ResultsDir, err = helpers.ResultsDir(); err != nil {
			return opts, fmt.Errorf("resolving results directory: %w", err)
		}
	}
	return opts, nil
}

func resolveArchive(cmd *cobra.Command, cfg *config.GlobalConfig) (report.ArchiveFormat, error) {
	if cmd.Flags().Changed("archive") {
		return report.ArchiveFormat(archiveFormat), nil
	}
	return report.ParseArchiveFormat(cfg.Runner.Archive)
}

// executeSamples handles the samples command execution logic
func executeSamples(cmd *cobra.Command, args []string) error {
	cfg := config.Global()
	mode, err := runner.ParseSampleMode(sampleMode)
	if err != nil {
		return err
	}
	opts, err := runnerOptions(cmd, cfg, mode)
	if err != nil {
		return err
	}
	return runAndReport(cmd, cfg, opts)
}

// runAndReport runs the decoder, then writes the report and optional archive.
func runAndReport(cmd *cobra.Command, cfg *config.GlobalConfig, opts runner.Options) error {
	log := logger.Logger()

	archive, err := resolveArchive(cmd, cfg)
	if err != nil {
		return err
	}

	r, err := runner.New(opts)
	if err != nil {
		return err
	}
	log.Infof("rocDecode path: %s", r.Executable())

	res, err := r.Run()
	if err != nil {
		return err
	}

	platformName := "unknown"
	if dist, err := system.DetectOsDistribution(); err != nil {
		log.Warnf("Could not detect host platform: %v", err)
	} else {
		platformName = system.PlatformString(dist)
	}

	reportPath, err := r.WriteReport(res, platformName, time.Now())
	if err != nil {
		return err
	}
	printf(cmd, "Report: %s\n", reportPath)

	if archive != report.ArchiveNone {
		archivePath, err := report.Archive(res.OutDir, archive)
		if err != nil {
			return fmt.Errorf("archiving results: %w", err)
		}
		printf(cmd, "Archive: %s\n", archivePath)
	}
	return nil
}
