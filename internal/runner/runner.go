package runner

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/open-edge-platform/rocdecode-tool/internal/report"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/logger"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/shell"
	"github.com/schollz/progressbar/v3"
)

// Job is one decoder invocation.
type Job struct {
	Input string
	// Digest is the reference MD5 file of a conformance stream.
	Digest string
}

// Result describes the files produced by a run.
type Result struct {
	RunID              string
	Executable         string
	OutDir             string
	LogPath            string
	CSVPath            string
	ConformanceLogPath string

	Jobs     int
	Failures int
	Decodes  []report.DecodeResult
	// Conformance is set for conformance runs.
	Conformance *report.ConformanceSummary
}

// Runner invokes the decoder sequentially, one job at a time.
type Runner struct {
	opts   Options
	exe    string
	outDir string
	runID  string
	jobs   []Job

	// Progress receives the progress bar; nil means stderr.
	Progress io.Writer
}

// New checks every precondition and returns a Runner ready to start. No
// decoder is invoked when an error is returned.
func New(opts Options) (*Runner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	exe, err := opts.executable()
	if err != nil {
		return nil, fmt.Errorf("resolving decoder executable: %w", err)
	}
	if info, err := os.Stat(exe); err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrExecutableNotFound, exe)
	}

	if err := checkInputDir(opts.FilesDir); err != nil {
		return nil, err
	}

	var jobs []Job
	if opts.Mode == ModeConformance {
		jobs, err = conformanceJobs(opts.FilesDir)
	} else {
		jobs, err = decodeJobs(opts.FilesDir)
	}
	if err != nil {
		return nil, err
	}

	root := opts.ResultsDir
	if root == "" {
		root = "."
	}
	outDir, err := filepath.Abs(filepath.Join(root, opts.Mode.ResultsSubdir()))
	if err != nil {
		return nil, fmt.Errorf("resolving results directory: %w", err)
	}

	return &Runner{
		opts:   opts,
		exe:    exe,
		outDir: outDir,
		runID:  uuid.NewString(),
		jobs:   jobs,
	}, nil
}

// Executable returns the absolute decoder path.
func (r *Runner) Executable() string {
	return r.exe
}

// Jobs returns the planned invocations in execution order.
func (r *Runner) Jobs() []Job {
	return append([]Job(nil), r.jobs...)
}

func checkInputDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInputDirNotFound, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading input directory %s: %w", dir, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: %s has no files to decode", ErrEmptyInputDir, dir)
	}
	return nil
}

// decodeJobs walks dir recursively and returns its regular files in
// lexical order. Symlinks to regular files count as files.
func decodeJobs(dir string) ([]Job, error) {
	var jobs []Job
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			jobs = append(jobs, Job{Input: path})
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				jobs = append(jobs, Job{Input: path})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking input directory %s: %w", dir, err)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w: %s has no regular files", ErrEmptyInputDir, dir)
	}
	return jobs, nil
}

// conformanceJobs pairs Streams/ and MD5/ entries by index after a
// case-insensitive sort of each directory.
func conformanceJobs(dir string) ([]Job, error) {
	streams, err := listFiles(filepath.Join(dir, StreamsDirName))
	if err != nil {
		return nil, err
	}
	digests, err := listFiles(filepath.Join(dir, DigestsDirName))
	if err != nil {
		return nil, err
	}
	if len(streams) == 0 {
		return nil, fmt.Errorf("%w: no streams in %s", ErrEmptyInputDir, filepath.Join(dir, StreamsDirName))
	}
	if len(streams) != len(digests) {
		return nil, fmt.Errorf("%w: %d streams, %d digests", ErrStreamDigestMismatch, len(streams), len(digests))
	}

	jobs := make([]Job, len(streams))
	for i := range streams {
		jobs[i] = Job{Input: streams[i], Digest: digests[i]}
	}
	return jobs, nil
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputDirNotFound, dir)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

// Command returns the shell command decoding job.
func (r *Runner) Command(job Job) string {
	parts := []string{shell.Quote(r.exe), "-i", shell.Quote(job.Input)}
	switch r.opts.Mode {
	case ModeDecode:
		parts = append(parts, "-d", strconv.Itoa(r.opts.DeviceID), "-f", strconv.Itoa(r.opts.MaxFrames))
	case ModePerf:
		parts = append(parts, "-t", strconv.Itoa(r.opts.Threads), "-f", strconv.Itoa(r.opts.MaxFrames))
	case ModeConformance:
		parts = append(parts, "-md5_check", shell.Quote(job.Digest), "-d", strconv.Itoa(r.opts.DeviceID))
	}
	return strings.Join(parts, " ")
}

// Run executes every job and writes the derived result files. A failing
// decode is logged and counted; it does not stop the batch.
func (r *Runner) Run() (*Result, error) {
	log := logger.Logger()

	res := &Result{
		RunID:      r.runID,
		Executable: r.exe,
		OutDir:     r.outDir,
		LogPath:    filepath.Join(r.outDir, LogFileName),
		Jobs:       len(r.jobs),
	}
	if err := r.prepareOutDir(); err != nil {
		return nil, err
	}

	log.Infof("Run %s: %s mode, %d inputs, decoder %s", r.runID, r.opts.Mode, len(r.jobs), r.exe)

	logFile, err := os.OpenFile(res.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening decode log: %w", err)
	}
	defer logFile.Close()

	out := r.Progress
	if out == nil {
		out = os.Stderr
	}
	bar := progressbar.NewOptions(len(r.jobs),
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("decoding"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	for _, job := range r.jobs {
		bar.Describe(fmt.Sprintf("decoding %s", filepath.Base(job.Input)))
		output, err := shell.ExecCmd(r.Command(job), false, nil)
		if werr := appendOutput(logFile, job, output); werr != nil {
			return nil, fmt.Errorf("appending to decode log: %w", werr)
		}
		if err != nil {
			// the executor already logged the output of a failed command
			res.Failures++
			log.Warnf("Decoding %s failed: %v", job.Input, err)
		} else {
			for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
				if line != "" {
					log.Info(line)
				}
			}
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Fprintln(out)

	if err := logFile.Close(); err != nil {
		return nil, fmt.Errorf("closing decode log: %w", err)
	}

	if r.opts.Mode == ModeConformance {
		err = r.summarizeConformance(res)
	} else {
		err = r.writeDecodeResults(res)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// appendOutput writes one invocation's output to the log. The samples do
// not print the input file, so its marker line is written ahead of output
// that lacks one.
func appendOutput(w io.Writer, job Job, output string) error {
	if !report.HasInputFileMarker(output) {
		if _, err := io.WriteString(w, report.InputFileLine(job.Input)+"\n"); err != nil {
			return err
		}
	}
	if output != "" && !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	_, err := io.WriteString(w, output)
	return err
}

func (r *Runner) prepareOutDir() error {
	if err := os.MkdirAll(r.outDir, 0755); err != nil {
		return fmt.Errorf("creating results directory %s: %w", r.outDir, err)
	}
	for _, name := range []string{LogFileName, CSVFileName, ConformanceLogFileName} {
		path := filepath.Join(r.outDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing stale %s: %w", path, err)
		}
	}
	return nil
}

func (r *Runner) writeDecodeResults(res *Result) error {
	f, err := os.Open(res.LogPath)
	if err != nil {
		return fmt.Errorf("opening decode log: %w", err)
	}
	defer f.Close()

	decodes, err := report.ParseDecodeLog(f)
	if err != nil {
		return err
	}
	perf := r.opts.Mode == ModePerf
	if perf {
		for i := range decodes {
			if decodes[i].Threads == "" {
				decodes[i].Threads = strconv.Itoa(r.opts.Threads)
			}
		}
	}
	res.Decodes = decodes
	res.CSVPath = filepath.Join(r.outDir, CSVFileName)
	if err := report.WriteCSV(res.CSVPath, decodes, perf); err != nil {
		return err
	}
	logger.Logger().Infof("%d of %d decodes completed, results in %s", len(decodes), len(r.jobs), res.CSVPath)
	return nil
}

func (r *Runner) summarizeConformance(res *Result) error {
	f, err := os.Open(res.LogPath)
	if err != nil {
		return fmt.Errorf("opening decode log: %w", err)
	}
	defer f.Close()

	summary, err := report.ScanConformanceLog(f, len(r.jobs))
	if err != nil {
		return err
	}
	res.Conformance = &summary
	res.ConformanceLogPath = filepath.Join(r.outDir, ConformanceLogFileName)
	if err := report.WriteConformanceLog(res.ConformanceLogPath, summary); err != nil {
		return err
	}

	log := logger.Logger()
	log.Infof("Conformance test completed on the %d streams:", summary.Total)
	for _, line := range summary.SummaryLines()[1:] {
		log.Info(line)
	}
	return nil
}

// WriteReport gathers host information and writes the Markdown report for
// res into its results directory.
func (r *Runner) WriteReport(res *Result, platform string, now time.Time) (string, error) {
	doc := report.Document{
		Generated: now,
		RunID:     res.RunID,
		Platform:  platform,
		Host:      report.GatherHostInfo(res.Executable),
	}
	if res.Conformance != nil {
		doc.Title = "rocDecode conformance report"
		doc.Conformance = res.Conformance
		doc.Headers = []string{"Stream", "Result"}
		doc.Rows = res.Conformance.Rows()
	} else {
		perf := r.opts.Mode == ModePerf
		doc.Headers = report.Headers(perf)
		doc.Rows = report.Rows(res.Decodes, perf)
	}
	path, err := report.WriteReport(res.OutDir, doc)
	if err != nil {
		return "", err
	}
	logger.Logger().Infof("Output report file: %s", path)
	return path, nil
}
