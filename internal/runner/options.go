// Package runner drives the decoder executable over a directory of inputs
// and turns its output into result files.
package runner

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Mode selects the decoder sample and its flag set.
type Mode int

const (
	// ModeDecode runs the videodecode sample.
	ModeDecode Mode = iota
	// ModePerf runs the multi-threaded videodecodeperf sample.
	ModePerf
	// ModeConformance decodes stream/digest pairs with MD5 checking.
	ModeConformance
)

// Result file names inside the mode's results directory.
const (
	LogFileName            = "decode_output.log"
	CSVFileName            = "decode_results.csv"
	ConformanceLogFileName = "conformance.log"
)

// Conformance input layout below the files directory.
const (
	StreamsDirName = "Streams"
	DigestsDirName = "MD5"
)

var (
	ErrExecutableNotFound   = errors.New("decoder executable not found")
	ErrInputDirNotFound     = errors.New("input directory not found")
	ErrEmptyInputDir        = errors.New("input directory is empty")
	ErrStreamDigestMismatch = errors.New("stream and MD5 digest file counts do not match")
)

// ParseSampleMode maps the numeric sample mode to a Mode.
func ParseSampleMode(n int) (Mode, error) {
	switch n {
	case 0:
		return ModeDecode, nil
	case 1:
		return ModePerf, nil
	}
	return 0, fmt.Errorf("invalid sample mode %d (expected 0: videoDecode, 1: videoDecodePerf)", n)
}

func (m Mode) String() string {
	switch m {
	case ModeDecode:
		return "decode"
	case ModePerf:
		return "perf"
	case ModeConformance:
		return "conformance"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ResultsSubdir is the directory name holding this mode's results.
func (m Mode) ResultsSubdir() string {
	switch m {
	case ModePerf:
		return "videodecodeperf_results"
	case ModeConformance:
		return "conformance_results"
	}
	return "videodecode_results"
}

// DefaultExecutable returns the sample binary path inside the SDK tree.
func (m Mode) DefaultExecutable(sdkDir string) string {
	if m == ModePerf {
		return filepath.Join(sdkDir, "samples", "videoDecodePerf", "build", "videodecodeperf")
	}
	return filepath.Join(sdkDir, "samples", "videoDecode", "build", "videodecode")
}

// Options configure one run. They are not modified by the Runner.
type Options struct {
	Mode Mode
	// SDKDir is the rocDecode source tree holding the built samples.
	SDKDir string
	// Executable overrides the mode's default sample binary.
	Executable string
	DeviceID   int
	FilesDir   string
	// Threads is passed to the perf sample only.
	Threads int
	// MaxFrames limits decoded frames per file; 0 means no limit.
	MaxFrames  int
	ResultsDir string
}

// Validate checks option ranges before any file system access.
func (o Options) Validate() error {
	if o.FilesDir == "" {
		return fmt.Errorf("%w: no files directory given", ErrInputDirNotFound)
	}
	if o.DeviceID < 0 {
		return fmt.Errorf("invalid GPU device id %d", o.DeviceID)
	}
	if o.Threads < 1 && o.Mode == ModePerf {
		return fmt.Errorf("invalid number of threads %d", o.Threads)
	}
	if o.MaxFrames < 0 {
		return fmt.Errorf("invalid max number of decoded frames %d", o.MaxFrames)
	}
	return nil
}

func (o Options) executable() (string, error) {
	exe := o.Executable
	if exe == "" {
		exe = o.Mode.DefaultExecutable(o.SDKDir)
	}
	return filepath.Abs(exe)
}
