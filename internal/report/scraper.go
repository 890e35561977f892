// Package report turns decoder logs into CSV, conformance summaries and
// Markdown reports.
package report

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
)

// DecodeResult is one decoder invocation scraped from the log. Fields hold
// the literal tokens printed by the decoder.
type DecodeResult struct {
	FileName       string
	Threads        string
	Codec          string
	BitDepth       string
	TotalFrames    string
	AvgFrameTimeMs string
	AvgFPS         string
}

type scrapeState int

const (
	awaitingRecord scrapeState = iota
	accumulating
)

type fieldMarker struct {
	re  *regexp.Regexp
	set func(r *DecodeResult, v string)
}

var (
	inputFileMarker = regexp.MustCompile(`info: Input file: (.*\S)`)
	terminalMarker  = regexp.MustCompile(`info: avg (?:decode )?FPS: (\S+)`)

	fieldMarkers = []fieldMarker{
		{regexp.MustCompile(`info: Number of threads: (\S+)`), func(r *DecodeResult, v string) { r.Threads = v }},
		{regexp.MustCompile(`^\s*Codec\s*: (\S+)`), func(r *DecodeResult, v string) { r.Codec = v }},
		{regexp.MustCompile(`info: Video codec format: (\S+)`), func(r *DecodeResult, v string) { r.Codec = v }},
		{regexp.MustCompile(`^\s*Bit depth\s*: (\S+)`), func(r *DecodeResult, v string) { r.BitDepth = v }},
		{regexp.MustCompile(`info: Video Bit depth: (\S+)`), func(r *DecodeResult, v string) { r.BitDepth = v }},
		{regexp.MustCompile(`info: Total (?:pictures|frame|frames) decoded: (\S+)`), func(r *DecodeResult, v string) { r.TotalFrames = v }},
		{regexp.MustCompile(`info: avg decoding time per (?:picture|frame)(?: \(ms\))?: (\S+)`), func(r *DecodeResult, v string) { r.AvgFrameTimeMs = v }},
	}
)

// InputFileLine returns the marker line opening the record of path.
func InputFileLine(path string) string {
	return "info: Input file: " + path
}

// HasInputFileMarker reports whether output already names its input file.
func HasInputFileMarker(output string) bool {
	return inputFileMarker.MatchString(output)
}

// Scraper accumulates marker lines of one invocation until the terminal
// FPS marker completes the record.
type Scraper struct {
	state   scrapeState
	current DecodeResult
	results []DecodeResult
}

// NewScraper returns a Scraper awaiting its first record.
func NewScraper() *Scraper {
	return &Scraper{}
}

// Feed consumes one log line.
func (s *Scraper) Feed(line string) {
	if m := inputFileMarker.FindStringSubmatch(line); m != nil {
		// A new invocation started before the previous one finished.
		if s.current.FileName != "" {
			s.reset()
		}
		s.current.FileName = m[1]
		s.state = accumulating
		return
	}

	if m := terminalMarker.FindStringSubmatch(line); m != nil {
		if s.state == awaitingRecord {
			return
		}
		s.current.AvgFPS = m[1]
		s.results = append(s.results, s.current)
		s.reset()
		return
	}

	for _, f := range fieldMarkers {
		if m := f.re.FindStringSubmatch(line); m != nil {
			f.set(&s.current, m[1])
			s.state = accumulating
			return
		}
	}
}

func (s *Scraper) reset() {
	s.current = DecodeResult{}
	s.state = awaitingRecord
}

// Results returns the completed records in log order.
func (s *Scraper) Results() []DecodeResult {
	out := make([]DecodeResult, len(s.results))
	copy(out, s.results)
	return out
}

// ParseDecodeLog scrapes every completed invocation from r.
func ParseDecodeLog(r io.Reader) ([]DecodeResult, error) {
	s := NewScraper()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		s.Feed(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading decode log: %w", err)
	}
	return s.Results(), nil
}
