package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	conformanceFileMarker     = "Input file"
	conformanceDigestMarker   = "MD5 message digest"
	conformanceMatchMarker    = "MD5 digest matches the reference MD5 digest"
	conformanceMismatchMarker = "MD5 digest does not match the reference MD5 digest"
)

// ConformanceResult is the digest verdict of one stream.
type ConformanceResult struct {
	Stream string
	Match  bool
}

// ConformanceSummary aggregates the verdicts of a conformance run.
type ConformanceSummary struct {
	Total      int
	Pass       int
	Fail       int
	Incomplete int
	Results    []ConformanceResult
	// Lines holds the file, digest and verdict lines kept from the log.
	Lines []string
}

// ScanConformanceLog counts digest verdicts in r. total is the number of
// streams submitted; streams without a verdict count as incomplete.
func ScanConformanceLog(r io.Reader, total int) (ConformanceSummary, error) {
	summary := ConformanceSummary{Total: total}
	stream := ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, conformanceMatchMarker):
			summary.Pass++
			summary.Results = append(summary.Results, ConformanceResult{Stream: stream, Match: true})
		case strings.Contains(line, conformanceMismatchMarker):
			summary.Fail++
			summary.Results = append(summary.Results, ConformanceResult{Stream: stream, Match: false})
		case strings.Contains(line, conformanceFileMarker):
			if m := inputFileMarker.FindStringSubmatch(line); m != nil {
				stream = m[1]
			}
		case strings.Contains(line, conformanceDigestMarker):
		default:
			continue
		}
		summary.Lines = append(summary.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("reading conformance log: %w", err)
	}

	summary.Incomplete = summary.Total - summary.Pass - summary.Fail
	return summary, nil
}

// Rows returns one table row per verdict.
func (s ConformanceSummary) Rows() [][]string {
	rows := make([][]string, 0, len(s.Results))
	for _, r := range s.Results {
		verdict := "FAIL"
		if r.Match {
			verdict = "PASS"
		}
		rows = append(rows, []string{r.Stream, verdict})
	}
	return rows
}

// SummaryLines returns the human-readable count lines.
func (s ConformanceSummary) SummaryLines() []string {
	return []string{
		fmt.Sprintf("Conformance test result summary on the %d streams:", s.Total),
		fmt.Sprintf("     - The number of passing streams is %d", s.Pass),
		fmt.Sprintf("     - The number of failing streams is %d", s.Fail),
		fmt.Sprintf("     - The number of streams that did not finish decoding is %d", s.Incomplete),
	}
}

// WriteConformanceLog writes the kept log lines followed by the summary.
func WriteConformanceLog(path string, s ConformanceSummary) error {
	var b strings.Builder
	b.WriteString("=========================\n")
	b.WriteString("Conformance test results\n")
	b.WriteString("=========================\n")
	for _, line := range s.Lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	lines := s.SummaryLines()
	b.WriteString("\n===================================================\n")
	b.WriteString(lines[0])
	b.WriteString("\n===================================================")
	for _, line := range lines[1:] {
		b.WriteString("\n")
		b.WriteString(line)
	}
	b.WriteByte('\n')

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing conformance log %s: %w", path, err)
	}
	return nil
}
