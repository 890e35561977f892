package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Document is the content of one Markdown run report.
type Document struct {
	Title     string
	Generated time.Time
	RunID     string
	Platform  string
	Host      HostInfo

	Headers []string
	Rows    [][]string
	// Conformance adds the summary counts when set.
	Conformance *ConformanceSummary
}

// FileName returns the report file name for platform on day t, e.g.
// rocdecode_report_Ubuntu-22.04-x86_64_20240131.md.
func FileName(platform string, t time.Time) string {
	return fmt.Sprintf("rocdecode_report_%s_%s.md", platform, t.Format("20060102"))
}

// Render returns the Markdown document.
func (d Document) Render() string {
	var b strings.Builder

	title := d.Title
	if title == "" {
		title = "rocDecode app report"
	}
	b.WriteString(title + "\n")
	b.WriteString("================================\n\n")

	fmt.Fprintf(&b, "Generated: %s\n\n", d.Generated.Format("2006-01-02 15:04:05 MST"))
	if d.RunID != "" {
		fmt.Fprintf(&b, "Run ID: %s\n\n", d.RunID)
	}

	fmt.Fprintf(&b, "Platform: %s (%s)\n", d.Host.FQDN, d.Host.IP)
	b.WriteString("--------\n\n")
	for _, block := range []string{d.Host.System, d.Host.CPU, d.Host.GPU, d.Host.Board, d.Host.Memory} {
		writeFormatted(&b, block)
	}

	b.WriteString("\n\nBenchmark Report\n")
	b.WriteString("--------\n\n")
	if d.Conformance != nil {
		for _, line := range d.Conformance.SummaryLines() {
			b.WriteString(strings.TrimSpace(line) + "\n")
		}
		b.WriteString("\n")
	}
	if len(d.Headers) > 0 {
		b.WriteString(MarkdownTable(d.Headers, d.Rows))
		b.WriteString("\n")
	}

	b.WriteString("\nDynamic Libraries Report\n")
	b.WriteString("-----------------\n\n")
	writeFormatted(&b, d.Host.Libraries)

	if d.Platform != "" {
		fmt.Fprintf(&b, "\n---\n**%s**\n", d.Platform)
	}
	return b.String()
}

func writeFormatted(b *strings.Builder, block string) {
	b.WriteString("````\n")
	b.WriteString(block)
	b.WriteString("\n\n````\n")
}

// WriteReport renders d into dir and returns the report path.
func WriteReport(dir string, d Document) (string, error) {
	path := filepath.Join(dir, FileName(d.Platform, d.Generated))
	if err := os.WriteFile(path, []byte(d.Render()), 0644); err != nil {
		return "", fmt.Errorf("writing report %s: %w", path, err)
	}
	return path, nil
}
