package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// StringListReport collects one line per completed operation of a run.
type StringListReport struct {
	Title string
	Items []string
	mu    sync.Mutex
}

// GlobalInstallReport records the package-manager commands that completed.
var GlobalInstallReport = NewStringListReport("InstalledPackages")

// NewStringListReport returns an empty report with the given title.
func NewStringListReport(title string) *StringListReport {
	return &StringListReport{Title: title, Items: []string{}}
}

// Add appends one item to the report.
func (r *StringListReport) Add(item string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Items = append(r.Items, item)
}

// Len returns the number of collected items.
func (r *StringListReport) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Items)
}

// WriteToFile writes the report into dir as a plain list and clears it.
// The title is appended to the filename, e.g. setup-InstalledPackages.txt.
// The file is truncated; reports never accumulate across runs.
func (r *StringListReport) WriteToFile(dir string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	title := r.Title
	if title == "" {
		title = "untitled"
	}
	safeTitle := ""
	for _, c := range title {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			safeTitle += string(c)
		} else {
			safeTitle += "_"
		}
	}

	reportFullPath := filepath.Join(dir, fmt.Sprintf("setup-%s.txt", safeTitle))
	f, err := os.Create(reportFullPath)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	for _, item := range r.Items {
		if _, err := fmt.Fprintln(f, item); err != nil {
			return "", fmt.Errorf("writing to file: %w", err)
		}
	}
	r.Items = []string{}

	return reportFullPath, nil
}
