package report

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Headers returns the result table columns. Perf runs add the thread count.
func Headers(withThreads bool) []string {
	if withThreads {
		return []string{"File Name", "Num Threads", "Codec", "Bit Depth", "Total Frames", "Average decoding time per frame (ms)", "Avg FPS"}
	}
	return []string{"File Name", "Codec", "Bit Depth", "Total Frames", "Average decoding time per frame (ms)", "Avg FPS"}
}

// Row returns the table cells of r matching Headers.
func (r DecodeResult) Row(withThreads bool) []string {
	if withThreads {
		return []string{r.FileName, r.Threads, r.Codec, r.BitDepth, r.TotalFrames, r.AvgFrameTimeMs, r.AvgFPS}
	}
	return []string{r.FileName, r.Codec, r.BitDepth, r.TotalFrames, r.AvgFrameTimeMs, r.AvgFPS}
}

// Rows converts results into table rows.
func Rows(results []DecodeResult, withThreads bool) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, r.Row(withThreads))
	}
	return rows
}

// WriteCSV writes the header and one row per result to path, replacing any
// existing file.
func WriteCSV(path string, results []DecodeResult, withThreads bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Headers(withThreads)); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	if err := w.WriteAll(Rows(results, withThreads)); err != nil {
		return fmt.Errorf("writing CSV rows: %w", err)
	}
	return f.Close()
}

// ReadCSV reads a results CSV back into its header and rows.
func ReadCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s has no header row", path)
	}
	return records[0], records[1:], nil
}
