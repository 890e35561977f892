package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetLogLevel(t *testing.T) {
	prev := Level()
	t.Cleanup(func() { _ = SetLogLevel(prev) })

	tests := []struct {
		name    string
		level   string
		want    string
		wantErr bool
	}{
		{name: "debug", level: "debug", want: "debug"},
		{name: "upper case", level: "WARN", want: "warn"},
		{name: "empty keeps level", level: "", want: "warn"},
		{name: "invalid", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SetLogLevel(tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for level %q", tt.level)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetLogLevel(%q) failed: %v", tt.level, err)
			}
			if got := Level(); got != tt.want {
				t.Errorf("expected level %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLoggerBeforeInitIsUsable(t *testing.T) {
	if Logger() == nil {
		t.Fatal("Logger() returned nil")
	}
	Logger().Infof("no-op logger must accept calls")
}

func TestStringListReportWriteToFile(t *testing.T) {
	report := NewStringListReport("Installed Packages")
	report.Add("apt-get -y install gcc")
	report.Add("apt-get -y install cmake")

	dir := filepath.Join(t.TempDir(), "reports")
	path, err := report.WriteToFile(dir)
	if err != nil {
		t.Fatalf("WriteToFile failed: %v", err)
	}
	if filepath.Base(path) != "setup-Installed_Packages.txt" {
		t.Errorf("unexpected report file name: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || lines[0] != "apt-get -y install gcc" {
		t.Errorf("unexpected report content: %q", string(data))
	}
	if report.Len() != 0 {
		t.Errorf("expected report to be cleared after write, has %d items", report.Len())
	}

	// A second write truncates instead of appending.
	report.Add("apt-get -y install git")
	if _, err := report.WriteToFile(dir); err != nil {
		t.Fatalf("second WriteToFile failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if strings.TrimSpace(string(data)) != "apt-get -y install git" {
		t.Errorf("expected truncated report, got %q", string(data))
	}
}
