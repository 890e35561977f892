package main

import (
	"testing"

	"github.com/open-edge-platform/rocdecode-tool/internal/report"
	"github.com/spf13/pflag"
)

func TestOnOffValue(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{in: "ON", want: true},
		{in: "on", want: true},
		{in: "Off", want: false},
		{in: "OFF", want: false},
		{in: "yes", wantErr: true},
		{in: "1", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var v onOffValue
			err := v.Set(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && bool(v) != tt.want {
				t.Errorf("Set(%q) = %v, want %v", tt.in, bool(v), tt.want)
			}
		})
	}
}

func TestOnOffFlagRejectsInvalidValue(t *testing.T) {
	var v onOffValue
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Var(&v, "developer", "")

	if err := fs.Parse([]string{"--developer", "maybe"}); err == nil {
		t.Fatal("expected parse error for invalid developer value")
	}
	if err := fs.Parse([]string{"--developer=on"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.String() != "ON" {
		t.Errorf("expected ON, got %s", v.String())
	}
}

func TestArchiveValue(t *testing.T) {
	var v archiveValue
	if err := v.Set("XZ"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ArchiveFormat(v) != report.ArchiveXz {
		t.Errorf("expected xz, got %s", v.String())
	}
	if err := v.Set("zip"); err == nil {
		t.Error("expected error for zip")
	}
}
