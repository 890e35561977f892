package main

import (
	"fmt"
	"strings"

	"github.com/open-edge-platform/rocdecode-tool/internal/report"
)

// onOffValue is a pflag.Value accepting ON or OFF in any case.
type onOffValue bool

func (v *onOffValue) String() string {
	if *v {
		return "ON"
	}
	return "OFF"
}

func (v *onOffValue) Set(s string) error {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ON":
		*v = true
	case "OFF":
		*v = false
	default:
		return fmt.Errorf("option %q not supported (supported options: OFF or ON)", s)
	}
	return nil
}

func (v *onOffValue) Type() string {
	return "ON|OFF"
}

// archiveValue is a pflag.Value selecting the results archive format.
type archiveValue report.ArchiveFormat

func (v *archiveValue) String() string {
	return string(*v)
}

func (v *archiveValue) Set(s string) error {
	f, err := report.ParseArchiveFormat(s)
	if err != nil {
		return err
	}
	*v = archiveValue(f)
	return nil
}

func (v *archiveValue) Type() string {
	return "zstd|xz"
}
