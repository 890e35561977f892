// Package provision installs the platform's dependency package set.
package provision

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/open-edge-platform/rocdecode-tool/internal/config"
	"github.com/open-edge-platform/rocdecode-tool/internal/platform"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/logger"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Phase names in execution order.
const (
	PhasePrepare   = "prepare"
	PhaseCommon    = "common"
	PhaseCore      = "core"
	PhaseDeveloper = "developer"
)

// Options selects optional parts of an installation.
type Options struct {
	// Developer enables the developer tier.
	Developer bool
	// UpdateIndex refreshes the package index before installing.
	UpdateIndex bool
	// DryRun logs the planned commands without executing anything.
	DryRun bool
}

// Command is one planned privileged invocation.
type Command struct {
	Phase  string
	Bundle string
	Step   int
	Cmd    string
}

// StepError reports the command that aborted an installation.
type StepError struct {
	Phase  string
	Bundle string
	Step   int
	Cmd    string
	Err    error
}

func (e *StepError) Error() string {
	if e.Bundle == "" {
		return fmt.Sprintf("%s phase: %q failed: %v", e.Phase, e.Cmd, e.Err)
	}
	return fmt.Sprintf("%s phase: bundle %s step %d: %q failed: %v", e.Phase, e.Bundle, e.Step+1, e.Cmd, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Installer runs a PackageSet through the profile's package manager.
type Installer struct {
	Profile  platform.Profile
	Elevator *Elevator
	// Progress receives the progress bar; nil means stderr.
	Progress io.Writer
}

// NewInstaller returns an installer for profile.
func NewInstaller(profile platform.Profile, elevator *Elevator) *Installer {
	return &Installer{Profile: profile, Elevator: elevator}
}

// Plan lists the commands Run would execute, in order.
func (i *Installer) Plan(set config.PackageSet, opts Options) []Command {
	var cmds []Command

	if opts.UpdateIndex || i.Elevator.IsRoot() {
		cmds = append(cmds, Command{Phase: PhasePrepare, Cmd: i.Profile.RefreshCommand()})
	}

	tiers := []struct {
		phase   string
		bundles []config.Bundle
	}{
		{PhaseCommon, set.Common},
		{PhaseCore, set.Core},
	}
	if opts.Developer {
		tiers = append(tiers, struct {
			phase   string
			bundles []config.Bundle
		}{PhaseDeveloper, set.Developer})
	}

	for _, tier := range tiers {
		for _, b := range tier.bundles {
			for n, s := range b.Steps {
				cmd := s.Run
				if len(s.Install) > 0 {
					cmd = i.Profile.InstallCommand(s.Install...)
				}
				cmds = append(cmds, Command{Phase: tier.phase, Bundle: b.Name, Step: n, Cmd: cmd})
			}
		}
	}
	return cmds
}

// Run installs set. The first failing command aborts the installation: no
// later step, bundle or phase is attempted and a *StepError is returned.
func (i *Installer) Run(set config.PackageSet, opts Options) error {
	log := logger.Logger()
	cmds := i.Plan(set, opts)

	if opts.DryRun {
		for _, c := range cmds {
			log.Infof("[dry-run] %s: %s", c.Phase, c.Cmd)
		}
		log.Infof("[dry-run] %d commands planned for %s", len(cmds), i.Profile)
		return nil
	}

	out := i.Progress
	if out == nil {
		out = os.Stderr
	}
	bar := progressbar.NewOptions(len(cmds),
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("installing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	phase := ""
	for _, c := range cmds {
		if c.Phase != phase {
			phase = c.Phase
			log.Infof("Installing %s packages", phase)
			if err := i.Elevator.Phase(phase); err != nil {
				return i.fail(&StepError{Phase: phase, Cmd: "sudo -v", Err: err})
			}
		}

		bar.Describe(fmt.Sprintf("%s: %s", c.Phase, c.Bundle))
		if _, err := i.Elevator.Run(c.Cmd); err != nil {
			return i.fail(&StepError{Phase: c.Phase, Bundle: c.Bundle, Step: c.Step, Cmd: c.Cmd, Err: err})
		}
		logger.GlobalInstallReport.Add(c.Cmd)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Fprintln(out)

	log.Infof("Dependencies installed for %s", i.Profile)
	return nil
}

func (i *Installer) fail(err *StepError) error {
	logger.Logger().Errorw("dependency installation aborted",
		"phase", err.Phase,
		"bundle", err.Bundle,
		"command", err.Cmd,
		"error", err.Err,
		zap.Stack("stack"),
	)
	return err
}
