package provision

import (
	"fmt"

	"github.com/open-edge-platform/rocdecode-tool/internal/utils/logger"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/shell"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/system"
)

// Elevator is the only place privileged commands are issued from.
type Elevator struct {
	root bool
}

// NewElevator returns an Elevator for the current process. As root no sudo
// prefix is used.
func NewElevator() *Elevator {
	return &Elevator{root: system.IsRoot()}
}

// IsRoot reports whether commands run without sudo.
func (e *Elevator) IsRoot() bool {
	return e.root
}

// Phase starts a privileged phase by refreshing the sudo credential cache
// once, so that the phase's commands do not prompt halfway through.
func (e *Elevator) Phase(name string) error {
	log := logger.Logger()
	if e.root {
		log.Debugf("Phase %s: running as root", name)
		return nil
	}
	log.Debugf("Phase %s: refreshing sudo credentials", name)
	if _, err := shell.ExecCmd("sudo -v", false, nil); err != nil {
		return fmt.Errorf("failed to refresh sudo credentials for phase %s: %w", name, err)
	}
	return nil
}

// Run executes cmdStr with elevated privileges and streams its output.
func (e *Elevator) Run(cmdStr string) (string, error) {
	return shell.ExecCmdWithStream(cmdStr, !e.root, nil)
}
