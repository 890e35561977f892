package report

import (
	"strings"

	"github.com/open-edge-platform/rocdecode-tool/internal/utils/logger"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/shell"
)

// HostInfo is the host and hardware description embedded in reports.
type HostInfo struct {
	System    string
	CPU       string
	GPU       string
	Board     string
	Memory    string
	FQDN      string
	IP        string
	Libraries string
}

// GatherHostInfo runs the introspection commands. A failing command is
// recorded as unavailable and never aborts the report.
func GatherHostInfo(exe string) HostInfo {
	info := HostInfo{
		FQDN:      introspect("hostname --all-fqdns"),
		IP:        introspect("hostname -I"),
		Libraries: introspect("ldd " + shell.Quote(exe)),
	}

	if ok, _ := shell.IsCommandExist("inxi"); !ok {
		logger.Logger().Warnf("inxi not found, hardware details are left out of the report")
		missing := "unavailable (inxi not installed)"
		info.System, info.CPU, info.GPU, info.Board, info.Memory = missing, missing, missing, missing, missing
		return info
	}
	info.System = introspect("inxi -c0 -S")
	info.CPU = introspect("inxi -c0 -C")
	info.GPU = introspect("inxi -c0 -G")
	info.Board = introspect("inxi -c0 -M")
	info.Memory = introspect("inxi -c 0 -m")
	return info
}

func introspect(cmd string) string {
	out, err := shell.ExecCmd(cmd, false, nil)
	if err != nil {
		logger.Logger().Warnf("%s failed: %v", cmd, err)
		return "unavailable (" + cmd + ")"
	}
	return strings.TrimSpace(out)
}
