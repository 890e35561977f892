package system

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/open-edge-platform/rocdecode-tool/internal/utils/logger"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/shell"
)

var (
	OsReleaseFile = "/etc/os-release"

	// Geteuid is replaced in tests.
	Geteuid = os.Geteuid
)

// OsDistribution contains the structured os-release identity of the host.
type OsDistribution struct {
	Name      string   // NAME, e.g. "Ubuntu"
	ID        string   // ID, lower case, e.g. "ubuntu"
	IDLike    []string // ID_LIKE, e.g. ["debian"]
	VersionID string   // VERSION_ID, e.g. "22.04"
	Arch      string   // uname -m, e.g. "x86_64"
}

// MajorVersion returns the first dot-separated component of VERSION_ID.
func (d OsDistribution) MajorVersion() string {
	major, _, _ := strings.Cut(d.VersionID, ".")
	return major
}

// ParseOsRelease reads os-release key/value pairs. Quotes around values are
// removed; comments, blank and malformed lines are skipped.
func ParseOsRelease(r io.Reader) (OsDistribution, error) {
	var dist OsDistribution

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		switch key {
		case "NAME":
			dist.Name = value
		case "VERSION_ID":
			dist.VersionID = value
		case "ID":
			dist.ID = strings.ToLower(value)
		case "ID_LIKE":
			dist.IDLike = strings.Fields(strings.ToLower(value))
		}
	}
	if err := scanner.Err(); err != nil {
		return dist, fmt.Errorf("error reading os-release: %w", err)
	}
	return dist, nil
}

// DetectOsDistribution parses OsReleaseFile and the host architecture.
func DetectOsDistribution() (OsDistribution, error) {
	log := logger.Logger()

	file, err := os.Open(OsReleaseFile)
	if err != nil {
		return OsDistribution{}, fmt.Errorf("failed to open %s: %w", OsReleaseFile, err)
	}
	defer file.Close()

	dist, err := ParseOsRelease(file)
	if err != nil {
		return dist, fmt.Errorf("parsing %s: %w", OsReleaseFile, err)
	}
	if dist.ID == "" {
		return dist, fmt.Errorf("%s has no ID entry", OsReleaseFile)
	}

	arch, err := GetHostArch()
	if err != nil {
		return dist, err
	}
	dist.Arch = arch

	log.Infof("Detected OS distribution: %s %s (ID: %s, ID_LIKE: %v, arch: %s)",
		dist.Name, dist.VersionID, dist.ID, dist.IDLike, dist.Arch)
	return dist, nil
}

// GetHostArch returns the machine hardware name reported by uname.
func GetHostArch() (string, error) {
	output, err := shell.ExecCmd("uname -m", false, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get host architecture: %w", err)
	}
	return strings.TrimSpace(output), nil
}

// IsRoot reports whether the process runs with effective uid 0.
func IsRoot() bool {
	return Geteuid() == 0
}

var unsafePlatformChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// PlatformString returns a file-name-safe host description such as
// "Ubuntu-22.04-x86_64".
func PlatformString(dist OsDistribution) string {
	parts := []string{}
	for _, p := range []string{dist.Name, dist.VersionID, dist.Arch} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Trim(unsafePlatformChars.ReplaceAllString(strings.Join(parts, "-"), "_"), "_")
}
