// Package platform resolves the host distribution into the package-manager
// profile used by the dependency provisioner.
package platform

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/open-edge-platform/rocdecode-tool/internal/utils/general/slice"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/system"
)

// ErrUnsupportedPlatform is returned for distributions or releases outside
// the supported set.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Family groups distributions sharing one package-manager invocation.
type Family struct {
	// Name is the family key used by the package table, e.g. "debian".
	Name string
	// Releases maps an os-release ID to its supported major versions.
	Releases map[string][]string

	PackageManager string
	AssumeYesFlag  string
	NoVerifyFlag   string
	// RefreshArgs refreshes the package index, e.g. "update".
	RefreshArgs string
}

var families = make(map[string]*Family)

// Register makes a Family available to Resolve.
func Register(f *Family) {
	families[f.Name] = f
}

// Get returns the Family by name.
func Get(name string) (*Family, bool) {
	f, ok := families[name]
	return f, ok
}

func init() {
	Register(&Family{
		Name: "debian",
		Releases: map[string][]string{
			"ubuntu": {"20", "22", "24"},
			"debian": {"11", "12"},
		},
		PackageManager: "apt-get",
		AssumeYesFlag:  "-y",
		NoVerifyFlag:   "--allow-unauthenticated",
		RefreshArgs:    "update",
	})
	Register(&Family{
		Name: "rhel",
		Releases: map[string][]string{
			"centos":    {"7", "8", "9"},
			"rhel":      {"7", "8", "9"},
			"rocky":     {"8", "9"},
			"almalinux": {"8", "9"},
		},
		PackageManager: "yum",
		AssumeYesFlag:  "-y",
		NoVerifyFlag:   "--nogpgcheck",
		RefreshArgs:    "makecache",
	})
	Register(&Family{
		Name: "sles",
		Releases: map[string][]string{
			"sles":          {"15"},
			"opensuse-leap": {"15"},
		},
		PackageManager: "zypper",
		AssumeYesFlag:  "-n",
		NoVerifyFlag:   "--no-gpg-checks",
		RefreshArgs:    "refresh",
	})
	Register(&Family{
		Name: "mariner",
		Releases: map[string][]string{
			"mariner":    {"2"},
			"azurelinux": {"3"},
		},
		PackageManager: "tdnf",
		AssumeYesFlag:  "-y",
		NoVerifyFlag:   "--nogpgcheck",
		RefreshArgs:    "makecache",
	})
}

// Profile is the resolved host platform. It is a value type and never
// changes after Resolve.
type Profile struct {
	Family       string
	ID           string
	VersionID    string
	MajorVersion string
	Arch         string

	PackageManager string
	AssumeYesFlag  string
	NoVerifyFlag   string
	RefreshArgs    string
}

// Resolve maps structured os-release data onto a registered family. The
// distribution ID is tried first, then each ID_LIKE entry. Nothing is
// guessed: an unknown family or major version yields ErrUnsupportedPlatform.
func Resolve(dist system.OsDistribution) (Profile, error) {
	ids := append([]string{dist.ID}, dist.IDLike...)
	major := dist.MajorVersion()

	for _, id := range ids {
		family, ok := familyForID(id)
		if !ok {
			continue
		}
		versions := family.Releases[id]
		if !slice.Contains(versions, major) {
			return Profile{}, fmt.Errorf("%w: %s %s (supported %s releases: %s)",
				ErrUnsupportedPlatform, dist.ID, dist.VersionID, id, strings.Join(versions, ", "))
		}
		return Profile{
			Family:         family.Name,
			ID:             dist.ID,
			VersionID:      dist.VersionID,
			MajorVersion:   major,
			Arch:           dist.Arch,
			PackageManager: family.PackageManager,
			AssumeYesFlag:  family.AssumeYesFlag,
			NoVerifyFlag:   family.NoVerifyFlag,
			RefreshArgs:    family.RefreshArgs,
		}, nil
	}

	return Profile{}, fmt.Errorf("%w: %q (ID=%s, ID_LIKE=%s); supported: %s",
		ErrUnsupportedPlatform, dist.Name, dist.ID, strings.Join(dist.IDLike, " "), SupportedSummary())
}

// SupportedSummary lists the supported distributions and majors.
func SupportedSummary() string {
	var entries []string
	for _, f := range families {
		for id, versions := range f.Releases {
			entries = append(entries, id+" "+strings.Join(versions, "/"))
		}
	}
	sort.Strings(entries)
	return strings.Join(entries, "; ")
}

func familyForID(id string) (*Family, bool) {
	for _, f := range families {
		if _, ok := f.Releases[id]; ok {
			return f, true
		}
	}
	return nil, false
}

// InstallCommand returns the package-manager invocation installing pkgs,
// e.g. "apt-get -y --allow-unauthenticated install gcc".
func (p Profile) InstallCommand(pkgs ...string) string {
	parts := []string{p.PackageManager, p.AssumeYesFlag}
	if p.NoVerifyFlag != "" {
		parts = append(parts, p.NoVerifyFlag)
	}
	parts = append(parts, "install")
	parts = append(parts, pkgs...)
	return strings.Join(parts, " ")
}

// RefreshCommand returns the package index refresh invocation.
func (p Profile) RefreshCommand() string {
	return strings.Join([]string{p.PackageManager, p.AssumeYesFlag, p.RefreshArgs}, " ")
}

// String renders the profile for log lines.
func (p Profile) String() string {
	return fmt.Sprintf("%s %s (%s family, %s, %s)", p.ID, p.VersionID, p.Family, p.PackageManager, p.Arch)
}
