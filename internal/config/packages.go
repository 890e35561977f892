package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/open-edge-platform/rocdecode-tool/internal/config/validate"
	"github.com/open-edge-platform/rocdecode-tool/internal/platform"
	"github.com/open-edge-platform/rocdecode-tool/internal/utils/general/slice"
	"gopkg.in/yaml.v3"
)

//go:embed packages.yml
var defaultPackageTable []byte

// DefaultPackageTableYAML returns the embedded package table source.
func DefaultPackageTableYAML() []byte {
	return defaultPackageTable
}

// Step is one package-manager install or one raw privileged command.
type Step struct {
	Install []string `yaml:"install,omitempty"`
	Run     string   `yaml:"run,omitempty"`
}

// Bundle is a named group of steps executed in order.
type Bundle struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// UnmarshalYAML accepts a plain package name as shorthand for a bundle with
// a single install step.
func (b *Bundle) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		*b = Bundle{Name: name, Steps: []Step{{Install: []string{name}}}}
		return nil
	}
	type plain Bundle
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*b = Bundle(p)
	return nil
}

// Packages returns every package installed by the bundle.
func (b Bundle) Packages() []string {
	var pkgs []string
	for _, s := range b.Steps {
		pkgs = append(pkgs, s.Install...)
	}
	return pkgs
}

// ReleaseMatch selects a release by os-release ID and/or version. An empty
// ID matches every distribution in the family. Version matches either the
// full VERSION_ID or its major component.
type ReleaseMatch struct {
	ID      string `yaml:"id,omitempty"`
	Version string `yaml:"version,omitempty"`
}

// Release holds per-release additions to a family.
type Release struct {
	Match ReleaseMatch `yaml:"match"`
	// Core is appended to the family core tier.
	Core []Bundle `yaml:"core,omitempty"`
	// Developer replaces the family developer tier when not empty.
	Developer  []Bundle          `yaml:"developer,omitempty"`
	Substitute map[string]string `yaml:"substitute,omitempty"`
}

// FamilyPackages is the package table entry of one platform family.
type FamilyPackages struct {
	Core       []Bundle          `yaml:"core"`
	Developer  []Bundle          `yaml:"developer,omitempty"`
	Substitute map[string]string `yaml:"substitute,omitempty"`
	Releases   []Release         `yaml:"releases,omitempty"`
}

// PackageTable is the static dependency declaration.
type PackageTable struct {
	Version  int                       `yaml:"version"`
	Common   []Bundle                  `yaml:"common"`
	Families map[string]FamilyPackages `yaml:"families"`
}

// PackageSet is the ordered tiered selection for one platform.
type PackageSet struct {
	Common    []Bundle
	Core      []Bundle
	Developer []Bundle
}

// Packages returns all packages of the set in install order.
func (s PackageSet) Packages() []string {
	var pkgs []string
	for _, tier := range [][]Bundle{s.Common, s.Core, s.Developer} {
		for _, b := range tier {
			pkgs = append(pkgs, b.Packages()...)
		}
	}
	return pkgs
}

// LoadPackageTable validates data against the package table schema and
// decodes it.
func LoadPackageTable(data []byte) (*PackageTable, error) {
	if err := validate.ValidatePackageTableYAML(data); err != nil {
		return nil, fmt.Errorf("package table validation error: %w", err)
	}
	var table PackageTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse package table: %w", err)
	}
	return &table, nil
}

// LoadPackageTableFile loads a package table from path, or the embedded
// table when path is empty.
func LoadPackageTableFile(path string) (*PackageTable, error) {
	if path == "" {
		return LoadPackageTable(defaultPackageTable)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read package table %s: %w", path, err)
	}
	return LoadPackageTable(data)
}

// Select builds the package set for profile. Substitutions are applied to
// install steps, then packages already installed by an earlier step of the
// set are dropped.
func (t *PackageTable) Select(profile platform.Profile) (PackageSet, error) {
	family, ok := t.Families[profile.Family]
	if !ok {
		return PackageSet{}, fmt.Errorf("%w: no packages declared for family %q",
			platform.ErrUnsupportedPlatform, profile.Family)
	}

	core := append([]Bundle{}, family.Core...)
	developer := append([]Bundle{}, family.Developer...)
	subst := make(map[string]string)
	for k, v := range family.Substitute {
		subst[k] = v
	}

	for _, r := range family.Releases {
		if !r.Match.matches(profile) {
			continue
		}
		core = append(core, r.Core...)
		if len(r.Developer) > 0 {
			developer = append([]Bundle{}, r.Developer...)
		}
		for k, v := range r.Substitute {
			subst[k] = v
		}
	}

	seen := make(map[string]struct{})
	set := PackageSet{
		Common:    normalizeTier(t.Common, subst, seen),
		Core:      normalizeTier(core, subst, seen),
		Developer: normalizeTier(developer, subst, seen),
	}
	return set, nil
}

func (m ReleaseMatch) matches(p platform.Profile) bool {
	if m.ID != "" && m.ID != p.ID {
		return false
	}
	if m.Version != "" && m.Version != p.VersionID && m.Version != p.MajorVersion {
		return false
	}
	return true
}

// normalizeTier returns copies of bundles with substitutions applied and
// duplicate packages removed. Bundles left without steps are dropped.
func normalizeTier(bundles []Bundle, subst map[string]string, seen map[string]struct{}) []Bundle {
	out := make([]Bundle, 0, len(bundles))
	for _, b := range bundles {
		nb := Bundle{Name: b.Name}
		if to, ok := subst[b.Name]; ok {
			nb.Name = to
		}
		for _, s := range b.Steps {
			if s.Run != "" {
				nb.Steps = append(nb.Steps, Step{Run: s.Run})
				continue
			}
			var pkgs []string
			for _, pkg := range slice.Unique(slice.Replace(s.Install, subst)) {
				if _, dup := seen[pkg]; dup {
					continue
				}
				seen[pkg] = struct{}{}
				pkgs = append(pkgs, pkg)
			}
			if len(pkgs) > 0 {
				nb.Steps = append(nb.Steps, Step{Install: pkgs})
			}
		}
		if len(nb.Steps) > 0 {
			out = append(out, nb)
		}
	}
	return out
}
