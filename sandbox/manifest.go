package sandbox

import (
	"os"

	"github.com/coreos/go-semver/semver"
	"gopkg.in/yaml.v3"

	"github.com/blockpeak/mod-sandbox/api"
	"github.com/blockpeak/mod-sandbox/errors"
)

// Manifest is a mod's metadata, shipped as a YAML file next to its
// module binary.
type Manifest struct {
	// Name identifies the mod. It is the server-data channel name and
	// must be unique among loaded mods.
	Name string `yaml:"name"`

	// Version is the mod's own semver.
	Version string `yaml:"version"`

	// Contract is the boundary contract version the mod was built
	// against.
	Contract string `yaml:"contract"`
}

// ParseManifest decodes and validates manifest YAML.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, errors.ParseFailed("manifest", err)
	}
	if m.Name == "" {
		return Manifest{}, errors.InvalidInput(errors.PhaseParse, "manifest missing name")
	}
	if m.Version != "" {
		if _, err := semver.NewVersion(m.Version); err != nil {
			return Manifest{}, errors.ParseFailed("manifest version "+m.Version, err)
		}
	}
	if m.Contract == "" {
		return Manifest{}, errors.InvalidInput(errors.PhaseParse, "manifest missing contract version")
	}
	if _, err := semver.NewVersion(m.Contract); err != nil {
		return Manifest{}, errors.ParseFailed("manifest contract version "+m.Contract, err)
	}
	return m, nil
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, errors.ParseFailed("manifest "+path, err)
	}
	return ParseManifest(data)
}

// CheckContract reports whether the mod's required contract version is
// served by the host's. Major and minor must match exactly; the host
// patch level must be at least the mod's.
func (m Manifest) CheckContract() error {
	required, err := semver.NewVersion(m.Contract)
	if err != nil {
		return errors.ParseFailed("manifest contract version "+m.Contract, err)
	}
	host := semver.New(api.ContractVersion)
	if required.Major != host.Major || required.Minor != host.Minor || required.Patch > host.Patch {
		return errors.IncompatibleVersion(m.Name, m.Contract, api.ContractVersion)
	}
	return nil
}
