package authstate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProfileEntry is one named shortcut for the broker's browser_kind,
// headless, and auth_file options.
type ProfileEntry struct {
	BrowserKind string `yaml:"browser_kind"`
	Headless    bool   `yaml:"headless"`
	AuthFile    string `yaml:"auth_file"`
}

// Profiles maps a short name (as passed to --profile) to its entry.
type Profiles map[string]ProfileEntry

// LoadProfiles reads a YAML document of named profiles from path. A
// missing file yields an empty set rather than an error, since
// profiles are an optional convenience layered on top of the bare
// auth_file option.
func LoadProfiles(path string) (Profiles, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Profiles{}, nil
		}
		return nil, fmt.Errorf("authstate: failed to read profiles file: %w", err)
	}
	var p Profiles
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("authstate: invalid profiles YAML: %w", err)
	}
	return p, nil
}

// Resolve looks up name, returning ok=false if it isn't defined.
func (p Profiles) Resolve(name string) (ProfileEntry, bool) {
	entry, ok := p[name]
	return entry, ok
}
