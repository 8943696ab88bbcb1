package bridge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// hostprofile.go implements the YAML half of C12: the read-only HostProfile
// document described in §6's "Persisted state". Parse failures are
// ProfileLoadFailure. Callers use LoadHostProfilesYAML directly when they
// want the raw error (e.g. to report it); LoadHostProfilesRecovered applies
// §7's recovery to an empty map with a warning.

// hostProfileDoc is the on-disk shape: a plain map from alias to profile.
type hostProfileDoc map[string]HostProfile

// LoadHostProfilesYAML parses a YAML host-profile document at path into a
// map[string]HostProfile.
func LoadHostProfilesYAML(path string) (map[string]HostProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: KindProfileLoadFailure, Message: fmt.Sprintf("read host profiles %s: %v", path, err), Wrapped: err}
	}
	var doc hostProfileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Kind: KindProfileLoadFailure, Message: fmt.Sprintf("parse host profiles %s: %v", path, err), Wrapped: err}
	}
	return map[string]HostProfile(doc), nil
}

// LoadHostProfilesRecovered wraps LoadHostProfilesYAML with §7's recovery
// policy: on ProfileLoadFailure, log a warning to stderr and return an empty
// map rather than propagating the error.
func LoadHostProfilesRecovered(path string) map[string]HostProfile {
	if path == "" {
		return map[string]HostProfile{}
	}
	profiles, err := LoadHostProfilesYAML(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tmux-agent-bridge: host profile load failed, continuing with no profiles: %v\n", err)
		return map[string]HostProfile{}
	}
	return profiles
}
