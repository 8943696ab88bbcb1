package bridge

import (
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// layoutprofile.go implements C13: the named LayoutProfile store. Atomic
// write is adapted from the teacher's SaveState (state.go); the read-modify-
// write is additionally wrapped in a gofrs/flock file lock because, unlike
// the teacher's single-process state file, this document may be edited by
// more than one tmuxbridgectl invocation concurrently (§4.13).

// WindowLayout is one window entry of a LayoutProfile.
type WindowLayout struct {
	Index  int    `yaml:"index"`
	Name   string `yaml:"name"`
	Layout string `yaml:"layout"`
}

// LayoutProfile is a named, persisted tmux layout (§3).
type LayoutProfile struct {
	Name    string         `yaml:"name"`
	Host    string         `yaml:"host,omitempty"`
	Session string         `yaml:"session"`
	Windows []WindowLayout `yaml:"windows"`
}

type layoutProfileDoc map[string]LayoutProfile

func lockPathFor(path string) string { return path + ".lock" }

// LoadLayoutProfiles loads the full name->LayoutProfile mapping from path. A
// missing file returns an empty map, not an error. A parse failure is
// ProfileLoadFailure, left to the caller to recover per §7.
func LoadLayoutProfiles(path string) (map[string]LayoutProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]LayoutProfile{}, nil
		}
		return nil, &Error{Kind: KindProfileLoadFailure, Message: fmt.Sprintf("read layout profiles %s: %v", path, err), Wrapped: err}
	}
	var doc layoutProfileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Kind: KindProfileLoadFailure, Message: fmt.Sprintf("parse layout profiles %s: %v", path, err), Wrapped: err}
	}
	if doc == nil {
		doc = layoutProfileDoc{}
	}
	return map[string]LayoutProfile(doc), nil
}

// SaveLayoutProfile upserts profile into the document at path, under an
// exclusive file lock, then writes the whole document back atomically (temp
// file + rename).
func SaveLayoutProfile(path string, profile LayoutProfile) error {
	lock := flock.New(lockPathFor(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock layout profiles %s: %w", path, err)
	}
	defer lock.Unlock()

	doc, err := LoadLayoutProfiles(path)
	if err != nil {
		return err
	}
	doc[profile.Name] = profile

	payload, err := yaml.Marshal(layoutProfileDoc(doc))
	if err != nil {
		return fmt.Errorf("marshal layout profiles: %w", err)
	}

	tmp := path + fmt.Sprintf(".tmp-%d-%d", os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write temp layout profiles %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp layout profiles into place: %w", err)
	}
	return nil
}
