package bridge

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// defaults.go: the process-wide default-target registry (C8). Writes and reads
// both take one mutex (reads return a copy; they are not lock-free); optional
// best-effort persistence.
// Atomic-write pattern (tmp file + rename) adapted from the teacher's
// SaveState in state.go.

// defaultRegistryDoc is the on-disk shape for a persisted DefaultRegistry.
type defaultRegistryDoc struct {
	Host    string `yaml:"host,omitempty"`
	Session string `yaml:"session,omitempty"`
	Window  string `yaml:"window,omitempty"`
	Pane    string `yaml:"pane,omitempty"`
}

// DefaultRegistry holds the single process-wide default PaneRef, with
// optional disk persistence.
//
// Update semantics (Open Question 1, resolved): each field is passed as a
// FieldUpdate, and is "supplied" when Set is true. A supplied empty string
// DOES clear the field; Set=false leaves the existing value untouched. This
// distinguishes "the caller said host=''" from "the caller didn't mention
// host at all", which a bare PaneRef (all fields are plain strings) cannot
// express on its own.
type DefaultRegistry struct {
	mu          sync.Mutex
	current     PaneRef
	persistPath string
}

// NewDefaultRegistry constructs a registry, optionally loading an existing
// persisted value from persistPath. persistPath may be empty to disable
// persistence.
func NewDefaultRegistry(persistPath string) *DefaultRegistry {
	reg := &DefaultRegistry{persistPath: persistPath}
	if persistPath == "" {
		return reg
	}
	data, err := os.ReadFile(persistPath)
	if err != nil {
		return reg
	}
	var doc defaultRegistryDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return reg
	}
	reg.current = PaneRef{Host: doc.Host, Session: doc.Session, Window: doc.Window, Pane: doc.Pane}
	return reg
}

// Get returns a snapshot of the current default PaneRef.
func (d *DefaultRegistry) Get() PaneRef {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// FieldUpdate names one field of a PaneRef to update, with Value meaningful
// only when Set is true (Set=false means "not supplied", leave untouched).
type FieldUpdate struct {
	Value string
	Set   bool
}

// Update applies supplied fields to the registry (last-writer-wins per
// field), then persists best-effort if a path is configured. Persistence
// failures are logged to stderr but never fail the call.
func (d *DefaultRegistry) Update(host, session, window, pane FieldUpdate) PaneRef {
	d.mu.Lock()
	if host.Set {
		d.current.Host = host.Value
	}
	if session.Set {
		d.current.Session = session.Value
	}
	if window.Set {
		d.current.Window = window.Value
	}
	if pane.Set {
		d.current.Pane = pane.Value
	}
	snapshot := d.current
	path := d.persistPath
	d.mu.Unlock()

	if path != "" {
		if err := persistDefaultRegistry(path, snapshot); err != nil {
			fmt.Fprintf(os.Stderr, "tmux-agent-bridge: persist defaults failed: %v\n", err)
		}
	}
	return snapshot
}

func persistDefaultRegistry(path string, r PaneRef) error {
	doc := defaultRegistryDoc{Host: r.Host, Session: r.Session, Window: r.Window, Pane: r.Pane}
	payload, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	tmp := path + fmt.Sprintf(".tmp-%d-%d", os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write temp defaults %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp defaults into place: %w", err)
	}
	return nil
}

// Set is a convenience constructor for a "supplied" FieldUpdate.
func Set(v string) FieldUpdate { return FieldUpdate{Value: v, Set: true} }

// Unset is the zero value of FieldUpdate ("not supplied").
var Unset = FieldUpdate{}
