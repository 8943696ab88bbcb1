package bridge

import "fmt"

// paneref.go: the PaneRef partial-address type and the target resolver (C3).

// PaneRef is a partial address (host?, session?, window?, pane?). Any
// combination of fields may be empty. Constructed per request, immutable,
// never stored long-term except inside DefaultRegistry.
type PaneRef struct {
	Host    string
	Session string
	Window  string
	Pane    string
}

// IsZero reports whether every field of r is empty.
func (r PaneRef) IsZero() bool {
	return r.Host == "" && r.Session == "" && r.Window == "" && r.Pane == ""
}

// HostProfile is a read-only per-host record loaded once at startup: ordered
// PATH additions, an optional tmux binary override, and default session/pane
// to fill in when a target omits them.
type HostProfile struct {
	PathAdd        []string `yaml:"pathAdd"`
	TmuxBin        string   `yaml:"tmuxBin,omitempty"`
	DefaultSession string   `yaml:"defaultSession,omitempty"`
	DefaultPane    string   `yaml:"defaultPane,omitempty"`
}

// Resolver normalizes a partial PaneRef into a concrete pane token, consulting
// host profiles and a process-wide default when fields are missing.
type Resolver struct {
	Defaults     *DefaultRegistry
	HostProfiles map[string]HostProfile
}

// Resolve implements §4.3's four-step algorithm. It returns the effective
// PaneRef (caller's input is not mutated) and the pane token passed to tmux
// -t.
func (r Resolver) Resolve(in PaneRef) (PaneRef, string, error) {
	eff := in
	if eff.IsZero() {
		if r.Defaults != nil {
			eff = r.Defaults.Get()
		}
	}

	if prof, ok := r.HostProfiles[eff.Host]; ok {
		if eff.Session == "" {
			eff.Session = prof.DefaultSession
		}
		if eff.Pane == "" {
			eff.Pane = prof.DefaultPane
		}
	}

	token, err := paneToken(eff)
	if err != nil {
		return eff, "", err
	}
	return eff, token, nil
}

func paneToken(r PaneRef) (string, error) {
	switch {
	case r.Pane != "":
		return r.Pane, nil
	case r.Window != "" && r.Session != "":
		return fmt.Sprintf("%s:%s.0", r.Session, r.Window), nil
	case r.Session != "":
		return r.Session + ".0", nil
	default:
		return "", newErr(KindInvalidTarget, "no session, window, or pane to resolve a target from")
	}
}
