package bridge

import "testing"

func TestResolve_PaneWins(t *testing.T) {
	r := Resolver{}
	_, token, err := r.Resolve(PaneRef{Session: "s", Window: "1", Pane: "%3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "%3" {
		t.Fatalf("token = %q, want %%3", token)
	}
}

func TestResolve_SessionWindow(t *testing.T) {
	r := Resolver{}
	_, token, err := r.Resolve(PaneRef{Session: "s", Window: "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "s:2.0" {
		t.Fatalf("token = %q, want s:2.0", token)
	}
}

func TestResolve_SessionOnly(t *testing.T) {
	r := Resolver{}
	_, token, err := r.Resolve(PaneRef{Session: "s"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "s.0" {
		t.Fatalf("token = %q, want s.0", token)
	}
}

func TestResolve_EmptyFailsInvalidTarget(t *testing.T) {
	r := Resolver{}
	_, _, err := r.Resolve(PaneRef{})
	if !AsKind(err, KindInvalidTarget) {
		t.Fatalf("expected InvalidTarget, got %v", err)
	}
}

func TestResolve_FallsBackToProcessDefault(t *testing.T) {
	reg := NewDefaultRegistry("")
	reg.Update(Set("h1"), Set("s1"), Unset, Unset)
	r := Resolver{Defaults: reg}

	eff, token, err := r.Resolve(PaneRef{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eff.Host != "h1" || token != "s1.0" {
		t.Fatalf("eff=%+v token=%q, want host h1 token s1.0", eff, token)
	}
}

func TestResolve_HostProfileFillsSessionAndPane(t *testing.T) {
	r := Resolver{
		HostProfiles: map[string]HostProfile{
			"h1": {DefaultSession: "main", DefaultPane: "%5"},
		},
	}
	eff, token, err := r.Resolve(PaneRef{Host: "h1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eff.Session != "main" || token != "%5" {
		t.Fatalf("eff=%+v token=%q, want session main token %%5", eff, token)
	}
}

// Every (host?, session, window, pane) input where at least session is
// present must yield a non-empty pane token (§8 property 8).
func TestResolve_CompletenessWhenSessionPresent(t *testing.T) {
	cases := []PaneRef{
		{Session: "s"},
		{Session: "s", Window: "0"},
		{Session: "s", Pane: "%1"},
		{Host: "h", Session: "s"},
		{Host: "h", Session: "s", Window: "1", Pane: "%2"},
	}
	r := Resolver{}
	for _, in := range cases {
		_, token, err := r.Resolve(in)
		if err != nil {
			t.Fatalf("Resolve(%+v) unexpected error: %v", in, err)
		}
		if token == "" {
			t.Fatalf("Resolve(%+v) produced empty token", in)
		}
	}
}
