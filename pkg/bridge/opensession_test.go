package bridge

import (
	"context"
	"strings"
	"testing"
)

// TestOpenSession_S1_CreatesAndSetsDefaults covers spec.md §8's S1 scenario
// literally: has-session fails, new-session is issued, defaults become
// {host, session}, and the reply names the host and session.
func TestOpenSession_S1_CreatesAndSetsDefaults(t *testing.T) {
	ft := &fakeTransport{errs: []error{newErr(KindTransportFailure, "no such session"), nil}}
	p := Primitives{T: ft}
	defaults := NewDefaultRegistry("")

	res, err := OpenSession(context.Background(), p, defaults, "h1", "s")
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if !res.Created {
		t.Fatalf("expected Created=true")
	}
	if !strings.Contains(res.Reply, "Created remote session s on h1") {
		t.Fatalf("reply = %q, want it to contain %q", res.Reply, "Created remote session s on h1")
	}

	if len(ft.calls) != 2 {
		t.Fatalf("expected 2 transport calls, got %d: %v", len(ft.calls), ft.calls)
	}
	if got := ft.calls[0]; got[0] != "has-session" || got[len(got)-1] != "s" {
		t.Fatalf("first call = %v, want has-session ... s", got)
	}
	if got := ft.calls[1]; got[0] != "new-session" {
		t.Fatalf("second call = %v, want new-session ...", got)
	}

	ref := defaults.Get()
	if ref.Host != "h1" || ref.Session != "s" {
		t.Fatalf("defaults = %+v, want {Host: h1, Session: s}", ref)
	}
}

// TestOpenSession_ExistingSession_NoNewSessionCall verifies the idempotent
// path: when has-session succeeds, OpenSession never issues new-session, and
// the reply reflects an existing session rather than a created one.
func TestOpenSession_ExistingSession_NoNewSessionCall(t *testing.T) {
	ft := &fakeTransport{responses: []string{""}}
	p := Primitives{T: ft}
	defaults := NewDefaultRegistry("")

	res, err := OpenSession(context.Background(), p, defaults, "h1", "s")
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if res.Created {
		t.Fatalf("expected Created=false")
	}
	if !strings.Contains(res.Reply, "Attached to existing remote session s on h1") {
		t.Fatalf("reply = %q", res.Reply)
	}
	if len(ft.calls) != 1 {
		t.Fatalf("expected 1 transport call (has-session only), got %d: %v", len(ft.calls), ft.calls)
	}
}

// TestOpenSession_NewSessionFailurePropagates ensures a failed new-session
// call surfaces its error and leaves defaults untouched.
func TestOpenSession_NewSessionFailurePropagates(t *testing.T) {
	wantErr := newErr(KindTransportFailure, "boom")
	ft := &fakeTransport{
		errs: []error{newErr(KindTransportFailure, "no such session"), wantErr},
	}
	p := Primitives{T: ft}
	defaults := NewDefaultRegistry("")

	_, err := OpenSession(context.Background(), p, defaults, "h1", "s")
	if err == nil {
		t.Fatalf("expected error")
	}
	ref := defaults.Get()
	if ref.Host != "" || ref.Session != "" {
		t.Fatalf("defaults should be untouched on failure, got %+v", ref)
	}
}

// TestOpenSession_RequiresSession checks the empty-session guard.
func TestOpenSession_RequiresSession(t *testing.T) {
	defaults := NewDefaultRegistry("")
	_, err := OpenSession(context.Background(), Primitives{T: &fakeTransport{}}, defaults, "h1", "")
	if !AsKind(err, KindInvalidTarget) {
		t.Fatalf("expected KindInvalidTarget, got %v", err)
	}
}
