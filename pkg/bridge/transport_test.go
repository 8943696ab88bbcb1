package bridge

import (
	"context"
	"testing"
)

// fakeTransport records every argv it was given and returns scripted
// responses in order, or a scripted error. Used across the test suite in
// place of a real tmux/ssh binary.
type fakeTransport struct {
	calls     [][]string
	responses []string
	errs      []error
	i         int
}

func (f *fakeTransport) Run(ctx context.Context, args []string) (string, error) {
	f.calls = append(f.calls, append([]string(nil), args...))
	var out string
	var err error
	if f.i < len(f.responses) {
		out = f.responses[f.i]
	}
	if f.i < len(f.errs) {
		err = f.errs[f.i]
	}
	f.i++
	return out, err
}

func TestValidateHost_RejectsLeadingDash(t *testing.T) {
	if err := validateHost("-oProxyCommand=x"); !AsKind(err, KindInvalidHost) {
		t.Fatalf("expected InvalidHost, got %v", err)
	}
}

func TestValidateHost_RejectsWhitespace(t *testing.T) {
	if err := validateHost("host with space"); !AsKind(err, KindInvalidHost) {
		t.Fatalf("expected InvalidHost, got %v", err)
	}
}

func TestValidateHost_AllowsEmptyAndPlain(t *testing.T) {
	if err := validateHost(""); err != nil {
		t.Fatalf("empty host should be valid (local), got %v", err)
	}
	if err := validateHost("h1.example.com"); err != nil {
		t.Fatalf("plain host should be valid, got %v", err)
	}
}
