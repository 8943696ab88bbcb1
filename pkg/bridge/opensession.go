package bridge

import (
	"context"
	"fmt"
)

// opensession.go implements spec.md §8's S1 scenario: idempotently ensure a
// session exists on a host, point the default-target registry at it, and
// return operator-facing reply text. The check-then-create shape is grounded
// on the gastown example's Tmux.EnsureSessionFresh (internal/tmux/tmux.go:
// HasSession, then NewSession only if absent), adapted here to the
// non-destructive path only — this module never kills a zombie session on
// open, since that is a separate, confirm-gated kill-session call.

// OpenSessionResult is the outcome of OpenSession.
type OpenSessionResult struct {
	Created bool
	Reply   string
}

// OpenSession checks whether session exists on host; if it does not, creates
// it via NewSession. Either way, it updates the default-target registry to
// {host, session} and returns reply text describing what happened, per §8's
// S1 ("Created remote session s on h1").
func OpenSession(ctx context.Context, p Primitives, defaults *DefaultRegistry, host, session string) (OpenSessionResult, error) {
	if session == "" {
		return OpenSessionResult{}, newErr(KindInvalidTarget, "open-session requires a session name")
	}

	created := false
	if !p.HasSession(ctx, session) {
		if _, err := p.NewSession(ctx, session, ""); err != nil {
			return OpenSessionResult{}, err
		}
		created = true
	}

	defaults.Update(Set(host), Set(session), Unset, Unset)

	return OpenSessionResult{Created: created, Reply: openSessionReply(created, session, host)}, nil
}

func openSessionReply(created bool, session, host string) string {
	kind := "remote"
	label := host
	if host == "" {
		kind = "local"
		label = "local"
	}
	action := "Attached to existing"
	if created {
		action = "Created"
	}
	return fmt.Sprintf("%s %s session %s on %s", action, kind, session, label)
}
