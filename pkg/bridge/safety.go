package bridge

import (
	"strings"
	"sync"
)

// safety.go implements C7: destructive-verb classification, the confirmation
// gate, and audit routing. Classification philosophy (verb taxonomy as a
// tagged record rather than an inheritance hierarchy, an explicit allowlist
// mindset) is grounded in the sibling tmux-session-manager's Policy/
// AllowedTmuxCommands model (spec.go in other_examples).

var destructiveVerbs = map[string]struct{}{
	"kill-session":  {},
	"kill-window":   {},
	"kill-pane":     {},
	"kill-server":   {},
	"unlink-window": {},
	"unlink-pane":   {},
}

// IsDestructive classifies a verb plus its raw argv per §4.7: destructive if
// it is in the fixed set, if its name begins with "kill-", or if it is
// "attach-session" with a "-k" flag anywhere in args.
func IsDestructive(verb string, args []string) bool {
	if _, ok := destructiveVerbs[verb]; ok {
		return true
	}
	if strings.HasPrefix(verb, "kill-") {
		return true
	}
	if verb == "attach-session" {
		for _, a := range args {
			if a == "-k" {
				return true
			}
		}
	}
	return false
}

// ClassifyRawCommand applies IsDestructive to a raw-command argv, using its
// first element as the verb and the remainder as args, per §4.7's "For any
// raw-command verb, the gate applies the same classification to the first
// argument plus flag scan."
func ClassifyRawCommand(argv []string) bool {
	if len(argv) == 0 {
		return false
	}
	return IsDestructive(argv[0], argv[1:])
}

// AuditSink receives a side-effecting call record for logging, whenever the
// host/session pair has audit enabled.
type AuditSink interface {
	RecordAudit(rec AuditRecord) error
	RecordSession(rec SessionLogRecord) error
}

// AuditEnablement is the process-wide map of host:session pairs with audit
// logging turned on. Writes take the write lock and reads the read lock of one
// RWMutex; reads are not lock-free.
type AuditEnablement struct {
	mu      sync.RWMutex
	enabled map[string]bool
}

// NewAuditEnablement constructs an empty enablement map.
func NewAuditEnablement() *AuditEnablement {
	return &AuditEnablement{enabled: make(map[string]bool)}
}

func auditKey(host, session string) string { return host + ":" + session }

// SetEnabled turns audit logging on or off for a host/session pair.
func (a *AuditEnablement) SetEnabled(host, session string, on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled[auditKey(host, session)] = on
}

// IsEnabled reports whether audit logging is on for a host/session pair.
func (a *AuditEnablement) IsEnabled(host, session string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled[auditKey(host, session)]
}

// Gate enforces confirmation, host validation, and audit routing around a
// dispatch. Every side-effecting call goes through Dispatch.
type Gate struct {
	Audit *AuditEnablement
	Sink  AuditSink
}

// DispatchRequest describes one side-effecting call awaiting the gate.
type DispatchRequest struct {
	Host    string
	Session string
	Verb    string
	Args    []string
	Confirm bool
	// Meta is a redacted parameter summary recorded alongside the verb name.
	Meta map[string]string
}

// Dispatch validates the host, rejects unconfirmed destructive calls, runs
// fn (the actual side-effecting call) on success, and — when the host/session
// pair has audit enabled — routes a record through the sink regardless of
// fn's outcome (session logging always happens for side-effecting calls;
// audit logging only when enabled, per §4.9).
func (g Gate) Dispatch(req DispatchRequest, fn func() (string, error)) (string, error) {
	if err := validateHost(req.Host); err != nil {
		return "", err
	}
	if IsDestructive(req.Verb, req.Args) && !req.Confirm {
		return "", newErr(KindConfirmRequired, "destructive verb "+req.Verb+" requires confirm=true")
	}

	out, err := fn()

	if g.Sink != nil {
		_ = g.Sink.RecordSession(SessionLogRecord{
			Host:    req.Host,
			Session: req.Session,
			Verb:    req.Verb,
			Meta:    req.Meta,
		})
		if g.Audit != nil && g.Audit.IsEnabled(req.Host, req.Session) {
			_ = g.Sink.RecordAudit(AuditRecord{
				Host:    req.Host,
				Session: req.Session,
				Event:   req.Verb,
				Meta:    req.Meta,
			})
		}
	}

	return out, err
}
