package bridge

import "errors"

// Kind classifies the errors this package can return so callers (in
// particular a tool-protocol dispatcher built on top of this package) can
// branch on failure type without parsing error strings.
type Kind string

const (
	// KindInvalidTarget means resolution produced no usable pane token.
	KindInvalidTarget Kind = "invalid_target"
	// KindInvalidHost means the host failed §4.2's validation (leading
	// dash or embedded whitespace).
	KindInvalidHost Kind = "invalid_host"
	// KindInvalidKeys means send-keys was called with empty keys and
	// enter=false.
	KindInvalidKeys Kind = "invalid_keys"
	// KindConfirmRequired means a destructive verb was dispatched without
	// confirmation.
	KindConfirmRequired Kind = "confirm_required"
	// KindNoSession means a snapshot/history request had no session to
	// resolve.
	KindNoSession Kind = "no_session"
	// KindTimeout means the subprocess exceeded its deadline.
	KindTimeout Kind = "timeout"
	// KindCanceled means a cancellation signal stopped the operation.
	KindCanceled Kind = "canceled"
	// KindTransportFailure means the subprocess exited non-zero.
	KindTransportFailure Kind = "transport_failure"
	// KindProfileLoadFailure means a host or layout document could not be
	// parsed. LoadHostProfilesYAML, LoadSSHConfigHostProfiles and
	// LoadLayoutProfiles return this kind to their callers;
	// LoadHostProfilesRecovered recovers it into an empty map with a warning.
	KindProfileLoadFailure Kind = "profile_load_failure"
)

// Error is the typed error returned by every operation in this package that
// can fail in a way callers need to branch on.
type Error struct {
	Kind    Kind
	Message string
	Stderr  string
	Stdout  string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Wrapped != nil {
		return string(e.Kind) + ": " + e.Wrapped.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Wrapped }

func newErr(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// AsKind reports whether err (or anything it wraps) is a *Error of the given
// kind.
func AsKind(err error, kind Kind) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}
