package console

import (
	"errors"
	"fmt"

	"github.com/pigeonsec/kestrel-admin/pkg/client"
)

// FailureKind groups operation failures by how the operator recovers from them.
type FailureKind int

const (
	// FailureAuth means the credential is missing, invalid or expired.
	FailureAuth FailureKind = iota + 1
	// FailureValidation means the backend rejected the payload with a message.
	FailureValidation
	// FailureTransport covers network errors, timeouts, undecodable responses
	// and HTTP errors without a backend message.
	FailureTransport
	// FailurePrecondition is a local check that failed before any network call.
	FailurePrecondition
)

func (k FailureKind) String() string {
	switch k {
	case FailureAuth:
		return "auth"
	case FailureValidation:
		return "validation"
	case FailureTransport:
		return "transport"
	case FailurePrecondition:
		return "precondition"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Failure is the single error type every orchestrator operation returns.
// Message is what the operator sees.
type Failure struct {
	Kind    FailureKind
	Op      string
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Op, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Op, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsKind reports whether err is a Failure of kind k.
func IsKind(err error, k FailureKind) bool {
	f, ok := AsFailure(err)
	return ok && f.Kind == k
}

var (
	// ErrStale is returned when a result arrived after it stopped being
	// relevant: a newer request for the same kind was issued, the view
	// released it, or the session changed while it was in flight.
	ErrStale = errors.New("console: result superseded")
	// ErrCancelled is returned when the operator declined a confirmation.
	ErrCancelled = errors.New("console: cancelled by operator")
)

const (
	msgSignedOut = "Not signed in"
	msgExpired   = "Session expired. Please sign in again."
)

func precondition(op, msg string) *Failure {
	return &Failure{Kind: FailurePrecondition, Op: op, Message: msg}
}

// classify maps a backend error onto the failure taxonomy. generic is the
// message used when the backend supplied none.
func classify(op, generic string, err error) *Failure {
	if f, ok := AsFailure(err); ok {
		return f
	}
	if client.IsAuthFailure(err) {
		return &Failure{Kind: FailureAuth, Op: op, Message: msgExpired, Err: err}
	}
	if msg, ok := client.APIMessage(err); ok {
		return &Failure{Kind: FailureValidation, Op: op, Message: msg, Err: err}
	}
	return &Failure{Kind: FailureTransport, Op: op, Message: generic, Err: err}
}
