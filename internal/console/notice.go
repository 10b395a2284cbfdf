package console

import "time"

// Severity of a Notice.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "Success"
	case SeverityError:
		return "Error"
	}
	return "Info"
}

// Notice is one operator-visible message. Every operation outcome, failure
// or success, is reported through a single Notifier.
type Notice struct {
	Severity Severity
	Title    string
	Message  string
	At       time.Time
}

// Notifier receives notices. Implementations must not block for long; the
// TUI forwards them onto a channel.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notice) { f(n) }

type discard struct{}

func (discard) Notify(Notice) {}

func newNotice(sev Severity, msg string) Notice {
	return Notice{Severity: sev, Title: sev.String(), Message: msg, At: time.Now()}
}
