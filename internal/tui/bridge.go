package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pigeonsec/kestrel-admin/internal/console"
	"github.com/pigeonsec/kestrel-admin/internal/session"
)

// Bridge carries orchestrator notices, confirmation prompts and session
// transitions from worker goroutines into the Bubbletea event loop. It
// implements console.Notifier and console.Confirmer.
type Bridge struct {
	notices  chan console.Notice
	confirms chan confirmRequest
	statuses chan session.Status
}

type confirmRequest struct {
	prompt string
	reply  chan bool
}

type noticeMsg struct {
	notice  console.Notice
	bridged bool
}

type confirmRequestMsg confirmRequest

type sessionChangedMsg struct {
	to session.Status
}

// NewBridge returns a bridge with room for a burst of notices.
func NewBridge() *Bridge {
	return &Bridge{
		notices:  make(chan console.Notice, 32),
		confirms: make(chan confirmRequest),
		statuses: make(chan session.Status, 8),
	}
}

// Notify implements console.Notifier. Notices beyond the buffer are dropped
// rather than stalling the operation that raised them.
func (b *Bridge) Notify(n console.Notice) {
	select {
	case b.notices <- n:
	default:
	}
}

// Confirm implements console.Confirmer. It blocks until the operator answers
// the dialog or ctx ends.
func (b *Bridge) Confirm(ctx context.Context, prompt string) (bool, error) {
	req := confirmRequest{prompt: prompt, reply: make(chan bool, 1)}
	select {
	case b.confirms <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// SessionChanged is registered with session.Manager.OnChange.
func (b *Bridge) SessionChanged(_, to session.Status) {
	select {
	case b.statuses <- to:
	default:
	}
}

func (b *Bridge) waitNotice() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg{notice: <-b.notices, bridged: true}
	}
}

func (b *Bridge) waitConfirm() tea.Cmd {
	return func() tea.Msg {
		return confirmRequestMsg(<-b.confirms)
	}
}

func (b *Bridge) waitSession() tea.Cmd {
	return func() tea.Msg {
		return sessionChangedMsg{to: <-b.statuses}
	}
}
