package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pigeonsec/kestrel-admin/internal/session"
	"github.com/pigeonsec/kestrel-admin/pkg/client"
	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

type loginResultMsg struct {
	user *domain.User
	err  error
}

type restoredMsg struct {
	err error
}

const (
	loginUsername = iota
	loginPassword
)

type loginModel struct {
	sess   *session.Manager
	form   form
	reason string
}

func newLoginModel(sess *session.Manager) loginModel {
	return loginModel{
		sess: sess,
		form: form{
			title: "Sign in",
			fields: []formField{
				{label: "Username", placeholder: "admin"},
				{label: "Password", masked: true},
			},
		},
	}
}

// reset clears the password and shows reason above the form.
func (m loginModel) reset(reason string) loginModel {
	m.form.fields[loginPassword].value = ""
	m.form.focus = loginUsername
	m.form.submitting = false
	m.form.err = ""
	m.reason = reason
	return m
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	username := m.form.value(loginUsername)
	password := m.form.fields[loginPassword].value
	if username == "" || password == "" {
		m.form.err = "Username and password are required"
		return m, nil
	}
	m.form.submitting = true
	sess := m.sess
	return m, func() tea.Msg {
		user, err := sess.Login(context.Background(), username, password)
		return loginResultMsg{user: user, err: err}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.form.submitting = false
		if msg.err != nil {
			m.form.fields[loginPassword].value = ""
			m.form.focus = loginPassword
			m.form.err = loginError(msg.err)
		} else {
			m.reason = ""
		}
		return m, nil

	case tea.KeyMsg:
		var res formResult
		m.form, res = m.form.update(msg)
		if res == formSubmit {
			return m.submit()
		}
	}
	return m, nil
}

func loginError(err error) string {
	if msg, ok := client.APIMessage(err); ok {
		return msg
	}
	switch {
	case client.IsAuthFailure(err):
		return "Invalid username or password"
	case errors.Is(err, session.ErrBusy):
		return "Still verifying the stored session"
	case errors.Is(err, session.ErrEmptyToken):
		return "Backend returned no token"
	}
	return "Login failed: backend unreachable"
}

func (m loginModel) View() string {
	var b strings.Builder
	if m.reason != "" {
		b.WriteString(errorStyle.Render(m.reason) + "\n\n")
	}
	b.WriteString(m.form.View())
	return overlayStyle.Render(b.String())
}
