package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pigeonsec/kestrel-admin/internal/console"
	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

type keysLoadedMsg struct {
	keys []domain.APIKey
	err  error
}

type keyCreatedMsg struct {
	key  *domain.APIKey
	keys []domain.APIKey
	err  error
}

type keyDeletedMsg struct {
	keys []domain.APIKey
	err  error
}

const (
	keyName = iota
	keyRole
)

// writeClipboard is swapped in tests.
var writeClipboard = clipboard.WriteAll

func copySecret(secret string) tea.Cmd {
	return func() tea.Msg {
		n := console.Notice{Severity: console.SeveritySuccess, Message: "API key copied to clipboard"}
		if err := writeClipboard(secret); err != nil {
			n = console.Notice{Severity: console.SeverityError, Message: "Failed to copy to clipboard"}
		}
		n.Title = n.Severity.String()
		return noticeMsg{notice: n}
	}
}

type keysModel struct {
	orch    *console.Orchestrator
	confirm console.Confirmer
	keys    []domain.APIKey
	cursor  int
	loading bool
	loaded  bool
	form    *form
	// reveal holds a freshly created key; its full secret is shown once.
	reveal *domain.APIKey
	height int
}

func newKeysModel(orch *console.Orchestrator, c console.Confirmer) keysModel {
	return keysModel{orch: orch, confirm: c}
}

func newKeyForm() form {
	return form{
		title: "New API key",
		fields: []formField{
			keyName: {label: "Name", placeholder: "siem-prod"},
			keyRole: {label: "Role", value: string(domain.RoleReader), options: stringsOf(domain.Roles)},
		},
	}
}

func (m keysModel) editing() bool {
	return m.form != nil || m.reveal != nil
}

func (m keysModel) load() (keysModel, tea.Cmd) {
	if m.orch == nil {
		return m, nil
	}
	m.loading = true
	o := m.orch
	return m, func() tea.Msg {
		keys, err := o.ListAPIKeys(context.Background())
		return keysLoadedMsg{keys: keys, err: err}
	}
}

func (m keysModel) submit() (keysModel, tea.Cmd) {
	name := m.form.value(keyName)
	if name == "" {
		m.form.err = "name: required"
		return m, nil
	}
	if m.orch == nil {
		return m, nil
	}
	m.form.submitting = true
	o := m.orch
	role := domain.Role(m.form.value(keyRole))
	return m, func() tea.Msg {
		key, err := o.CreateAPIKey(context.Background(), name, role)
		return keyCreatedMsg{key: key, keys: o.APIKeys(), err: err}
	}
}

func (m keysModel) remove() tea.Cmd {
	if m.orch == nil || m.cursor >= len(m.keys) {
		return nil
	}
	o, c, id := m.orch, m.confirm, m.keys[m.cursor].ID
	return func() tea.Msg {
		err := o.DeleteAPIKey(context.Background(), id, c)
		return keyDeletedMsg{keys: o.APIKeys(), err: err}
	}
}

func (m keysModel) Update(msg tea.Msg) (keysModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height

	case keysLoadedMsg:
		if errors.Is(msg.err, console.ErrStale) {
			return m, nil
		}
		m.loading = false
		m.loaded = true
		m.setKeys(msg.keys)

	case keyCreatedMsg:
		if m.form != nil {
			m.form.submitting = false
			if msg.err == nil {
				m.form = nil
			} else if f, ok := console.AsFailure(msg.err); ok {
				m.form.err = f.Message
			}
		}
		if errors.Is(msg.err, console.ErrStale) {
			return m, nil
		}
		if msg.key != nil {
			m.reveal = msg.key
		}
		m.setKeys(msg.keys)

	case keyDeletedMsg:
		if errors.Is(msg.err, console.ErrStale) {
			return m, nil
		}
		m.setKeys(msg.keys)

	case tea.KeyMsg:
		if m.reveal != nil {
			switch msg.String() {
			case "c":
				return m, copySecret(m.reveal.Secret)
			case "esc", "enter", "q":
				m.reveal = nil
			}
			return m, nil
		}
		if m.form != nil {
			f, res := m.form.update(msg)
			m.form = &f
			switch res {
			case formCancel:
				m.form = nil
			case formSubmit:
				return m.submit()
			}
			return m, nil
		}
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.keys)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			return m.load()
		case "n":
			f := newKeyForm()
			m.form = &f
		case "d", "x":
			return m, m.remove()
		case "c":
			if m.cursor < len(m.keys) && m.keys[m.cursor].Secret != "" {
				return m, copySecret(m.keys[m.cursor].Secret)
			}
		}
	}
	return m, nil
}

func (m *keysModel) setKeys(keys []domain.APIKey) {
	m.keys = keys
	if m.cursor >= len(m.keys) {
		m.cursor = max(len(m.keys)-1, 0)
	}
}

func (m keysModel) helpKeys() string {
	switch {
	case m.reveal != nil:
		return helpBar("c", "copy", "enter", "done")
	case m.form != nil:
		return helpBar("tab", "next", "h/l", "role", "ctrl+s", "create", "esc", "cancel")
	}
	return helpBar("1-4", "tabs", "j/k", "nav", "n", "new", "d", "delete", "c", "copy", "r", "refresh", "h", "help", "q", "quit")
}

func (m keysModel) View() string {
	if m.reveal != nil {
		var b strings.Builder
		b.WriteString(labelStyle.Render("API key "+m.reveal.Name+" created") + "\n\n")
		b.WriteString(secretStyle.Render(m.reveal.Secret) + "\n\n")
		b.WriteString(dimStyle.Render("Copy it now. It will not be shown in full again."))
		return "\n" + overlayStyle.Render(b.String())
	}
	if m.form != nil {
		return "\n" + overlayStyle.Render(m.form.View())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n\n", sectionHeaderStyle.Render(fmt.Sprintf("  API KEYS (%d)", len(m.keys))))
	if m.loading && !m.loaded {
		b.WriteString(dimStyle.Render("  loading...") + "\n")
		return b.String()
	}
	if len(m.keys) == 0 {
		b.WriteString(dimStyle.Render("  No API keys") + "\n")
		return b.String()
	}

	b.WriteString("  " + metaStyle.Render(col("NAME", 20)+"  "+col("KEY", 24)+"  "+col("ROLE", 8)+"  CREATED") + "\n")
	visible := max(m.height-6, 1)
	start, end := scrollWindow(m.cursor, len(m.keys), visible)
	for i := start; i < end; i++ {
		k := m.keys[i]
		row := normalStyle.Render(col(k.Name, 20)) + "  " +
			secretStyle.Render(col(k.MaskedSecret(), 24)) + "  " +
			dimStyle.Render(col(string(k.Role), 8)) + "  " +
			metaStyle.Render(formatTime(k.CreatedAt))
		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(inputPromptStyle.Render("> ")+row) + "\n")
		} else {
			b.WriteString("  " + row + "\n")
		}
	}
	return b.String()
}
