package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// formField is one input of a form. A field with options is a choice cycled
// with h/l; the rest take text.
type formField struct {
	label       string
	placeholder string
	value       string
	options     []string
	masked      bool
}

// form is the shared overlay input used by login, IOC and API key entry.
type form struct {
	title      string
	fields     []formField
	focus      int
	hidden     func(f form, i int) bool
	submitting bool
	err        string
}

// formResult tells the owner what the last key did.
type formResult int

const (
	formEditing formResult = iota
	formSubmit
	formCancel
)

func (f form) visible(i int) bool {
	return f.hidden == nil || !f.hidden(f, i)
}

func (f form) move(delta int) form {
	n := len(f.fields)
	for step := 0; step < n; step++ {
		f.focus = (f.focus + delta + n) % n
		if f.visible(f.focus) {
			break
		}
	}
	return f
}

func (f form) lastVisible() int {
	for i := len(f.fields) - 1; i >= 0; i-- {
		if f.visible(i) {
			return i
		}
	}
	return 0
}

func (f form) value(i int) string {
	return strings.TrimSpace(f.fields[i].value)
}

func (f form) update(msg tea.KeyMsg) (form, formResult) {
	if f.submitting {
		return f, formEditing
	}
	f.err = ""
	field := &f.fields[f.focus]

	switch msg.String() {
	case "esc":
		return f, formCancel
	case "ctrl+s":
		return f, formSubmit
	case "tab", "down":
		return f.move(1), formEditing
	case "shift+tab", "up":
		return f.move(-1), formEditing
	case "enter":
		if f.focus == f.lastVisible() {
			return f, formSubmit
		}
		return f.move(1), formEditing
	}

	if len(field.options) > 0 {
		switch msg.String() {
		case "l", "right", " ":
			field.value = cycle(field.options, field.value, false)
		case "h", "left":
			field.value = cycle(field.options, field.value, true)
		}
		return f, formEditing
	}
	field.value = editKey(field.value, msg)
	return f, formEditing
}

func (f form) View() string {
	var b strings.Builder
	if f.title != "" {
		b.WriteString(labelStyle.Render(f.title) + "\n\n")
	}
	for i, field := range f.fields {
		if !f.visible(i) {
			continue
		}
		focused := i == f.focus
		if len(field.options) > 0 {
			shown := field.value
			if shown == "" {
				shown = "-"
			}
			b.WriteString(renderChoice(field.label, shown, focused) + "\n")
			continue
		}
		b.WriteString(renderInput(field.label, field.value, field.placeholder, focused, field.masked) + "\n")
	}
	b.WriteString("\n")
	switch {
	case f.submitting:
		b.WriteString(dimStyle.Render("submitting..."))
	case f.err != "":
		b.WriteString(errorStyle.Render(f.err))
	default:
		b.WriteString(helpBar("tab", "next", "ctrl+s", "submit", "esc", "cancel"))
	}
	return b.String()
}
