package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pigeonsec/kestrel-admin/internal/console"
	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

type indicatorsLoadedMsg struct {
	items []domain.Indicator
	err   error
}

// indicatorsChangedMsg follows a create or delete. items is the cache after
// the operation's re-list.
type indicatorsChangedMsg struct {
	items   []domain.Indicator
	created bool
	err     error
}

type iocsModel struct {
	orch      *console.Orchestrator
	confirm   console.Confirmer
	items     []domain.Indicator
	cursor    int
	loading   bool
	loaded    bool
	filter    string
	filtering bool
	draft     string
	form      *form
	height    int
	width     int
}

func newIocsModel(orch *console.Orchestrator, c console.Confirmer) iocsModel {
	return iocsModel{orch: orch, confirm: c}
}

func (m iocsModel) editing() bool {
	return m.form != nil || m.filtering
}

func (m iocsModel) load() (iocsModel, tea.Cmd) {
	if m.orch == nil {
		return m, nil
	}
	m.loading = true
	o, filter := m.orch, m.filter
	return m, func() tea.Msg {
		o.SetIndicatorFeedFilter(filter)
		items, err := o.ListIndicators(context.Background())
		return indicatorsLoadedMsg{items: items, err: err}
	}
}

func (m iocsModel) remove() tea.Cmd {
	if m.orch == nil || m.cursor >= len(m.items) {
		return nil
	}
	o, c, ind := m.orch, m.confirm, m.items[m.cursor]
	return func() tea.Msg {
		err := o.DeleteIndicator(context.Background(), ind, c)
		return indicatorsChangedMsg{items: o.Indicators(), err: err}
	}
}

func (m iocsModel) submit() (iocsModel, tea.Cmd) {
	d := draftFromForm(*m.form)
	if _, err := console.BuildIndicatorRequest(d); err != nil {
		if f, ok := console.AsFailure(err); ok {
			m.form.err = f.Message
		}
		return m, nil
	}
	if m.orch == nil {
		return m, nil
	}
	m.form.submitting = true
	o := m.orch
	return m, func() tea.Msg {
		err := o.CreateIndicator(context.Background(), d)
		return indicatorsChangedMsg{items: o.Indicators(), created: err == nil, err: err}
	}
}

func (m iocsModel) Update(msg tea.Msg) (iocsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case indicatorsLoadedMsg:
		if errors.Is(msg.err, console.ErrStale) {
			return m, nil
		}
		m.loading = false
		m.loaded = true
		m.setItems(msg.items)

	case indicatorsChangedMsg:
		if m.form != nil {
			m.form.submitting = false
			if msg.created {
				m.form = nil
			} else if f, ok := console.AsFailure(msg.err); ok {
				m.form.err = f.Message
			}
		}
		if errors.Is(msg.err, console.ErrStale) {
			return m, nil
		}
		m.setItems(msg.items)

	case tea.KeyMsg:
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
		if m.filtering {
			switch msg.String() {
			case "esc":
				m.filtering = false
			case "enter":
				m.filtering = false
				m.filter = strings.TrimSpace(m.draft)
				m.cursor = 0
				return m.load()
			default:
				m.draft = editKey(m.draft, msg)
			}
			return m, nil
		}
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			return m.load()
		case "n":
			f := newIndicatorForm(m.filter)
			m.form = &f
		case "d", "x":
			return m, m.remove()
		case "f", "/":
			m.filtering = true
			m.draft = m.filter
		case "F":
			if m.filter != "" {
				m.filter = ""
				m.cursor = 0
				return m.load()
			}
		}
	}
	return m, nil
}

func (m *iocsModel) setItems(items []domain.Indicator) {
	m.items = items
	if m.cursor >= len(m.items) {
		m.cursor = max(len(m.items)-1, 0)
	}
}

func (m iocsModel) helpKeys() string {
	switch {
	case m.form != nil:
		return helpBar("tab", "next", "h/l", "cycle", "ctrl+s", "submit", "esc", "cancel")
	case m.filtering:
		return helpBar("enter", "apply", "esc", "cancel")
	}
	return helpBar("1-4", "tabs", "j/k", "nav", "n", "new", "d", "delete", "f", "feed", "F", "all feeds", "r", "refresh", "h", "help", "q", "quit")
}

func (m iocsModel) View() string {
	if m.form != nil {
		return "\n" + overlayStyle.Render(m.form.View())
	}

	var b strings.Builder
	scope := "all feeds"
	if m.filter != "" {
		scope = "feed " + m.filter
	}
	fmt.Fprintf(&b, "\n%s %s\n", sectionHeaderStyle.Render(fmt.Sprintf("  IOCs (%d)", len(m.items))), metaStyle.Render(scope))
	if m.filtering {
		b.WriteString(renderInput("Feed", m.draft, "empty for all feeds", true, false) + "\n")
	}
	b.WriteString("\n")

	if m.loading && !m.loaded {
		b.WriteString(dimStyle.Render("  loading...") + "\n")
		return b.String()
	}
	if len(m.items) == 0 {
		b.WriteString(dimStyle.Render("  No IOCs") + "\n")
		return b.String()
	}

	valueWidth := max(m.width-40, 24)
	b.WriteString("  " + metaStyle.Render(col("TYPE", 8)+"  "+col("VALUE", valueWidth)+"  FEED") + "\n")
	visible := max(m.height-6, 1)
	start, end := scrollWindow(m.cursor, len(m.items), visible)
	for i := start; i < end; i++ {
		ind := m.items[i]
		feed := ind.Feed
		if feed == "" {
			feed = "-"
		}
		row := TypeStyle(ind.Type).Render(col(string(ind.Type), 8)) + "  " +
			normalStyle.Render(col(ind.Value, valueWidth)) + "  " + dimStyle.Render(feed)
		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(inputPromptStyle.Render("> ")+row) + "\n")
		} else {
			b.WriteString("  " + row + "\n")
		}
	}
	return b.String()
}
