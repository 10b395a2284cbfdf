package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pigeonsec/kestrel-admin/internal/browser"
	"github.com/pigeonsec/kestrel-admin/internal/console"
	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

type statsLoadedMsg struct {
	stats console.Stats
	err   error
}

type openedMsg struct {
	target string
	err    error
}

type dashboardModel struct {
	orch    *console.Orchestrator
	baseURL string
	user    *domain.User
	stats   console.Stats
	loaded  bool
	loading bool
	cursor  int
	width   int
}

func newDashboardModel(orch *console.Orchestrator, baseURL string) dashboardModel {
	return dashboardModel{orch: orch, baseURL: baseURL}
}

func (m dashboardModel) load() (dashboardModel, tea.Cmd) {
	if m.orch == nil {
		return m, nil
	}
	m.loading = true
	o := m.orch
	return m, func() tea.Msg {
		s, err := o.Stats(context.Background())
		return statsLoadedMsg{stats: s, err: err}
	}
}

func openEndpoint(base, path string) tea.Cmd {
	return func() tea.Msg {
		target, err := browser.OpenEndpoint(base, path)
		return openedMsg{target: target, err: err}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case statsLoadedMsg:
		m.loading = false
		if msg.err == nil {
			m.stats = msg.stats
			m.loaded = true
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(domain.IntegrationEndpoints)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			return m.load()
		case "enter", "o":
			return m, openEndpoint(m.baseURL, domain.IntegrationEndpoints[m.cursor].Path)
		}
	}
	return m, nil
}

func statCard(label string, n int, loaded bool) string {
	value := "-"
	if loaded {
		value = fmt.Sprintf("%d", n)
	}
	return overlayStyle.Width(18).Render(
		accentStyle.Bold(true).Render(value) + "\n" + dimStyle.Render(label),
	)
}

func (m dashboardModel) View() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		statCard("IOCs", m.stats.Indicators, m.loaded),
		" ",
		statCard("Feeds", m.stats.Feeds, m.loaded),
		" ",
		statCard("API keys", m.stats.APIKeys, m.loaded),
	))
	b.WriteString("\n")
	if m.loading {
		b.WriteString(dimStyle.Render("  refreshing...") + "\n")
	}

	b.WriteString("\n" + sectionHeaderStyle.Render("  SESSION") + "\n")
	if m.user != nil {
		role := "operator"
		if m.user.IsAdmin {
			role = "admin"
		}
		fmt.Fprintf(&b, "  %s %s\n", normalStyle.Render(m.user.Username), metaStyle.Render("("+role+")"))
	}
	fmt.Fprintf(&b, "  %s\n", metaStyle.Render(m.baseURL))

	b.WriteString("\n" + sectionHeaderStyle.Render("  DISTRIBUTION") + "\n")
	for i, e := range domain.IntegrationEndpoints {
		line := col(e.Name, 18) + "  " + e.Path
		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(inputPromptStyle.Render("> ")+selectedStyle.Render(line)) + "\n")
		} else {
			b.WriteString("  " + dimStyle.Render(line) + "\n")
		}
	}
	return b.String()
}
