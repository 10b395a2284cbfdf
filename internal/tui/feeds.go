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

type feedsLoadedMsg struct {
	feeds []domain.Feed
	err   error
}

type feedUpdatedMsg struct {
	name  string
	feed  domain.Feed
	feeds []domain.Feed
	err   error
}

type feedsModel struct {
	orch     *console.Orchestrator
	baseURL  string
	feeds    []domain.Feed
	cursor   int
	loading  bool
	loaded   bool
	canAdmin bool
	picking  bool
	pick     int
	pending  string
	status   string
	height   int
}

func newFeedsModel(orch *console.Orchestrator, baseURL string) feedsModel {
	return feedsModel{orch: orch, baseURL: baseURL}
}

func (m feedsModel) editing() bool {
	return m.picking
}

func (m feedsModel) load() (feedsModel, tea.Cmd) {
	if m.orch == nil {
		return m, nil
	}
	m.loading = true
	o := m.orch
	return m, func() tea.Msg {
		feeds, err := o.ListFeeds(context.Background())
		return feedsLoadedMsg{feeds: feeds, err: err}
	}
}

// apply sends the picked tier. The row keeps showing the previous tier until
// the backend answers.
func (m feedsModel) apply() (feedsModel, tea.Cmd) {
	m.picking = false
	if m.orch == nil || m.cursor >= len(m.feeds) {
		return m, nil
	}
	name := m.feeds[m.cursor].Name
	level := domain.AccessLevels[m.pick]
	m.pending = name
	o := m.orch
	return m, func() tea.Msg {
		feed, err := o.SetFeedAccessLevel(context.Background(), name, level)
		return feedUpdatedMsg{name: name, feed: feed, feeds: o.Feeds(), err: err}
	}
}

func (m feedsModel) Update(msg tea.Msg) (feedsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height

	case feedsLoadedMsg:
		if errors.Is(msg.err, console.ErrStale) {
			return m, nil
		}
		m.loading = false
		m.loaded = true
		m.setFeeds(msg.feeds)

	case feedUpdatedMsg:
		if m.pending == msg.name {
			m.pending = ""
		}
		if errors.Is(msg.err, console.ErrStale) {
			return m, nil
		}
		m.setFeeds(msg.feeds)
		m.status = ""
		if msg.err == nil {
			m.status = fmt.Sprintf("%s is now %s", msg.feed.Name, msg.feed.AccessLevel)
		}

	case tea.KeyMsg:
		if m.picking {
			switch msg.String() {
			case "j", "down", "l", "right":
				m.pick = (m.pick + 1) % len(domain.AccessLevels)
			case "k", "up", "h", "left":
				m.pick = (m.pick - 1 + len(domain.AccessLevels)) % len(domain.AccessLevels)
			case "enter":
				return m.apply()
			case "esc":
				m.picking = false
			}
			return m, nil
		}
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.feeds)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			return m.load()
		case "a", "enter":
			if len(m.feeds) == 0 {
				return m, nil
			}
			if !m.canAdmin {
				m.status = "Changing a feed tier requires an admin account"
				return m, nil
			}
			if m.pending != "" {
				return m, nil
			}
			m.picking = true
			m.pick = 0
			for i, l := range domain.AccessLevels {
				if l == m.feeds[m.cursor].AccessLevel {
					m.pick = i
				}
			}
		case "o":
			if m.cursor < len(m.feeds) {
				return m, openEndpoint(m.baseURL, m.feeds[m.cursor].Path())
			}
		}
	}
	return m, nil
}

func (m *feedsModel) setFeeds(feeds []domain.Feed) {
	m.feeds = feeds
	if m.cursor >= len(m.feeds) {
		m.cursor = max(len(m.feeds)-1, 0)
	}
}

func (m feedsModel) helpKeys() string {
	if m.picking {
		return helpBar("j/k", "tier", "enter", "apply", "esc", "cancel")
	}
	return helpBar("1-4", "tabs", "j/k", "nav", "a", "access", "o", "open", "r", "refresh", "h", "help", "q", "quit")
}

func (m feedsModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n\n", sectionHeaderStyle.Render(fmt.Sprintf("  FEEDS (%d)", len(m.feeds))))

	if m.loading && !m.loaded {
		b.WriteString(dimStyle.Render("  loading...") + "\n")
		return b.String()
	}
	if len(m.feeds) == 0 {
		b.WriteString(dimStyle.Render("  No feeds") + "\n")
		return b.String()
	}

	b.WriteString("  " + metaStyle.Render(col("NAME", 28)+"  "+col("IOCS", 8)+"  ACCESS") + "\n")
	visible := max(m.height-8, 1)
	start, end := scrollWindow(m.cursor, len(m.feeds), visible)
	for i := start; i < end; i++ {
		f := m.feeds[i]
		tier := TierBadge(f.AccessLevel)
		if f.Name == m.pending {
			tier += " " + dimStyle.Render("updating...")
		}
		row := normalStyle.Render(col(f.Name, 28)) + "  " + dimStyle.Render(col(fmt.Sprintf("%d", f.IndicatorCount), 8)) + "  " + tier
		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(inputPromptStyle.Render("> ")+row) + "\n")
		} else {
			b.WriteString("  " + row + "\n")
		}
	}

	if m.picking && m.cursor < len(m.feeds) {
		var p strings.Builder
		p.WriteString(labelStyle.Render("Access for "+m.feeds[m.cursor].Name) + "\n\n")
		for i, l := range domain.AccessLevels {
			prefix := "  "
			if i == m.pick {
				prefix = inputPromptStyle.Render("> ")
			}
			p.WriteString(prefix + TierBadge(l) + "\n")
		}
		b.WriteString("\n" + overlayStyle.Render(p.String()) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n  " + metaStyle.Render(m.status) + "\n")
	}
	if !m.canAdmin {
		b.WriteString("\n  " + dimStyle.Render("read-only: admin required to change tiers") + "\n")
	}
	return b.String()
}
