package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pigeonsec/kestrel-admin/internal/console"
	"github.com/pigeonsec/kestrel-admin/internal/session"
)

type screen int

const (
	screenVerifying screen = iota
	screenLogin
	screenMain
)

type view int

const (
	viewDashboard view = iota
	viewIOCs
	viewFeeds
	viewKeys
)

// noticeTTL is how long a notice stays in the status line.
const noticeTTL = 5 * time.Second

const msgSessionExpired = "Session expired. Please sign in again."

type noticeExpiredMsg struct {
	seq int
}

// App is the root Bubbletea model.
type App struct {
	sess    *session.Manager
	orch    *console.Orchestrator
	bridge  *Bridge
	baseURL string

	screen    screen
	view      view
	login     loginModel
	dashboard dashboardModel
	iocs      iocsModel
	feeds     feedsModel
	keys      keysModel

	confirm    *confirmRequest
	notice     *console.Notice
	noticeSeq  int
	helpOpen   bool
	helpCursor int

	width  int
	height int
	frame  int // logo shimmer animation frame
}

// NewApp creates the console UI. b must be the notifier orch was built with;
// it is registered for session transitions here.
func NewApp(sess *session.Manager, orch *console.Orchestrator, b *Bridge, baseURL string) App {
	sess.OnChange(b.SessionChanged)
	a := App{
		sess:      sess,
		orch:      orch,
		bridge:    b,
		baseURL:   baseURL,
		login:     newLoginModel(sess),
		dashboard: newDashboardModel(orch, baseURL),
		iocs:      newIocsModel(orch, b),
		feeds:     newFeedsModel(orch, baseURL),
		keys:      newKeysModel(orch, b),
	}
	switch sess.Status() {
	case session.StatusVerifying:
		a.screen = screenVerifying
	case session.StatusAuthenticated:
		a.screen = screenMain
	default:
		a.screen = screenLogin
	}
	return a
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		shimmerTickCmd(),
		a.bridge.waitNotice(),
		a.bridge.waitConfirm(),
		a.bridge.waitSession(),
	}
	switch a.screen {
	case screenVerifying:
		cmds = append(cmds, a.restore())
	case screenMain:
		_, cmd := a.enterMain()
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a App) restore() tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		return restoredMsg{err: sess.Restore(context.Background())}
	}
}

// enterMain shows the dashboard for the signed-in operator.
func (a App) enterMain() (App, tea.Cmd) {
	a.screen = screenMain
	a.view = viewDashboard
	a.dashboard.user = a.sess.Snapshot().User
	a.feeds.canAdmin = a.sess.CanAdministerFeeds()
	var cmd tea.Cmd
	a.dashboard, cmd = a.dashboard.load()
	return a, cmd
}

// toLogin drops everything loaded under the previous credential.
func (a App) toLogin(reason string) App {
	if a.orch != nil {
		a.orch.Reset()
	}
	a.screen = screenLogin
	a.login = a.login.reset(reason)
	a.dashboard = newDashboardModel(a.orch, a.baseURL)
	a.iocs = newIocsModel(a.orch, a.bridge)
	a.feeds = newFeedsModel(a.orch, a.baseURL)
	a.keys = newKeysModel(a.orch, a.bridge)
	a.helpOpen = false
	a.answer(false)
	return a
}

// answer replies to a pending confirmation, if any.
func (a *App) answer(ok bool) {
	if a.confirm == nil {
		return
	}
	a.confirm.reply <- ok
	a.confirm = nil
}

func (a App) switchTo(v view) (App, tea.Cmd) {
	if v == a.view {
		return a, nil
	}
	if a.orch != nil {
		switch a.view {
		case viewIOCs:
			a.orch.Release(console.KindIndicators)
			a.iocs.loading = false
		case viewFeeds:
			a.orch.Release(console.KindFeeds)
			a.feeds.loading = false
		case viewKeys:
			a.orch.Release(console.KindAPIKeys)
			a.keys.loading = false
		}
	}
	a.view = v
	var cmd tea.Cmd
	switch v {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.load()
	case viewIOCs:
		a.iocs, cmd = a.iocs.load()
	case viewFeeds:
		a.feeds, cmd = a.feeds.load()
	case viewKeys:
		a.keys, cmd = a.keys.load()
	}
	return a, cmd
}

func (a App) showNotice(n console.Notice) (App, tea.Cmd) {
	a.notice = &n
	a.noticeSeq++
	seq := a.noticeSeq
	return a, tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.dashboard, _ = a.dashboard.Update(bodyMsg)
		a.iocs, _ = a.iocs.Update(bodyMsg)
		a.feeds, _ = a.feeds.Update(bodyMsg)
		a.keys, _ = a.keys.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case noticeMsg:
		var cmds []tea.Cmd
		if msg.bridged {
			cmds = append(cmds, a.bridge.waitNotice())
		}
		// Notices raised after sign-out belong to the old session.
		if a.screen == screenMain || msg.notice.Severity != console.SeverityError {
			var cmd tea.Cmd
			a, cmd = a.showNotice(msg.notice)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case noticeExpiredMsg:
		if msg.seq == a.noticeSeq {
			a.notice = nil
		}
		return a, nil

	case confirmRequestMsg:
		req := confirmRequest(msg)
		if a.screen != screenMain || a.confirm != nil {
			req.reply <- false
		} else {
			a.confirm = &req
		}
		return a, a.bridge.waitConfirm()

	case sessionChangedMsg:
		cmd := a.bridge.waitSession()
		// Transitions can queue behind a fresh login; trust the live status.
		if a.screen == screenMain && a.sess.Status() != session.StatusAuthenticated {
			a = a.toLogin(msgSessionExpired)
		}
		return a, cmd

	case restoredMsg:
		if msg.err == nil && a.sess.Status() == session.StatusAuthenticated {
			return a.enterMain()
		}
		reason := ""
		if msg.err != nil && !errors.Is(msg.err, session.ErrNothingToRestore) {
			reason = msgSessionExpired
		}
		if a.screen != screenMain {
			a = a.toLogin(reason)
		}
		return a, nil

	case loginResultMsg:
		a.login, _ = a.login.Update(msg)
		if msg.err == nil {
			return a.enterMain()
		}
		return a, nil

	case openedMsg:
		if msg.err != nil {
			return a.showNotice(console.Notice{
				Severity: console.SeverityError,
				Title:    console.SeverityError.String(),
				Message:  "Cannot open " + msg.target,
			})
		}
		return a, nil

	case statsLoadedMsg:
		a.dashboard, _ = a.dashboard.Update(msg)
		return a, nil
	case indicatorsLoadedMsg, indicatorsChangedMsg:
		var cmd tea.Cmd
		a.iocs, cmd = a.iocs.Update(msg)
		return a, cmd
	case feedsLoadedMsg, feedUpdatedMsg:
		var cmd tea.Cmd
		a.feeds, cmd = a.feeds.Update(msg)
		return a, cmd
	case keysLoadedMsg, keyCreatedMsg, keyDeletedMsg:
		var cmd tea.Cmd
		a.keys, cmd = a.keys.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.answer(false)
			return a, tea.Quit
		}
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Confirmation dialog captures all keys when open
	if a.confirm != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			a.answer(true)
		case "n", "N", "esc":
			a.answer(false)
		}
		return a, nil
	}

	// Help overlay captures all keys when open
	if a.helpOpen {
		items := helpItems()
		switch msg.String() {
		case "h", "esc":
			a.helpOpen = false
		case "q":
			return a, tea.Quit
		case "j", "down":
			if a.helpCursor < len(items)-1 {
				a.helpCursor++
			}
		case "k", "up":
			if a.helpCursor > 0 {
				a.helpCursor--
			}
		case "enter":
			return a, openEndpoint(a.baseURL, items[a.helpCursor].path)
		}
		return a, nil
	}

	switch a.screen {
	case screenVerifying:
		if msg.String() == "q" {
			return a, tea.Quit
		}
		return a, nil
	case screenLogin:
		if msg.String() == "esc" {
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	}

	// Global keys (only when not editing)
	if !a.isEditing() {
		switch msg.String() {
		case "h", "?":
			a.helpOpen = true
			a.helpCursor = 0
			return a, nil
		case "q":
			return a, tea.Quit
		case "L":
			a.sess.Logout()
			return a.toLogin(""), nil
		case "1":
			return a.switchTo(viewDashboard)
		case "2":
			return a.switchTo(viewIOCs)
		case "3":
			return a.switchTo(viewFeeds)
		case "4":
			return a.switchTo(viewKeys)
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case viewIOCs:
		a.iocs, cmd = a.iocs.Update(msg)
	case viewFeeds:
		a.feeds, cmd = a.feeds.Update(msg)
	case viewKeys:
		a.keys, cmd = a.keys.Update(msg)
	}
	return a, cmd
}

func (a App) isEditing() bool {
	switch a.view {
	case viewIOCs:
		return a.iocs.editing()
	case viewFeeds:
		return a.feeds.editing()
	case viewKeys:
		return a.keys.editing()
	}
	return false
}

func center(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func (a App) statusLine() string {
	if a.notice == nil {
		return ""
	}
	style := severityStyle(a.notice.Severity)
	return " " + style.Bold(true).Render(a.notice.Title) + " " + style.Render(a.notice.Message)
}

func (a App) View() string {
	// Header: centered shimmer logo
	header := center(renderShimmerLogo(a.frame), a.width)

	switch a.screen {
	case screenVerifying:
		return header + "\n\n" + center(dimStyle.Render("verifying stored session..."), a.width) + "\n"
	case screenLogin:
		body := center(metaStyle.Render(a.baseURL), a.width) + "\n\n" + a.login.View()
		if a.helpOpen {
			body = helpView(a.baseURL, a.helpCursor)
		}
		return fmt.Sprintf("%s\n%s\n%s\n%s", header, body, a.statusLine(), helpBar("tab", "next", "enter", "sign in", "esc", "quit"))
	}

	user := ""
	if snap := a.sess.Snapshot(); snap.User != nil {
		user = center(metaStyle.Render(snap.User.Username+" . "+a.baseURL), a.width)
	}

	// Tab bar: 1 Dashboard  2 IOCs  3 Feeds  4 API Keys
	tabs := []struct {
		key  string
		name string
		v    view
	}{
		{"1", "Dashboard", viewDashboard},
		{"2", "IOCs", viewIOCs},
		{"3", "Feeds", viewFeeds},
		{"4", "API Keys", viewKeys},
	}
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		w := lipgloss.Width(label)
		left := max((colWidth-w)/2, 0)
		right := max(colWidth-w-left, 0)
		tabBar.WriteString(strings.Repeat(" ", left) + label + strings.Repeat(" ", right))
	}

	var body, help string
	switch a.view {
	case viewDashboard:
		body = a.dashboard.View()
		help = helpBar("1-4", "tabs", "j/k", "nav", "enter", "open", "r", "refresh", "L", "logout", "h", "help", "q", "quit")
	case viewIOCs:
		body = a.iocs.View()
		help = a.iocs.helpKeys()
	case viewFeeds:
		body = a.feeds.View()
		help = a.feeds.helpKeys()
	case viewKeys:
		body = a.keys.View()
		help = a.keys.helpKeys()
	}

	if a.helpOpen {
		body = helpView(a.baseURL, a.helpCursor)
		help = helpBar("j/k", "nav", "enter", "open", "esc", "close")
	}
	if a.confirm != nil {
		body += "\n" + overlayStyle.Render(labelStyle.Render(a.confirm.prompt)+"\n\n"+helpBar("y", "confirm", "n", "cancel"))
		help = helpBar("y", "confirm", "n", "cancel")
	}

	// Chrome budget: header(2) + tabs(1) + status(1) + help(1) = 5 lines + body
	body = strings.TrimRight(truncateToHeight(body, a.height-5), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s\n%s", header, user, tabBar.String(), body, a.statusLine(), help)
}
