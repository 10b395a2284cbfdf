package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pigeonsec/kestrel-admin/internal/console"
	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

// Shimmer animation for the KESTREL logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "K E S T R E L" as a slow wave of amber light.
// Deep rust (#4a2410) -> bright amber (#f5b042).
func renderShimmerLogo(frame int) string {
	const text = "KESTREL"
	n := len(text)

	var out string
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(74 + b*(245-74))
		g := clampByte(36 + b*(176-36))
		bl := clampByte(16 + b*(66-16))

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f5b042"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60a0e0"))

	secretStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f5b042")).
			Bold(true)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f5b042")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4a2410")).
			Padding(0, 2)

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	tierColors = map[domain.AccessLevel]lipgloss.Color{
		domain.AccessFree:    lipgloss.Color("#4ade80"),
		domain.AccessPaid:    lipgloss.Color("#f5b042"),
		domain.AccessPrivate: lipgloss.Color("#e06060"),
	}

	typeColors = map[domain.IndicatorType]lipgloss.Color{
		domain.IndicatorDomain: lipgloss.Color("#60a0e0"),
		domain.IndicatorIP:     lipgloss.Color("#3ecce4"),
		domain.IndicatorURL:    lipgloss.Color("#b080d0"),
		domain.IndicatorHash:   lipgloss.Color("#d4a844"),
		domain.IndicatorEmail:  lipgloss.Color("#f0944a"),
	}
)

// TierStyle returns the badge style for an access tier. Tiers the console
// does not know are shown in the private colour.
func TierStyle(level domain.AccessLevel) lipgloss.Style {
	if c, ok := tierColors[level]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(tierColors[domain.AccessPrivate]).Bold(true)
}

// TierBadge renders "[paid]" style badges. Unknown tiers are shown verbatim.
func TierBadge(level domain.AccessLevel) string {
	if level == "" {
		return ""
	}
	return TierStyle(level).Render("[" + string(level) + "]")
}

// TypeStyle returns the colour for an indicator type.
func TypeStyle(t domain.IndicatorType) lipgloss.Style {
	if c, ok := typeColors[t]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878"))
}

func severityStyle(s console.Severity) lipgloss.Style {
	switch s {
	case console.SeveritySuccess:
		return successStyle
	case console.SeverityError:
		return errorStyle
	}
	return infoStyle
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

func helpBar(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpEntry(pairs[i], pairs[i+1]))
	}
	return " " + strings.Join(parts, "  ")
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	path  string
}

func helpItems() []helpItem {
	items := make([]helpItem, 0, len(domain.IntegrationEndpoints))
	for _, e := range domain.IntegrationEndpoints {
		items = append(items, helpItem{label: e.Name, desc: e.Path, path: e.Path})
	}
	return items
}

// helpView renders the help overlay with a cursor over the distribution endpoints.
func helpView(baseURL string, cursor int) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f5b042")).
		Bold(true).
		Render("K E S T R E L   A D M I N")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f5b042"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"kestrel-admin", "Open the console"},
		{"kestrel-admin login", "Sign in and store the session token"},
		{"kestrel-admin logout", "Forget the stored token"},
		{"kestrel-admin status", "Show backend health and session"},
		{"kestrel-admin import f", "Bulk-submit IOCs from YAML"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n  %s\n\n", title, metaStyle.Render(baseURL))

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-24s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Distribution endpoints (enter to open)"))
	for i, item := range helpItems() {
		label := cmdStyle.Render(fmt.Sprintf("%-24s", item.label))
		prefix := "    "
		if i == cursor {
			label = cursorStyle.Render(fmt.Sprintf("%-24s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
	}
	return b.String()
}
