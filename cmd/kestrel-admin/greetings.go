package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var taglines = [...]string{
	"Hovering over your feeds so you don't have to.",
	"Every indicator is a feather. Mind the tiers before you let one fly.",
	"Private stays private. Free flies everywhere.",
	"A key shown once is a key kept twice as carefully.",
	"The collections are open. The TAXII is waiting.",
	"Sharp eyes, short sessions, clean feeds.",
}

func printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f5b042")).
		Bold(true).
		Render("K E S T R E L   A D M I N")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(taglines[rand.IntN(len(taglines))])

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"kestrel-admin", "Open the console (interactive TUI)"},
		{"kestrel-admin login", "Sign in and store the session token"},
		{"kestrel-admin logout", "Forget the stored token"},
		{"kestrel-admin status", "Show backend health and session"},
		{"kestrel-admin iocs [--feed f]", "List IOCs"},
		{"kestrel-admin feeds", "List feeds and their access tiers"},
		{"kestrel-admin keys", "List API keys"},
		{"kestrel-admin set-access f t", "Set feed f to tier t (free|paid|private)"},
		{"kestrel-admin import file", "Bulk-submit IOCs from YAML (- for stdin)"},
		{"kestrel-admin --version", "Show version"},
		{"kestrel-admin help", "You are here"},
	}

	fmt.Printf("\n  %s\n\n  %s\n\n  Commands:\n", title, quote)
	for _, c := range commands {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-32s", c.cmd)), descStyle.Render(c.desc))
	}
	cfg := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).
		Render("Config: ~/.kestrel/config.yaml or $KESTREL_CONFIG; KESTREL_* variables override it.")
	fmt.Printf("\n  %s\n\n", cfg)
}
