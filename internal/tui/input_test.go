package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestEditRune(t *testing.T) {
	full := strings.Repeat("a", maxInputLen)
	tests := []struct {
		name  string
		start string
		key   string
		want  string
	}{
		{"typing a domain", "evil.exampl", "e", "evil.example"},
		{"typing a tag separator", "botnet", ",", "botnet,"},
		{"backspace", "10.0.0.12", "backspace", "10.0.0.1"},
		{"backspace on empty", "", "backspace", ""},
		{"backspace removes whole rune", "пример.рф", "backspace", "пример.р"},
		{"named key ignored", "evil.example", "tab", "evil.example"},
		{"shortcut ignored", "evil.example", "ctrl+s", "evil.example"},
		{"full field rejects input", full, "b", full},
		{"full field still deletes", full, "backspace", full[:len(full)-1]},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := editRune(tc.start, tc.key); got != tc.want {
				t.Errorf("editRune(%q, %q) = %q, want %q", truncStr(tc.start, 20), tc.key, truncStr(got, 20), truncStr(tc.want, 20))
			}
		})
	}
}

func TestTruncateToHeight(t *testing.T) {
	body := "feodo\nurlhaus\nthreatfox\n"
	if got := truncateToHeight(body, 2); strings.Contains(got, "threatfox") || !strings.Contains(got, "feodo") {
		t.Errorf("truncateToHeight(3 lines, 2) = %q", got)
	}
	for _, limit := range []int{3, 10, 0} {
		if got := truncateToHeight(body, limit); got != body {
			t.Errorf("truncateToHeight(body, %d) = %q, want unchanged", limit, got)
		}
	}
}

func TestEditKeyPaste(t *testing.T) {
	tests := []struct {
		name  string
		start string
		msg   tea.KeyMsg
		want  string
	}{
		{"paste into empty", "", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("evil.test"), Paste: true}, "evil.test"},
		{"paste appends", "https://", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c2.test/x")}, "https://c2.test/x"},
		{"space", "phishing", tea.KeyMsg{Type: tea.KeySpace}, "phishing "},
		{"backspace", "abc", tea.KeyMsg{Type: tea.KeyBackspace}, "ab"},
		{"named key ignored", "abc", tea.KeyMsg{Type: tea.KeyEnter}, "abc"},
		{"paste clamped at limit", strings.Repeat("a", maxInputLen-3), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abcdef")}, strings.Repeat("a", maxInputLen-3) + "abc"},
		{"paste rejected at limit", strings.Repeat("a", maxInputLen), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, strings.Repeat("a", maxInputLen)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := editKey(tc.start, tc.msg); got != tc.want {
				t.Errorf("editKey(%q) = %q, want %q", tc.start, truncStr(got, 40), truncStr(tc.want, 40))
			}
		})
	}
}

func TestRenderInputMasksSecrets(t *testing.T) {
	out := renderInput("password", "hunter2", "", false, true)
	if strings.Contains(out, "hunter2") {
		t.Fatalf("masked input leaked the value: %q", out)
	}
	if !strings.Contains(out, strings.Repeat("•", 7)) {
		t.Errorf("expected 7 bullets, got %q", out)
	}
}

func TestCycle(t *testing.T) {
	opts := []string{"free", "paid", "private"}
	if got := cycle(opts, "paid", false); got != "private" {
		t.Errorf("forward = %q", got)
	}
	if got := cycle(opts, "private", false); got != "free" {
		t.Errorf("wrap forward = %q", got)
	}
	if got := cycle(opts, "free", true); got != "private" {
		t.Errorf("wrap back = %q", got)
	}
	if got := cycle(opts, "bogus", false); got != "free" {
		t.Errorf("unknown = %q", got)
	}
}
