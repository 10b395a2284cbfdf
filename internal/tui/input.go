package tui

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 2000

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	case "space":
		key = " "
	}
	if utf8.RuneCountInString(key) == 1 {
		if utf8.RuneCountInString(text) >= maxInputLen {
			return text
		}
		return text + key
	}
	return text
}

// editKey applies a key event to text. Unlike editRune it accepts pasted
// runs of runes, clamped to maxInputLen.
func editKey(text string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace:
		room := maxInputLen - utf8.RuneCountInString(text)
		if room <= 0 {
			return text
		}
		runes := msg.Runes
		if msg.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		if len(runes) > room {
			runes = runes[:room]
		}
		return text + string(runes)
	case tea.KeyBackspace:
		return editRune(text, "backspace")
	}
	return text
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// renderInput renders one labelled form field. Masked fields show one bullet
// per rune.
func renderInput(label, value, placeholder string, focused, masked bool) string {
	shown := value
	if masked {
		shown = strings.Repeat("•", utf8.RuneCountInString(value))
	}
	cursor := "  "
	style := metaStyle
	if focused {
		cursor = inputPromptStyle.Render("> ")
		style = selectedStyle
	}
	if shown == "" && !focused {
		return cursor + style.Render(label+": ") + inputPlaceholderStyle.Render(placeholder)
	}
	if focused {
		shown += accentStyle.Render("█")
	}
	return cursor + style.Render(label+": ") + normalStyle.Render(shown)
}

// renderChoice renders a field whose value is picked from a fixed set with h/l.
func renderChoice(label, value string, focused bool) string {
	cursor := "  "
	style := metaStyle
	hint := ""
	if focused {
		cursor = inputPromptStyle.Render("> ")
		style = selectedStyle
		hint = "  " + metaStyle.Render("(h/l to cycle)")
	}
	return cursor + style.Render(label+": ") + accentStyle.Render(value) + hint
}

// cycle returns the element after (or before, when back is set) current in
// opts, wrapping around. An unknown current starts from the first element.
func cycle[T comparable](opts []T, current T, back bool) T {
	idx := -1
	for i, o := range opts {
		if o == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return opts[0]
	}
	if back {
		return opts[(idx-1+len(opts))%len(opts)]
	}
	return opts[(idx+1)%len(opts)]
}
