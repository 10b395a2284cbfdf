package tui

import (
	"testing"
	"time"
)

func TestTruncStr(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"under limit", "hello", 10, "hello"},
		{"at limit", "hello", 5, "hello"},
		{"over limit", "hello world", 5, "hell…"},
		{"empty string", "", 5, ""},
		{"single char over", "ab", 1, "…"},
		{"zero width", "ab", 0, ""},
		{"CJK chars", "你好世界", 3, "你好…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncStr(tt.s, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncStr(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime(time.Time{}); got != "-" {
		t.Errorf("zero time = %q", got)
	}
	if got := formatTime(time.Now().Add(-3 * time.Hour)); got != "3h ago" {
		t.Errorf("3h = %q", got)
	}
	old := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if got := formatTime(old); got != "2024-01-02" {
		t.Errorf("old = %q", got)
	}
}

func TestScrollWindow(t *testing.T) {
	tests := []struct {
		cursor, total, visible int
		start, end             int
	}{
		{0, 10, 5, 0, 5},
		{4, 10, 5, 0, 5},
		{5, 10, 5, 1, 6},
		{9, 10, 5, 5, 10},
		{0, 3, 5, 0, 3},
	}
	for _, tt := range tests {
		start, end := scrollWindow(tt.cursor, tt.total, tt.visible)
		if start != tt.start || end != tt.end {
			t.Errorf("scrollWindow(%d,%d,%d) = %d,%d want %d,%d", tt.cursor, tt.total, tt.visible, start, end, tt.start, tt.end)
		}
	}
}
