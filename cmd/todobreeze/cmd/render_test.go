package cmd

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestTruncateStyledLines(t *testing.T) {
	styled := "\x1b[38;5;203m" + strings.Repeat("x", 20) + "\x1b[0m"

	got := truncate(styled, 10)
	if w := ansi.StringWidth(got); w > 10 {
		t.Errorf("visible width = %d, want at most 10", w)
	}
	plain := ansi.Strip(got)
	if !strings.HasSuffix(plain, "...") {
		t.Errorf("truncated line should end with the tail, got %q", plain)
	}
	if strings.Count(plain, "x") != 7 {
		t.Errorf("visible content = %q, want 7 x's before the tail", plain)
	}
}

func TestTruncateShortAndUnsized(t *testing.T) {
	if got := truncate("short", 40); got != "short" {
		t.Errorf("short line should pass through: %q", got)
	}
	styled := "\x1b[1mbold\x1b[0m"
	if got := truncate(styled, 40); got != styled {
		t.Errorf("styled line within width should pass through: %q", got)
	}
	// Width 0 means output is not a terminal; nothing is cut.
	long := strings.Repeat("y", 200)
	if got := truncate(long, 0); got != long {
		t.Errorf("no terminal width should mean no truncation")
	}
}
