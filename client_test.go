package main

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanName(t *testing.T) {
	if got := cleanName(""); got != "Player" {
		t.Errorf("empty name should default to Player, got %q", got)
	}
	if got := cleanName("alice"); got != "alice" {
		t.Errorf("short name should pass through, got %q", got)
	}

	long := strings.Repeat("ab", 20)
	if got := cleanName(long); len([]rune(got)) != maxNameLen {
		t.Errorf("long name should truncate to %d runes, got %d", maxNameLen, len([]rune(got)))
	}

	// Multi-byte names must truncate on rune boundaries, never mid-rune
	multi := strings.Repeat("é", 20)
	got := cleanName(multi)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated name is not valid UTF-8: %q", got)
	}
	if len([]rune(got)) != maxNameLen {
		t.Errorf("expected %d runes, got %d", maxNameLen, len([]rune(got)))
	}
}

func TestCleanColor(t *testing.T) {
	if got := cleanColor("#123456"); got != "#123456" {
		t.Errorf("valid color should pass through, got %q", got)
	}

	got := cleanColor("")
	found := false
	for _, c := range defaultColors {
		if c == got {
			found = true
		}
	}
	if !found {
		t.Errorf("empty color should pick from the palette, got %q", got)
	}

	if got := cleanColor(strings.Repeat("x", 40)); len(got) != 16 {
		t.Errorf("oversized color should truncate to 16 bytes, got %d", len(got))
	}
}
