package answer

import (
	"strings"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello   world", "hello world"},
		{"wait!!! what", "wait! what"},
		{"line\none\n\ntwo", "line one two"},
		{"  padded  ", "padded"},
		{"a,, b", "a, b"},
	}
	for _, tt := range tests {
		if got := normalizeText(tt.in); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First one. Second one! Third one? Tail without terminator")
	if len(got) != 4 {
		t.Fatalf("got %d sentences: %v", len(got), got)
	}
	if got[0] != "First one." || got[3] != "Tail without terminator" {
		t.Errorf("got %v", got)
	}

	// A period not followed by a space does not split (e.g. decimals).
	got = splitSentences("Fee is 3.50 per day. Second.")
	if len(got) != 2 {
		t.Errorf("decimal should not split: %v", got)
	}
}

func TestDedupSentences(t *testing.T) {
	in := []string{
		"The library opens at eight in the morning.",
		"The library opens at eight",
		"A completely different sentence here.",
		"Ok.",
		"Ok.",
	}
	got := dedupSentences(in)
	// Second is contained in first; the short "Ok." pair is below the
	// threshold and both survive.
	if len(got) != 4 {
		t.Fatalf("got %d kept: %v", len(got), got)
	}
	for _, s := range got {
		if s == in[1] {
			t.Error("contained sentence should have been dropped")
		}
	}
}

func TestStripLeadingArticle(t *testing.T) {
	if got := stripLeadingArticle("The answer is the", "The library closes at ten."); !strings.HasPrefix(got, "library") {
		t.Errorf("got %q", got)
	}
	if got := stripLeadingArticle("Based on what I know:", "The library closes at ten."); !strings.HasPrefix(got, "The library") {
		t.Errorf("intro without trailing article should not strip, got %q", got)
	}
}
