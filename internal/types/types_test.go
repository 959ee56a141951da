package types

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSummarizePromptPreview(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"short prompt passes through", "backend engineer", "backend engineer"},
		{"long prompt truncated with ellipsis", strings.Repeat("a", 100), strings.Repeat("a", 80) + "..."},
		{"exactly the limit is untouched", strings.Repeat("b", 80), strings.Repeat("b", 80)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{RawPrompt: tt.prompt}
			if got := s.Summarize().PromptPreview; got != tt.want {
				t.Errorf("PromptPreview = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarizePromptPreviewKeepsRunesIntact(t *testing.T) {
	// Multi-byte runes around the cut point must never be split.
	s := &Session{RawPrompt: strings.Repeat("résumé", 20)}

	preview := s.Summarize().PromptPreview
	if !utf8.ValidString(preview) {
		t.Fatalf("preview is not valid UTF-8: %q", preview)
	}
	if got := utf8.RuneCountInString(preview); got != 83 {
		t.Errorf("preview rune count = %d, want 80 plus ellipsis", got)
	}
	if !strings.HasSuffix(preview, "...") {
		t.Errorf("preview %q should end with an ellipsis", preview)
	}
}
