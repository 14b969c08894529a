package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

func TestVisionPromptCutsNoteOnRuneBoundary(t *testing.T) {
	note := strings.Repeat("á", maxNoteRunes+40)
	prompt := buildVisionPrompt(domain.ModeMystic, note)
	if !utf8.ValidString(prompt) {
		t.Fatalf("prompt is not valid UTF-8")
	}
	_, kept, ok := strings.Cut(prompt, "Intención del usuario:\n")
	if !ok {
		t.Fatalf("note section missing: %s", prompt)
	}
	if got := utf8.RuneCountInString(kept); got != maxNoteRunes {
		t.Fatalf("expected %d runes of note, got %d", maxNoteRunes, got)
	}
}

func TestVisionPromptKeepsShortNote(t *testing.T) {
	prompt := buildVisionPrompt(domain.ModeRecognize, "  un árbol  ")
	if !strings.HasSuffix(prompt, "\n\nIntención del usuario:\nun árbol") {
		t.Fatalf("unexpected prompt: %q", prompt)
	}
}
