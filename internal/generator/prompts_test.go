package generator

import (
	"strings"
	"testing"
)

func TestCardSystemPrompt(t *testing.T) {
	prompt := CardSystemPrompt()
	if !strings.Contains(prompt, `{"cards":[{"prompt":"...","answer":"..."}]}`) {
		t.Error("system prompt should pin the exact JSON format")
	}
	if !strings.Contains(prompt, "ONLY valid JSON") {
		t.Error("system prompt should forbid non-JSON output")
	}
}

func TestBuildCardUserPrompt(t *testing.T) {
	prompt := BuildCardUserPrompt("The mitochondria is the powerhouse of the cell.", 12)

	if !strings.Contains(prompt, "exactly 12 flashcards") {
		t.Error("user prompt should carry the requested count")
	}
	if !strings.Contains(prompt, "mitochondria") {
		t.Error("user prompt should include the notes")
	}
}

func TestBuildCardUserPromptTruncatesNotes(t *testing.T) {
	notes := strings.Repeat("a", maxNotesChars+5000)
	prompt := BuildCardUserPrompt(notes, 5)

	if len(prompt) > maxNotesChars+200 {
		t.Errorf("prompt length = %d, notes were not truncated", len(prompt))
	}
}
