package generator

import (
	"fmt"
	"strings"
)

const maxNotesChars = 12000

// CardSystemPrompt defines the generation contract: flashcards as strict
// JSON, short factual answers suited to typed-answer grading.
func CardSystemPrompt() string {
	return `You are an expert flashcard author. You turn study notes into
question/answer flashcards for spaced-repetition review.

Rules:
- Each card tests exactly one fact or concept from the notes.
- Questions are self-contained: answerable without seeing the notes.
- Answers are short — a word, name, number, or single phrase — because
  the student types them and they are graded by string similarity.
- Never invent facts that are not in the notes.
- Cover different parts of the notes; do not write near-duplicate cards.

Respond with ONLY valid JSON in this exact format, no markdown fences,
no commentary:

{"cards":[{"prompt":"...","answer":"..."}]}`
}

// BuildCardUserPrompt assembles the user message. Notes beyond the size
// cap are truncated rather than rejected.
func BuildCardUserPrompt(notes string, count int) string {
	notes = strings.TrimSpace(notes)
	if len(notes) > maxNotesChars {
		notes = notes[:maxNotesChars]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create exactly %d flashcards from the following notes.\n\n", count)
	b.WriteString("NOTES:\n")
	b.WriteString(notes)
	return b.String()
}
