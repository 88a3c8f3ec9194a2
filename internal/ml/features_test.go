package ml

import (
	"math"
	"testing"
	"time"

	"github.com/flashcards/backend/internal/models"
)

func TestFeatureNamesOrder(t *testing.T) {
	names := FeatureNames()
	if len(names) != 23 {
		t.Fatalf("len(FeatureNames()) = %d, want 23", len(names))
	}
	// The first and last entries anchor the persisted ordering contract.
	if names[0] != "accuracy_rate" {
		t.Errorf("names[0] = %q, want accuracy_rate", names[0])
	}
	if names[22] != "answer_word_count" {
		t.Errorf("names[22] = %q, want answer_word_count", names[22])
	}

	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate feature name %q", n)
		}
		seen[n] = true
	}
}

func TestExtractFeaturesNewCard(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	card := &models.Card{
		Question: "What is the capital of France?",
		Answer:   "Paris",
		Ease:     2.5,
	}

	f := ExtractFeatures(card, nil, now)

	if len(f) != 23 {
		t.Fatalf("feature count = %d, want 23", len(f))
	}
	if f["days_since_last_review"] != 999 {
		t.Errorf("days_since_last_review = %f, want 999 sentinel", f["days_since_last_review"])
	}
	if f["days_until_due"] != 0 || f["is_overdue"] != 0 {
		t.Errorf("zero due date should give days_until_due=0, is_overdue=0, got %f, %f",
			f["days_until_due"], f["is_overdue"])
	}
	if f["success_per_attempt"] != 0 || f["lapse_rate"] != 0 {
		t.Errorf("unseen card should give zero rates, got %f, %f",
			f["success_per_attempt"], f["lapse_rate"])
	}
	if f["answer_length"] != 5 || f["answer_word_count"] != 1 {
		t.Errorf("answer complexity = (%f, %f), want (5, 1)",
			f["answer_length"], f["answer_word_count"])
	}
}

func TestExtractFeaturesOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// One hour overdue floors to a full day into overdue territory.
	card := &models.Card{DueDate: now.Add(-time.Hour)}
	f := ExtractFeatures(card, nil, now)
	if f["days_until_due"] != -1 {
		t.Errorf("days_until_due = %f, want -1", f["days_until_due"])
	}
	if f["is_overdue"] != 1 {
		t.Errorf("is_overdue = %f, want 1", f["is_overdue"])
	}

	// One hour before due is still "due today", not overdue.
	card = &models.Card{DueDate: now.Add(time.Hour)}
	f = ExtractFeatures(card, nil, now)
	if f["days_until_due"] != 0 {
		t.Errorf("days_until_due = %f, want 0", f["days_until_due"])
	}
	if f["is_overdue"] != 0 {
		t.Errorf("is_overdue = %f, want 0", f["is_overdue"])
	}
}

func TestExtractFeaturesTrends(t *testing.T) {
	now := time.Now().UTC()
	card := &models.Card{TimesSeen: 10, Reps: 6, Lapses: 2}

	// Newest first: two recent successes after two failures.
	metrics := []models.CardMetrics{
		{WasCorrect: true, TimeTakenMs: 3000, TypedChars: 10, BackspaceCount: 1, TypingSpeedCPM: 200},
		{WasCorrect: true, TimeTakenMs: 5000, TypedChars: 20, BackspaceCount: 5, TypingSpeedCPM: 100, HesitationDetected: true},
		{WasCorrect: false, TimeTakenMs: 4000},
		{WasCorrect: false, TimeTakenMs: 8000},
	}

	f := ExtractFeatures(card, metrics, now)

	if math.Abs(f["recent_accuracy"]-50.0) > 1e-9 {
		t.Errorf("recent_accuracy = %f, want 50", f["recent_accuracy"])
	}
	if f["accuracy_improving"] != 1 {
		t.Errorf("accuracy_improving = %f, want 1", f["accuracy_improving"])
	}
	if math.Abs(f["hesitation_rate"]-0.25) > 1e-9 {
		t.Errorf("hesitation_rate = %f, want 0.25", f["hesitation_rate"])
	}
	if math.Abs(f["avg_recent_time_ms"]-5000.0) > 1e-9 {
		t.Errorf("avg_recent_time_ms = %f, want 5000", f["avg_recent_time_ms"])
	}
	// Typing speed averages only the attempts that recorded one.
	if math.Abs(f["avg_typing_speed_cpm"]-150.0) > 1e-9 {
		t.Errorf("avg_typing_speed_cpm = %f, want 150", f["avg_typing_speed_cpm"])
	}
	// Backspace rate averages per-attempt ratios: (0.1 + 0.25) / 2.
	if math.Abs(f["avg_backspace_rate"]-0.175) > 1e-9 {
		t.Errorf("avg_backspace_rate = %f, want 0.175", f["avg_backspace_rate"])
	}
	if math.Abs(f["success_per_attempt"]-0.6) > 1e-9 {
		t.Errorf("success_per_attempt = %f, want 0.6", f["success_per_attempt"])
	}
	if math.Abs(f["lapse_rate"]-0.2) > 1e-9 {
		t.Errorf("lapse_rate = %f, want 0.2", f["lapse_rate"])
	}
}

func TestExtractFeaturesTruncatesLookback(t *testing.T) {
	now := time.Now().UTC()
	card := &models.Card{}

	// 7 attempts supplied, only the newest 5 should count: 1 correct of 5.
	metrics := []models.CardMetrics{
		{WasCorrect: true},
		{WasCorrect: false},
		{WasCorrect: false},
		{WasCorrect: false},
		{WasCorrect: false},
		{WasCorrect: true},
		{WasCorrect: true},
	}

	f := ExtractFeatures(card, metrics, now)
	if math.Abs(f["recent_accuracy"]-20.0) > 1e-9 {
		t.Errorf("recent_accuracy = %f, want 20", f["recent_accuracy"])
	}
}

func TestExtractFeaturesMultibyteLengths(t *testing.T) {
	now := time.Now().UTC()
	card := &models.Card{
		Question: "「犬」は英語で何ですか？", // 12 characters, 36 bytes
		Answer:   "dog",
	}

	f := ExtractFeatures(card, nil, now)
	if f["question_length"] != 12 {
		t.Errorf("question_length = %f, want 12 characters", f["question_length"])
	}
	if f["answer_length"] != 3 {
		t.Errorf("answer_length = %f, want 3", f["answer_length"])
	}
}

func TestVectorize(t *testing.T) {
	names := []string{"a", "b", "c"}
	vec := Vectorize(map[string]float64{"a": 1, "c": 3}, names)

	if len(vec) != 3 {
		t.Fatalf("len = %d, want 3", len(vec))
	}
	if vec[0] != 1 || vec[1] != 0 || vec[2] != 3 {
		t.Errorf("vec = %v, want [1 0 3]", vec)
	}
}
