package study

import (
	"math"
	"testing"
	"time"

	"github.com/flashcards/backend/internal/models"
)

func TestUpdateCardStatsFirstAttempt(t *testing.T) {
	now := time.Now().UTC()

	card := &models.Card{}
	updateCardStats(card, true, 4000, now)

	if card.TimesSeen != 1 {
		t.Errorf("times_seen = %d, want 1", card.TimesSeen)
	}
	if card.AccuracyRate != 100.0 {
		t.Errorf("accuracy = %f, want 100.0", card.AccuracyRate)
	}
	if card.AvgResponseTime != 4000 {
		t.Errorf("avg time = %d, want 4000", card.AvgResponseTime)
	}
	if card.LastReviewed == nil || !card.LastReviewed.Equal(now) {
		t.Errorf("last_reviewed = %v, want %v", card.LastReviewed, now)
	}

	card = &models.Card{}
	updateCardStats(card, false, 2000, now)
	if card.AccuracyRate != 0.0 {
		t.Errorf("accuracy = %f, want 0.0", card.AccuracyRate)
	}
}

func TestUpdateCardStatsRunningAverages(t *testing.T) {
	now := time.Now().UTC()

	card := &models.Card{}
	updateCardStats(card, true, 4000, now)
	updateCardStats(card, false, 2000, now)

	if math.Abs(card.AccuracyRate-50.0) > 1e-9 {
		t.Errorf("accuracy after 2 = %f, want 50.0", card.AccuracyRate)
	}
	if card.AvgResponseTime != 3000 {
		t.Errorf("avg time after 2 = %d, want 3000", card.AvgResponseTime)
	}

	updateCardStats(card, true, 6000, now)
	if math.Abs(card.AccuracyRate-200.0/3.0) > 1e-9 {
		t.Errorf("accuracy after 3 = %f, want %f", card.AccuracyRate, 200.0/3.0)
	}
	// Average time uses integer division at every step.
	if card.AvgResponseTime != 4000 {
		t.Errorf("avg time after 3 = %d, want 4000", card.AvgResponseTime)
	}
}

func TestTimeOfDayBucket(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "night"},
		{4, "night"},
		{5, "morning"},
		{11, "morning"},
		{12, "afternoon"},
		{16, "afternoon"},
		{17, "evening"},
		{20, "evening"},
		{21, "night"},
		{23, "night"},
	}

	for _, tt := range tests {
		got := timeOfDayBucket(tt.hour)
		if got != tt.want {
			t.Errorf("timeOfDayBucket(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}
