package study

import (
	"math"
	"testing"
	"time"

	"github.com/flashcards/backend/internal/models"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeStreakEmpty(t *testing.T) {
	current, longest, active := ComputeStreak(nil, day("2026-03-10"))
	if current != 0 || longest != 0 || active {
		t.Errorf("ComputeStreak(nil) = (%d, %d, %v), want (0, 0, false)", current, longest, active)
	}
}

func TestComputeStreakActiveToday(t *testing.T) {
	days := []time.Time{day("2026-03-10"), day("2026-03-09"), day("2026-03-08")}

	current, longest, active := ComputeStreak(days, day("2026-03-10"))
	if current != 3 || longest != 3 || !active {
		t.Errorf("got (%d, %d, %v), want (3, 3, true)", current, longest, active)
	}
}

func TestComputeStreakSurvivesToday(t *testing.T) {
	// Studied yesterday and the day before but not yet today: the streak
	// holds at 2 and is not active today.
	days := []time.Time{day("2026-03-09"), day("2026-03-08")}

	current, longest, active := ComputeStreak(days, day("2026-03-10"))
	if current != 2 || longest != 2 || active {
		t.Errorf("got (%d, %d, %v), want (2, 2, false)", current, longest, active)
	}
}

func TestComputeStreakBrokenByGap(t *testing.T) {
	// Gap between today and the older run: current resets, longest keeps
	// the historical run.
	days := []time.Time{day("2026-03-10"), day("2026-03-07"), day("2026-03-06"), day("2026-03-05")}

	current, longest, active := ComputeStreak(days, day("2026-03-10"))
	if current != 1 {
		t.Errorf("current = %d, want 1", current)
	}
	if longest != 3 {
		t.Errorf("longest = %d, want 3", longest)
	}
	if !active {
		t.Error("active = false, want true")
	}
}

func TestComputeStreakStale(t *testing.T) {
	// Last study was three days ago: no current streak.
	days := []time.Time{day("2026-03-07"), day("2026-03-06")}

	current, longest, active := ComputeStreak(days, day("2026-03-10"))
	if current != 0 || longest != 2 || active {
		t.Errorf("got (%d, %d, %v), want (0, 2, false)", current, longest, active)
	}
}

func reviewWithResponse(q int) models.Review {
	return models.Review{Response: q}
}

func TestAccuracyTrendNeedsSixReviews(t *testing.T) {
	reviews := []models.Review{
		reviewWithResponse(4), reviewWithResponse(4), reviewWithResponse(4),
		reviewWithResponse(0), reviewWithResponse(0),
	}
	if got := AccuracyTrend(reviews); got != 0 {
		t.Errorf("AccuracyTrend(5 reviews) = %f, want 0", got)
	}
}

func TestAccuracyTrendImproving(t *testing.T) {
	// Newest first: last 3 all correct, previous 3 had one correct.
	reviews := []models.Review{
		reviewWithResponse(4), reviewWithResponse(3), reviewWithResponse(4),
		reviewWithResponse(3), reviewWithResponse(1), reviewWithResponse(0),
	}

	got := AccuracyTrend(reviews)
	want := 100.0 - 100.0/3.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("AccuracyTrend = %f, want %f", got, want)
	}
}

func TestAccuracyTrendDeclining(t *testing.T) {
	reviews := []models.Review{
		reviewWithResponse(0), reviewWithResponse(1), reviewWithResponse(2),
		reviewWithResponse(4), reviewWithResponse(4), reviewWithResponse(4),
	}

	got := AccuracyTrend(reviews)
	if math.Abs(got-(-100.0)) > 1e-9 {
		t.Errorf("AccuracyTrend = %f, want -100", got)
	}
}
