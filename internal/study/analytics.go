package study

import (
	"time"

	"github.com/flashcards/backend/internal/models"
)

// CardAnalytics assembles the per-card performance report: totals,
// trend, and the last 10 attempts with their detailed metrics.
func (s *Service) CardAnalytics(cardID, userID int64) (*models.CardAnalytics, error) {
	card, err := s.store.GetCard(cardID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.store.CardReviews(cardID, userID)
	if err != nil {
		return nil, err
	}

	correct := 0
	for _, r := range reviews {
		if r.Response >= 3 {
			correct++
		}
	}

	recent := reviews
	if len(recent) > 10 {
		recent = recent[:10]
	}

	attempts := make([]models.CardAttempt, 0, len(recent))
	for _, r := range recent {
		attempt := models.CardAttempt{
			ReviewedAt: r.ReviewedAt,
			Response:   r.Response,
			TookMs:     r.TookMs,
			Mode:       s.attemptMode(r.SessionID),
		}
		if m, err := s.store.ReviewMetrics(r.ID); err == nil && m != nil {
			attempt.SimilarityScore = &m.SimilarityScore
			attempt.UserInput = &m.UserInput
		}
		attempts = append(attempts, attempt)
	}

	return &models.CardAnalytics{
		CardID:              card.ID,
		TotalReviews:        len(reviews),
		CorrectReviews:      correct,
		AccuracyRate:        card.AccuracyRate,
		AvgResponseTime:     card.AvgResponseTime,
		CurrentIntervalDays: card.IntervalDays,
		AccuracyTrend:       AccuracyTrend(reviews),
		RecentAttempts:      attempts,
		TimesSeen:           card.TimesSeen,
		LastReviewed:        card.LastReviewed,
	}, nil
}

func (s *Service) attemptMode(sessionID int64) string {
	sess, err := s.store.GetSession(sessionID)
	if err != nil {
		return "Study"
	}
	switch sess.SessionType {
	case models.SessionWriting:
		return "Writing"
	case models.SessionMultipleChoice:
		return "MC"
	case models.SessionFlashcards:
		return "Flashcard"
	default:
		return "Study"
	}
}

// AccuracyTrend compares the last 3 reviews against the previous 3 and
// returns the difference in percentage points. Fewer than 6 reviews
// yields no trend. Reviews must be ordered newest first.
func AccuracyTrend(reviews []models.Review) float64 {
	if len(reviews) < 6 {
		return 0
	}

	correctOf := func(rs []models.Review) float64 {
		n := 0
		for _, r := range rs {
			if r.Response >= 3 {
				n++
			}
		}
		return float64(n) / float64(len(rs)) * 100
	}

	return correctOf(reviews[:3]) - correctOf(reviews[3:6])
}

// ── Study Streak ────────────────────────────────────────

// Streak reports the user's consecutive-days-studied counter.
func (s *Service) Streak(userID int64) (*models.StreakResponse, error) {
	days, err := s.store.StudyDays(userID)
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	current, longest, activeToday := ComputeStreak(days, today)

	resp := &models.StreakResponse{
		CurrentStreak: current,
		LongestStreak: longest,
		ActiveToday:   activeToday,
	}
	if len(days) > 0 {
		last := days[0].Format("2006-01-02")
		resp.LastActive = &last
	}
	return resp, nil
}

// ComputeStreak derives the current and longest run of consecutive study
// days. days must be distinct dates, newest first. The current streak
// survives an un-studied "today" — it only breaks once a full day is
// missed.
func ComputeStreak(days []time.Time, today time.Time) (current, longest int, activeToday bool) {
	if len(days) == 0 {
		return 0, 0, false
	}

	activeToday = days[0].Equal(today)

	// Current streak counts back from today (or yesterday).
	anchor := today
	if !activeToday {
		anchor = today.AddDate(0, 0, -1)
	}
	for _, d := range days {
		if d.Equal(anchor) {
			current++
			anchor = anchor.AddDate(0, 0, -1)
		} else if d.Before(anchor) {
			break
		}
	}

	// Longest streak over all history.
	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	if current > longest {
		longest = current
	}

	return current, longest, activeToday
}
