package study

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flashcards/backend/internal/models"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

var (
	ErrSessionEnded    = fmt.Errorf("session already ended")
	ErrNotSessionOwner = fmt.Errorf("session belongs to another user")
)

// ── Sessions ────────────────────────────────────────────

func (s *Service) StartSession(userID int64, req models.SessionStartRequest) (*models.StudySession, error) {
	return s.store.CreateSession(userID, req.DeckID, req.SessionType)
}

// EndSession finalizes a session and computes its aggregates once from
// the session's reviews. Correct/incorrect use the quality>=3 bucket,
// which is looser than the per-card correctness bar on purpose.
func (s *Service) EndSession(userID, sessionID int64) (*models.SessionAnalytics, error) {
	sess, err := s.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	if sess.EndedAt != nil {
		return nil, ErrSessionEnded
	}

	reviews, err := s.store.SessionReviews(sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess.EndedAt = &now

	totalTime := 0
	if len(reviews) > 0 {
		for _, r := range reviews {
			totalTime += r.TookMs
			if r.Response >= 3 {
				sess.CorrectCount++
			} else {
				sess.IncorrectCount++
			}
		}
		sess.CardsStudied = len(reviews)
		sess.AverageTimePerCard = totalTime / len(reviews)
	}

	if err := s.store.FinalizeSession(sess); err != nil {
		return nil, err
	}

	accuracyRate := 0.0
	if sess.CardsStudied > 0 {
		accuracyRate = float64(sess.CorrectCount) / float64(sess.CardsStudied) * 100
	}

	return &models.SessionAnalytics{
		ID:                 sess.ID,
		UserID:             sess.UserID,
		DeckID:             sess.DeckID,
		SessionType:        sess.SessionType,
		StartedAt:          sess.StartedAt,
		EndedAt:            sess.EndedAt,
		CardsStudied:       sess.CardsStudied,
		CorrectCount:       sess.CorrectCount,
		IncorrectCount:     sess.IncorrectCount,
		AverageTimePerCard: sess.AverageTimePerCard,
		AccuracyRate:       accuracyRate,
		TotalTimeSpent:     totalTime,
	}, nil
}

// ── Answer Submission ───────────────────────────────────

// SubmitAnswer runs the grading pipeline for one attempt: fuzzy-match the
// answer, map similarity to an SM-2 quality grade, apply SM-2 to the
// card's schedule, fold the attempt into the running statistics, and
// persist review + card + metrics in one transaction.
func (s *Service) SubmitAnswer(ctx context.Context, userID int64, req models.AnswerSubmit) (*models.AnswerSubmitResponse, error) {
	sess, err := s.store.GetSession(req.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	if sess.EndedAt != nil {
		return nil, ErrSessionEnded
	}

	card, err := s.store.GetCard(req.CardID)
	if err != nil {
		return nil, err
	}

	similarity := Similarity(req.UserInput, card.Answer)
	isCorrect := IsCorrect(similarity)
	quality := MapSimilarityToQuality(similarity)

	now := time.Now().UTC()

	review := &models.Review{
		CardID:     card.ID,
		UserID:     sess.UserID,
		SessionID:  sess.ID,
		Response:   quality,
		TookMs:     req.TimeTakenMs,
		ReviewedAt: now,
	}

	ApplySM2(card, quality, now)
	updateCardStats(card, isCorrect, req.TimeTakenMs, now)

	position, err := s.store.CountSessionReviews(sess.ID)
	if err != nil {
		return nil, err
	}

	metrics := &models.CardMetrics{
		CardID:              card.ID,
		SessionID:           sess.ID,
		UserInput:           req.UserInput,
		WasCorrect:          isCorrect,
		SimilarityScore:     similarity,
		TimeTakenMs:         req.TimeTakenMs,
		TypedChars:          req.TypedChars,
		BackspaceCount:      req.BackspaceCount,
		HesitationDetected:  req.HesitationDetected,
		TypingSpeedCPM:      req.TypingSpeedCPM,
		TimeOfDay:           timeOfDayBucket(now.Hour()),
		DayOfWeek:           strings.ToLower(now.Weekday().String()),
		SessionPosition:     position + 1,
		SelfRatedDifficulty: req.SelfRatedDifficulty,
		CreatedAt:           now,
	}

	if err := s.store.RecordAttempt(ctx, card, review, metrics); err != nil {
		return nil, err
	}

	return &models.AnswerSubmitResponse{
		Correct:         isCorrect,
		SimilarityScore: similarity,
		CorrectAnswer:   card.Answer,
		ResponseQuality: quality,
		NextDueDate:     card.DueDate,
		CardID:          card.ID,
	}, nil
}

// updateCardStats folds one graded attempt into the card's running
// averages. The recurrences are order-dependent: replaying attempts in a
// different order produces different values.
func updateCardStats(card *models.Card, isCorrect bool, tookMs int, now time.Time) {
	card.TimesSeen++
	card.LastReviewed = &now

	sample := 0.0
	if isCorrect {
		sample = 100.0
	}

	if card.TimesSeen == 1 {
		card.AccuracyRate = sample
		card.AvgResponseTime = tookMs
	} else {
		n := card.TimesSeen
		card.AccuracyRate = (card.AccuracyRate*float64(n-1) + sample) / float64(n)
		card.AvgResponseTime = (card.AvgResponseTime*(n-1) + tookMs) / n
	}
}

// timeOfDayBucket maps an hour (0-23) to a contextual bucket.
func timeOfDayBucket(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 21:
		return "evening"
	default:
		return "night"
	}
}
