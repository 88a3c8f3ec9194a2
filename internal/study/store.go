package study

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flashcards/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Sessions ────────────────────────────────────────────

func (s *Store) CreateSession(userID, deckID int64, sessionType models.SessionType) (*models.StudySession, error) {
	var sess models.StudySession
	err := s.db.QueryRow(
		`INSERT INTO study_sessions (user_id, deck_id, session_type, started_at)
		 VALUES ($1, $2, $3, NOW())
		 RETURNING id, user_id, deck_id, session_type, started_at`,
		userID, deckID, sessionType,
	).Scan(&sess.ID, &sess.UserID, &sess.DeckID, &sess.SessionType, &sess.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &sess, nil
}

func (s *Store) GetSession(sessionID int64) (*models.StudySession, error) {
	var sess models.StudySession
	err := s.db.QueryRow(
		`SELECT id, user_id, deck_id, session_type, started_at, ended_at,
		        cards_studied, correct_count, incorrect_count, average_time_per_card
		 FROM study_sessions WHERE id = $1`,
		sessionID,
	).Scan(&sess.ID, &sess.UserID, &sess.DeckID, &sess.SessionType, &sess.StartedAt,
		&sess.EndedAt, &sess.CardsStudied, &sess.CorrectCount, &sess.IncorrectCount,
		&sess.AverageTimePerCard)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

func (s *Store) FinalizeSession(sess *models.StudySession) error {
	_, err := s.db.Exec(
		`UPDATE study_sessions
		 SET ended_at = $1, cards_studied = $2, correct_count = $3,
		     incorrect_count = $4, average_time_per_card = $5
		 WHERE id = $6`,
		sess.EndedAt, sess.CardsStudied, sess.CorrectCount,
		sess.IncorrectCount, sess.AverageTimePerCard, sess.ID,
	)
	if err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}
	return nil
}

func (s *Store) SessionReviews(sessionID int64) ([]models.Review, error) {
	rows, err := s.db.Query(
		`SELECT id, card_id, user_id, session_id, response, took_ms, reviewed_at
		 FROM reviews WHERE session_id = $1 ORDER BY reviewed_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("session reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.CardID, &r.UserID, &r.SessionID,
			&r.Response, &r.TookMs, &r.ReviewedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (s *Store) CountSessionReviews(sessionID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM reviews WHERE session_id = $1`, sessionID,
	).Scan(&n)
	return n, err
}

// StudyDays returns the distinct UTC days on which the user studied,
// most recent first.
func (s *Store) StudyDays(userID int64) ([]time.Time, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT DATE(started_at AT TIME ZONE 'UTC') AS day
		 FROM study_sessions WHERE user_id = $1
		 ORDER BY day DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("study days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan study day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// ── Cards ───────────────────────────────────────────────

func (s *Store) GetCard(cardID int64) (*models.Card, error) {
	var c models.Card
	err := s.db.QueryRow(
		`SELECT id, deck_id, question, answer, ease, interval_days, reps, lapses,
		        due_date, suspended, accuracy_rate, avg_response_time, times_seen,
		        typo_count, last_reviewed, created_at
		 FROM cards WHERE id = $1`,
		cardID,
	).Scan(&c.ID, &c.DeckID, &c.Question, &c.Answer, &c.Ease, &c.IntervalDays,
		&c.Reps, &c.Lapses, &c.DueDate, &c.Suspended, &c.AccuracyRate,
		&c.AvgResponseTime, &c.TimesSeen, &c.TypoCount, &c.LastReviewed, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	return &c, nil
}

// DueCards returns unsuspended cards in the deck whose due date has
// passed, oldest due first.
func (s *Store) DueCards(deckID int64, limit int) ([]models.Card, error) {
	return s.queryCards(
		`SELECT id, deck_id, question, answer, ease, interval_days, reps, lapses,
		        due_date, suspended, accuracy_rate, avg_response_time, times_seen,
		        typo_count, last_reviewed, created_at
		 FROM cards
		 WHERE deck_id = $1 AND NOT suspended AND due_date <= NOW()
		 ORDER BY due_date ASC LIMIT $2`,
		deckID, limit)
}

// NewCards returns unsuspended cards that have never been studied.
func (s *Store) NewCards(deckID int64, limit int) ([]models.Card, error) {
	return s.queryCards(
		`SELECT id, deck_id, question, answer, ease, interval_days, reps, lapses,
		        due_date, suspended, accuracy_rate, avg_response_time, times_seen,
		        typo_count, last_reviewed, created_at
		 FROM cards
		 WHERE deck_id = $1 AND NOT suspended AND times_seen = 0
		 ORDER BY id ASC LIMIT $2`,
		deckID, limit)
}

func (s *Store) queryCards(query string, args ...interface{}) ([]models.Card, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(&c.ID, &c.DeckID, &c.Question, &c.Answer, &c.Ease,
			&c.IntervalDays, &c.Reps, &c.Lapses, &c.DueDate, &c.Suspended,
			&c.AccuracyRate, &c.AvgResponseTime, &c.TimesSeen, &c.TypoCount,
			&c.LastReviewed, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// ── Graded Attempt (transactional) ──────────────────────

// RecordAttempt persists one graded attempt atomically: the review row,
// the card's updated scheduling state and statistics, and the metrics
// row. Either all three commit or none do.
func (s *Store) RecordAttempt(ctx context.Context, card *models.Card, review *models.Review, metrics *models.CardMetrics) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attempt tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRow(
		`INSERT INTO reviews (card_id, user_id, session_id, response, took_ms, reviewed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		review.CardID, review.UserID, review.SessionID, review.Response,
		review.TookMs, review.ReviewedAt,
	).Scan(&review.ID)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE cards
		 SET ease = $1, interval_days = $2, reps = $3, lapses = $4, due_date = $5,
		     accuracy_rate = $6, avg_response_time = $7, times_seen = $8,
		     last_reviewed = $9
		 WHERE id = $10`,
		card.Ease, card.IntervalDays, card.Reps, card.Lapses, card.DueDate,
		card.AccuracyRate, card.AvgResponseTime, card.TimesSeen,
		card.LastReviewed, card.ID,
	)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}

	metrics.ReviewID = review.ID
	_, err = tx.Exec(
		`INSERT INTO card_metrics (card_id, session_id, review_id, user_input,
		     was_correct, similarity_score, time_taken_ms, typed_chars,
		     backspace_count, hesitation_detected, typing_speed_cpm,
		     time_of_day, day_of_week, session_position, self_rated_difficulty, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		metrics.CardID, metrics.SessionID, metrics.ReviewID, metrics.UserInput,
		metrics.WasCorrect, metrics.SimilarityScore, metrics.TimeTakenMs,
		metrics.TypedChars, metrics.BackspaceCount, metrics.HesitationDetected,
		metrics.TypingSpeedCPM, metrics.TimeOfDay, metrics.DayOfWeek,
		metrics.SessionPosition, metrics.SelfRatedDifficulty, metrics.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert metrics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attempt: %w", err)
	}
	return nil
}

// ── Analytics ───────────────────────────────────────────

func (s *Store) CardReviews(cardID, userID int64) ([]models.Review, error) {
	rows, err := s.db.Query(
		`SELECT id, card_id, user_id, session_id, response, took_ms, reviewed_at
		 FROM reviews WHERE card_id = $1 AND user_id = $2
		 ORDER BY reviewed_at DESC`,
		cardID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("card reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.CardID, &r.UserID, &r.SessionID,
			&r.Response, &r.TookMs, &r.ReviewedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// ReviewMetrics fetches the metrics row for a review, if one exists.
func (s *Store) ReviewMetrics(reviewID int64) (*models.CardMetrics, error) {
	var m models.CardMetrics
	err := s.db.QueryRow(
		`SELECT id, card_id, session_id, review_id, user_input, was_correct,
		        similarity_score, time_taken_ms, typed_chars, backspace_count,
		        hesitation_detected, typing_speed_cpm, time_of_day, day_of_week,
		        session_position, self_rated_difficulty, created_at
		 FROM card_metrics WHERE review_id = $1`,
		reviewID,
	).Scan(&m.ID, &m.CardID, &m.SessionID, &m.ReviewID, &m.UserInput,
		&m.WasCorrect, &m.SimilarityScore, &m.TimeTakenMs, &m.TypedChars,
		&m.BackspaceCount, &m.HesitationDetected, &m.TypingSpeedCPM,
		&m.TimeOfDay, &m.DayOfWeek, &m.SessionPosition, &m.SelfRatedDifficulty,
		&m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("review metrics: %w", err)
	}
	return &m, nil
}
