package ml

import (
	"database/sql"
	"fmt"

	"github.com/flashcards/backend/internal/models"
)

// Store reads the review history the ML side needs. It never writes to
// the study tables.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const metricsColumns = `id, card_id, session_id, review_id, user_input, was_correct,
	similarity_score, time_taken_ms, typed_chars, backspace_count,
	hesitation_detected, typing_speed_cpm, time_of_day, day_of_week,
	session_position, self_rated_difficulty, created_at`

// RecentMetrics returns the card's most recent metrics, newest first.
// Implements HistorySource.
func (s *Store) RecentMetrics(cardID int64, limit int) ([]models.CardMetrics, error) {
	rows, err := s.db.Query(
		`SELECT `+metricsColumns+`
		 FROM card_metrics WHERE card_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		cardID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent metrics: %w", err)
	}
	defer rows.Close()
	return scanMetrics(rows)
}

// MetricsByCard loads every metrics row grouped by card, oldest first
// within each card — the order the training pipeline replays them in.
func (s *Store) MetricsByCard() (map[int64][]models.CardMetrics, error) {
	rows, err := s.db.Query(
		`SELECT ` + metricsColumns + `
		 FROM card_metrics
		 ORDER BY card_id ASC, created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("metrics by card: %w", err)
	}
	defer rows.Close()

	all, err := scanMetrics(rows)
	if err != nil {
		return nil, err
	}

	grouped := make(map[int64][]models.CardMetrics)
	for _, m := range all {
		grouped[m.CardID] = append(grouped[m.CardID], m)
	}
	return grouped, nil
}

func (s *Store) CountMetrics() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM card_metrics`).Scan(&n)
	return n, err
}

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

// SampleCards returns a handful of cards for smoke-testing predictions.
func (s *Store) SampleCards(limit int) ([]models.Card, error) {
	rows, err := s.db.Query(
		`SELECT id, deck_id, question, answer, ease, interval_days, reps, lapses,
		        due_date, suspended, accuracy_rate, avg_response_time, times_seen,
		        typo_count, last_reviewed, created_at
		 FROM cards ORDER BY id ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sample cards: %w", err)
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

func scanMetrics(rows *sql.Rows) ([]models.CardMetrics, error) {
	var out []models.CardMetrics
	for rows.Next() {
		var m models.CardMetrics
		if err := rows.Scan(&m.ID, &m.CardID, &m.SessionID, &m.ReviewID,
			&m.UserInput, &m.WasCorrect, &m.SimilarityScore, &m.TimeTakenMs,
			&m.TypedChars, &m.BackspaceCount, &m.HesitationDetected,
			&m.TypingSpeedCPM, &m.TimeOfDay, &m.DayOfWeek, &m.SessionPosition,
			&m.SelfRatedDifficulty, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan metrics: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
