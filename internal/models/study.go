package models

import "time"

type SessionType string

const (
	SessionWriting        SessionType = "writing"
	SessionFlashcards     SessionType = "flashcards"
	SessionMultipleChoice SessionType = "multiple_choice"
)

var ValidSessionTypes = map[SessionType]bool{
	SessionWriting:        true,
	SessionFlashcards:     true,
	SessionMultipleChoice: true,
}

type StudySession struct {
	ID                 int64       `json:"id"`
	UserID             int64       `json:"user_id"`
	DeckID             int64       `json:"deck_id"`
	SessionType        SessionType `json:"session_type"`
	StartedAt          time.Time   `json:"started_at"`
	EndedAt            *time.Time  `json:"ended_at,omitempty"`
	CardsStudied       int         `json:"cards_studied"`
	CorrectCount       int         `json:"correct_count"`
	IncorrectCount     int         `json:"incorrect_count"`
	AverageTimePerCard int         `json:"average_time_per_card"`
}

// Review is the immutable log entry for one graded attempt.
type Review struct {
	ID         int64     `json:"id"`
	CardID     int64     `json:"card_id"`
	UserID     int64     `json:"user_id"`
	SessionID  int64     `json:"session_id"`
	Response   int       `json:"response"` // SM-2 quality grade 0-4
	TookMs     int       `json:"took_ms"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// CardMetrics is the extended log entry recorded alongside each Review.
// It is the exclusive data source for ML training.
type CardMetrics struct {
	ID                  int64     `json:"id"`
	CardID              int64     `json:"card_id"`
	SessionID           int64     `json:"session_id"`
	ReviewID            int64     `json:"review_id"`
	UserInput           string    `json:"user_input"`
	WasCorrect          bool      `json:"was_correct"`
	SimilarityScore     float64   `json:"similarity_score"`
	TimeTakenMs         int       `json:"time_taken_ms"`
	TypedChars          int       `json:"typed_chars"`
	BackspaceCount      int       `json:"backspace_count"`
	HesitationDetected  bool      `json:"hesitation_detected"`
	TypingSpeedCPM      int       `json:"typing_speed_cpm"`
	TimeOfDay           string    `json:"time_of_day"`
	DayOfWeek           string    `json:"day_of_week"`
	SessionPosition     int       `json:"session_position"`
	SelfRatedDifficulty *int      `json:"self_rated_difficulty,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// ── Request Types ────────────────────────────────────────

type SessionStartRequest struct {
	DeckID      int64       `json:"deck_id"`
	SessionType SessionType `json:"session_type"`
}

type SessionEndRequest struct {
	SessionID int64 `json:"session_id"`
}

type AnswerSubmit struct {
	SessionID           int64  `json:"session_id"`
	CardID              int64  `json:"card_id"`
	UserInput           string `json:"user_input"`
	TimeTakenMs         int    `json:"time_taken_ms"`
	TypedChars          int    `json:"typed_chars"`
	BackspaceCount      int    `json:"backspace_count"`
	HesitationDetected  bool   `json:"hesitation_detected"`
	TypingSpeedCPM      int    `json:"typing_speed_cpm"`
	SelfRatedDifficulty *int   `json:"self_rated_difficulty,omitempty"`
}

// ── Response Types ────────────────────────────────────────

type AnswerSubmitResponse struct {
	Correct         bool      `json:"correct"`
	SimilarityScore float64   `json:"similarity_score"`
	CorrectAnswer   string    `json:"correct_answer"`
	ResponseQuality int       `json:"response_quality"`
	NextDueDate     time.Time `json:"next_due_date"`
	CardID          int64     `json:"card_id"`
}

type SessionAnalytics struct {
	ID                 int64       `json:"id"`
	UserID             int64       `json:"user_id"`
	DeckID             int64       `json:"deck_id"`
	SessionType        SessionType `json:"session_type"`
	StartedAt          time.Time   `json:"started_at"`
	EndedAt            *time.Time  `json:"ended_at,omitempty"`
	CardsStudied       int         `json:"cards_studied"`
	CorrectCount       int         `json:"correct_count"`
	IncorrectCount     int         `json:"incorrect_count"`
	AverageTimePerCard int         `json:"average_time_per_card"`
	AccuracyRate       float64     `json:"accuracy_rate"`
	TotalTimeSpent     int         `json:"total_time_spent"`
}

type StudyCard struct {
	ID       int64   `json:"id"`
	Question string  `json:"question"`
	Answer   *string `json:"answer,omitempty"` // withheld in study mode
}

// RankedCard pairs a due card with its predicted recall likelihood.
type RankedCard struct {
	Card       StudyCard `json:"card"`
	Likelihood float64   `json:"likelihood"`
	Label      string    `json:"label"`
	Color      string    `json:"color"`
}

type CardAttempt struct {
	ReviewedAt      time.Time `json:"reviewed_at"`
	Response        int       `json:"response"`
	TookMs          int       `json:"took_ms"`
	SimilarityScore *float64  `json:"similarity_score,omitempty"`
	UserInput       *string   `json:"user_input,omitempty"`
	Mode            string    `json:"mode"`
}

type CardAnalytics struct {
	CardID              int64         `json:"card_id"`
	TotalReviews        int           `json:"total_reviews"`
	CorrectReviews      int           `json:"correct_reviews"`
	AccuracyRate        float64       `json:"accuracy_rate"`
	AvgResponseTime     int           `json:"avg_response_time"`
	CurrentIntervalDays int           `json:"current_interval_days"`
	AccuracyTrend       float64       `json:"accuracy_trend"`
	RecentAttempts      []CardAttempt `json:"recent_attempts"`
	TimesSeen           int           `json:"times_seen"`
	LastReviewed        *time.Time    `json:"last_reviewed,omitempty"`
}

type StreakResponse struct {
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
	ActiveToday   bool    `json:"active_today"`
	LastActive    *string `json:"last_active,omitempty"` // YYYY-MM-DD
}
