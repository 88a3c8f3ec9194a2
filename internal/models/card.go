package models

import "time"

// Card carries both the SM-2 scheduling state and the running performance
// statistics. Scheduling fields are mutated only by study.ApplySM2; the
// statistics are mutated only by the grading pipeline in internal/study.
type Card struct {
	ID       int64  `json:"id"`
	DeckID   int64  `json:"deck_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`

	// SM-2 scheduling state
	Ease         float64   `json:"ease"`          // difficulty multiplier, floored at 1.3
	IntervalDays int       `json:"interval_days"` // days until next due date
	Reps         int       `json:"reps"`          // successful reviews
	Lapses       int       `json:"lapses"`        // failed reviews
	DueDate      time.Time `json:"due_date"`
	Suspended    bool      `json:"suspended"`

	// Performance statistics (running averages, order-dependent)
	AccuracyRate    float64    `json:"accuracy_rate"`     // 0-100
	AvgResponseTime int        `json:"avg_response_time"` // milliseconds
	TimesSeen       int        `json:"times_seen"`
	TypoCount       int        `json:"typo_count"`
	LastReviewed    *time.Time `json:"last_reviewed,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type CreateCardRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type UpdateCardRequest struct {
	Question  *string `json:"question,omitempty"`
	Answer    *string `json:"answer,omitempty"`
	Suspended *bool   `json:"suspended,omitempty"`
}

// ── Draft Cards (LLM-generated, pending acceptance) ──────

type DraftStatus string

const (
	DraftPending  DraftStatus = "pending"
	DraftAccepted DraftStatus = "accepted"
	DraftRejected DraftStatus = "rejected"
)

type DraftCard struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id"`
	DeckID     *int64      `json:"deck_id,omitempty"`
	Prompt     string      `json:"prompt"`
	Answer     string      `json:"answer"`
	SourceFile *string     `json:"source_file,omitempty"`
	Status     DraftStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

type GenerateDraftsRequest struct {
	Notes      string  `json:"notes"`
	Count      int     `json:"count"`
	SourceFile *string `json:"source_file,omitempty"`
}

type DraftAcceptRequest struct {
	DraftIDs []int64 `json:"draft_ids"`
	DeckID   int64   `json:"deck_id"`
}
