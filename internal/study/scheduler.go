package study

import (
	"math"
	"time"

	"github.com/flashcards/backend/internal/models"
)

// MinEase is the SM-2 floor for the ease factor.
const MinEase = 1.3

// ApplySM2 updates a card's scheduling state for one graded review.
// quality must already be in [0,4]; values above 4 feed the formulas
// unclamped, so callers validate before calling.
//
// Failure (quality < 2): lapse, interval resets to 1 day, ease drops 0.2.
// Success: rep counted, ease adjusted by the graded bonus, interval grows
// by the new ease (first success always schedules 1 day out).
//
// Only the scheduling fields are touched; performance statistics belong
// to the grading pipeline.
func ApplySM2(card *models.Card, quality int, now time.Time) {
	if quality < 2 {
		card.Lapses++
		card.IntervalDays = 1
		card.Ease = math.Max(MinEase, card.Ease-0.2)
	} else {
		card.Reps++
		card.Ease = math.Max(MinEase, card.Ease+0.1-float64(4-quality)*0.08)
		if card.IntervalDays == 0 {
			card.IntervalDays = 1
		} else {
			card.IntervalDays = int(math.Round(float64(card.IntervalDays) * card.Ease))
		}
	}
	card.DueDate = now.AddDate(0, 0, card.IntervalDays)
}
