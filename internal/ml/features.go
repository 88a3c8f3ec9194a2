package ml

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/flashcards/backend/internal/models"
)

// FeatureNames returns the canonical ordered feature list. The order is
// a contract: it is persisted with every trained model bundle, and a
// bundle whose list disagrees with this one is rejected at load time.
func FeatureNames() []string {
	return []string{
		// Basic statistics
		"accuracy_rate",
		"avg_response_time_ms",
		"times_seen",
		"typo_count",

		// SM-2 state
		"ease_factor",
		"interval_days",
		"repetitions",
		"lapses",

		// Temporal
		"days_since_last_review",
		"days_until_due",
		"is_overdue",

		// Derived
		"success_per_attempt",
		"lapse_rate",
		"avg_response_time_sec",

		// Recent trends
		"recent_accuracy",
		"accuracy_improving",
		"avg_recent_time_ms",
		"hesitation_rate",
		"avg_typing_speed_cpm",
		"avg_backspace_rate",

		// Complexity
		"question_length",
		"answer_length",
		"answer_word_count",
	}
}

// ExtractFeatures builds the feature map for one card. recentMetrics is
// the card's most recent attempts, newest first; pass nil for a card
// with no history — every feature has a well-defined default.
func ExtractFeatures(card *models.Card, recentMetrics []models.CardMetrics, now time.Time) map[string]float64 {
	f := make(map[string]float64, 23)

	f["accuracy_rate"] = card.AccuracyRate
	f["avg_response_time_ms"] = float64(card.AvgResponseTime)
	f["times_seen"] = float64(card.TimesSeen)
	f["typo_count"] = float64(card.TypoCount)

	f["ease_factor"] = card.Ease
	f["interval_days"] = float64(card.IntervalDays)
	f["repetitions"] = float64(card.Reps)
	f["lapses"] = float64(card.Lapses)

	if card.LastReviewed != nil {
		f["days_since_last_review"] = float64(wholeDays(now.Sub(*card.LastReviewed)))
	} else {
		f["days_since_last_review"] = 999 // new card sentinel
	}

	if !card.DueDate.IsZero() {
		daysUntilDue := wholeDays(card.DueDate.Sub(now))
		f["days_until_due"] = float64(daysUntilDue)
		if daysUntilDue < 0 {
			f["is_overdue"] = 1.0
		} else {
			f["is_overdue"] = 0.0
		}
	} else {
		f["days_until_due"] = 0
		f["is_overdue"] = 0.0
	}

	if card.TimesSeen > 0 {
		f["success_per_attempt"] = float64(card.Reps) / float64(card.TimesSeen)
		f["lapse_rate"] = float64(card.Lapses) / float64(card.TimesSeen)
	} else {
		f["success_per_attempt"] = 0.0
		f["lapse_rate"] = 0.0
	}
	f["avg_response_time_sec"] = float64(card.AvgResponseTime) / 1000.0

	if len(recentMetrics) > LookbackReviews {
		recentMetrics = recentMetrics[:LookbackReviews]
	}
	if len(recentMetrics) > 0 {
		addTrendFeatures(f, recentMetrics)
	} else {
		f["recent_accuracy"] = card.AccuracyRate
		f["accuracy_improving"] = 0.0
		f["avg_recent_time_ms"] = float64(card.AvgResponseTime)
		f["hesitation_rate"] = 0.0
		f["avg_typing_speed_cpm"] = 0.0
		f["avg_backspace_rate"] = 0.0
	}

	// Lengths count characters, not bytes, like the similarity matcher.
	f["question_length"] = float64(utf8.RuneCountInString(card.Question))
	f["answer_length"] = float64(utf8.RuneCountInString(card.Answer))
	f["answer_word_count"] = float64(len(strings.Fields(card.Answer)))

	return f
}

// addTrendFeatures derives trend signals from the lookback window
// (newest first).
func addTrendFeatures(f map[string]float64, metrics []models.CardMetrics) {
	n := len(metrics)

	correct := 0
	hesitations := 0
	for _, m := range metrics {
		if m.WasCorrect {
			correct++
		}
		if m.HesitationDetected {
			hesitations++
		}
	}
	f["recent_accuracy"] = float64(correct) / float64(n) * 100
	f["hesitation_rate"] = float64(hesitations) / float64(n)

	// Improving means the newer half of the window beats the older half.
	f["accuracy_improving"] = 0.0
	if n >= 4 {
		newer := metrics[:n/2]
		older := metrics[n/2:]
		if accuracyOf(newer) > accuracyOf(older) {
			f["accuracy_improving"] = 1.0
		}
	}

	f["avg_recent_time_ms"] = meanPositiveInt(metrics, func(m models.CardMetrics) int { return m.TimeTakenMs })
	f["avg_typing_speed_cpm"] = meanPositiveInt(metrics, func(m models.CardMetrics) int { return m.TypingSpeedCPM })

	var ratios []float64
	for _, m := range metrics {
		if m.TypedChars > 0 {
			ratios = append(ratios, float64(m.BackspaceCount)/float64(m.TypedChars))
		}
	}
	f["avg_backspace_rate"] = mean(ratios)
}

func accuracyOf(metrics []models.CardMetrics) float64 {
	if len(metrics) == 0 {
		return 0
	}
	correct := 0
	for _, m := range metrics {
		if m.WasCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(metrics))
}

func meanPositiveInt(metrics []models.CardMetrics, get func(models.CardMetrics) int) float64 {
	var vals []float64
	for _, m := range metrics {
		if v := get(m); v > 0 {
			vals = append(vals, float64(v))
		}
	}
	return mean(vals)
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// wholeDays floors a duration to whole days, so a card one hour past due
// is already a day "into" overdue territory.
func wholeDays(d time.Duration) int {
	return int(math.Floor(d.Hours() / 24))
}

// Vectorize orders a feature map by the given name list. Missing
// features contribute 0.
func Vectorize(features map[string]float64, names []string) []float64 {
	vec := make([]float64, len(names))
	for i, name := range names {
		vec[i] = features[name]
	}
	return vec
}
