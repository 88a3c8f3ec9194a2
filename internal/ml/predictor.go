package ml

import (
	"errors"
	"log"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/flashcards/backend/internal/models"
)

// ErrModelUnavailable is returned by Predict when no trained model is
// loaded. It is an expected condition, not a failure — callers switch to
// FallbackLikelihood.
var ErrModelUnavailable = errors.New("ml: model unavailable")

// HistorySource supplies a card's most recent metrics, newest first.
type HistorySource interface {
	RecentMetrics(cardID int64, limit int) ([]models.CardMetrics, error)
}

// Predictor serves recall-likelihood predictions. It is constructed once
// at startup and shared across requests; the loaded bundle sits behind
// an atomic pointer so a reload swaps classifier, scaler, and feature
// list together.
type Predictor struct {
	path   string
	bundle atomic.Pointer[Bundle]
}

// NewPredictor loads the bundle at path if present. A missing or corrupt
// artifact leaves the predictor in fallback mode; it stays there until a
// Reload succeeds.
func NewPredictor(path string) *Predictor {
	p := &Predictor{path: path}
	if err := p.Reload(); err != nil {
		log.Printf("[ml] model not loaded (%v) — using fallback heuristic", err)
	} else {
		log.Printf("[ml] model loaded from %s", path)
	}
	return p
}

// Reload re-reads the bundle from disk and swaps it in atomically.
// On failure the previously loaded bundle (or fallback mode) stays active.
func (p *Predictor) Reload() error {
	b, err := LoadBundle(p.path)
	if err != nil {
		return err
	}
	p.bundle.Store(b)
	return nil
}

// Loaded reports whether a trained model is active.
func (p *Predictor) Loaded() bool {
	return p.bundle.Load() != nil
}

// Predict returns P(next review correct) for a feature map, or
// ErrModelUnavailable when no model is loaded.
func (p *Predictor) Predict(features map[string]float64) (float64, error) {
	b := p.bundle.Load()
	if b == nil {
		return 0, ErrModelUnavailable
	}

	row := Vectorize(features, b.FeatureNames)
	return b.Model.PredictProba(b.Scaler.TransformRow(row))
}

// Likelihood predicts recall probability for a card, degrading to the
// rule-based heuristic when the model is unavailable or prediction fails
// for this card.
func (p *Predictor) Likelihood(card *models.Card, recent []models.CardMetrics, now time.Time) float64 {
	prob, err := p.Predict(ExtractFeatures(card, recent, now))
	if err != nil {
		if !errors.Is(err, ErrModelUnavailable) {
			log.Printf("[ml] prediction failed for card %d: %v — using fallback", card.ID, err)
		}
		return FallbackLikelihood(card)
	}
	return prob
}

// FallbackLikelihood is the rule-based estimate used when no model is
// available: accuracy minus a lapse penalty capped at 30%.
func FallbackLikelihood(card *models.Card) float64 {
	penalty := math.Min(float64(card.Lapses)*0.05, 0.3)
	likelihood := card.AccuracyRate/100.0 - penalty
	return math.Max(0, math.Min(1, likelihood))
}

// LikelihoodLabel buckets a probability into High / Medium / Low.
func LikelihoodLabel(likelihood float64) string {
	switch {
	case likelihood >= HighLikelihoodThreshold:
		return "High"
	case likelihood <= LowLikelihoodThreshold:
		return "Low"
	default:
		return "Medium"
	}
}

// LikelihoodColor maps the same thresholds to a UI color.
func LikelihoodColor(likelihood float64) string {
	switch {
	case likelihood >= HighLikelihoodThreshold:
		return "green"
	case likelihood <= LowLikelihoodThreshold:
		return "red"
	default:
		return "yellow"
	}
}

// ScoredCard pairs a card with its predicted recall likelihood.
type ScoredCard struct {
	Card       models.Card
	Likelihood float64
}

// RankCards orders cards by ascending likelihood — the cards most likely
// to be forgotten come first. The sort is stable, so ties keep their
// input order. A history lookup failure for one card costs only that
// card its trend features, never the whole ranking.
func (p *Predictor) RankCards(cards []models.Card, history HistorySource, now time.Time) []ScoredCard {
	scored := make([]ScoredCard, 0, len(cards))
	for _, card := range cards {
		var recent []models.CardMetrics
		if history != nil {
			r, err := history.RecentMetrics(card.ID, LookbackReviews)
			if err != nil {
				log.Printf("[ml] history lookup failed for card %d: %v", card.ID, err)
			} else {
				recent = r
			}
		}
		c := card
		scored = append(scored, ScoredCard{
			Card:       c,
			Likelihood: p.Likelihood(&c, recent, now),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Likelihood < scored[j].Likelihood
	})

	return scored
}
