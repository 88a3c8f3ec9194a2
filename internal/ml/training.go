package ml

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/flashcards/backend/internal/models"
)

// TrainResult reports a training run. Insufficient data is a structured
// failure (Success=false with the observed sample count), not an error —
// errors are reserved for infrastructure problems.
type TrainResult struct {
	Success       bool        `json:"success"`
	Reason        string      `json:"reason,omitempty"`
	SampleCount   int         `json:"sample_count"`
	PositiveCount int         `json:"positive_count"`
	TrainCount    int         `json:"train_count"`
	TestCount     int         `json:"test_count"`
	Eval          EvalMetrics `json:"eval"`
	ModelPath     string      `json:"model_path,omitempty"`
}

// TrainingSource supplies the review history the pipeline learns from.
// *Store is the production implementation.
type TrainingSource interface {
	MetricsByCard() (map[int64][]models.CardMetrics, error)
	GetCard(cardID int64) (*models.Card, error)
}

// Train builds the supervised dataset from historical metrics, fits the
// likelihood model, and persists the bundle atomically — but only when
// enough data exists and evaluation completes.
func Train(source TrainingSource, modelPath string) (*TrainResult, error) {
	X, y, err := loadTrainingData(source)
	if err != nil {
		return nil, fmt.Errorf("load training data: %w", err)
	}

	result := &TrainResult{SampleCount: len(X)}
	for _, label := range y {
		if label == 1 {
			result.PositiveCount++
		}
	}

	if len(X) < MinTrainingSamples {
		result.Reason = fmt.Sprintf("insufficient training data: have %d samples, need %d",
			len(X), MinTrainingSamples)
		log.Printf("[ml] %s", result.Reason)
		return result, nil
	}

	log.Printf("[ml] training on %d samples (%d positive, %d negative)",
		len(X), result.PositiveCount, len(X)-result.PositiveCount)

	trainX, trainY, testX, testY := stratifiedSplit(X, y, TrainTestSplit, RandomState)
	result.TrainCount = len(trainX)
	result.TestCount = len(testX)

	scaler := &StandardScaler{}
	scaler.Fit(trainX)
	trainScaled := scaler.Transform(trainX)
	testScaled := scaler.Transform(testX)

	model := &LogisticRegression{}
	if err := model.Fit(trainScaled, trainY); err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}

	probs := make([]float64, len(testScaled))
	for i, row := range testScaled {
		p, err := model.PredictProba(row)
		if err != nil {
			return nil, fmt.Errorf("evaluate model: %w", err)
		}
		probs[i] = p
	}
	result.Eval = Evaluate(probs, testY)

	log.Printf("[ml] eval: accuracy=%.3f precision=%.3f recall=%.3f f1=%.3f auc=%.3f",
		result.Eval.Accuracy, result.Eval.Precision, result.Eval.Recall,
		result.Eval.F1, result.Eval.AUC)

	bundle := &Bundle{
		Version:      1,
		TrainedAt:    time.Now().UTC(),
		FeatureNames: FeatureNames(),
		Scaler:       scaler,
		Model:        model,
		SampleCount:  len(X),
		Eval:         result.Eval,
	}
	if err := bundle.Save(modelPath); err != nil {
		return nil, fmt.Errorf("persist model: %w", err)
	}

	result.Success = true
	result.ModelPath = modelPath
	return result, nil
}

// loadTrainingData replays each card's metrics in order. Every attempt
// after the first becomes one example: features from the card's state
// reconstructed from the strictly-prior attempts, label from whether
// this attempt was correct.
func loadTrainingData(source TrainingSource) ([][]float64, []int, error) {
	grouped, err := source.MetricsByCard()
	if err != nil {
		return nil, nil, err
	}

	names := FeatureNames()
	now := time.Now().UTC()

	var X [][]float64
	var y []int

	for cardID, metrics := range grouped {
		if len(metrics) < MinReviewsPerCard {
			continue
		}

		card, err := source.GetCard(cardID)
		if err != nil {
			// Card deleted since the metrics were written.
			continue
		}

		for i := 1; i < len(metrics); i++ {
			snapshot := snapshotCard(card, metrics[:i])
			recent := recentWindow(metrics[:i])
			features := ExtractFeatures(&snapshot, recent, now)

			label := 0
			if metrics[i].WasCorrect {
				label = 1
			}

			X = append(X, Vectorize(features, names))
			y = append(y, label)
		}
	}

	return X, y, nil
}

// snapshotCard approximates the card's state before a given attempt.
// Statistics are recomputed from the prior attempts; the SM-2 fields are
// taken from the current live card because historical scheduling states
// are not tracked. That approximation is a known accuracy limitation of
// the labels, kept deliberately.
func snapshotCard(card *models.Card, prior []models.CardMetrics) models.Card {
	snap := models.Card{
		ID:       card.ID,
		DeckID:   card.DeckID,
		Question: card.Question,
		Answer:   card.Answer,

		Ease:         card.Ease,
		IntervalDays: card.IntervalDays,
		Reps:         card.Reps,
		Lapses:       card.Lapses,
		DueDate:      card.DueDate,
	}

	if len(prior) == 0 {
		return snap
	}

	correct := 0
	var times []float64
	for _, m := range prior {
		if m.WasCorrect {
			correct++
		}
		if m.TimeTakenMs > 0 {
			times = append(times, float64(m.TimeTakenMs))
		}
		// Near-misses count as typos: close enough to be a slip, not a blank.
		if m.SimilarityScore >= 0.8 && m.SimilarityScore < 0.95 {
			snap.TypoCount++
		}
	}

	snap.TimesSeen = len(prior)
	snap.AccuracyRate = float64(correct) / float64(len(prior)) * 100
	snap.AvgResponseTime = int(mean(times))
	last := prior[len(prior)-1].CreatedAt
	snap.LastReviewed = &last

	return snap
}

// recentWindow flips the tail of an oldest-first history into the
// newest-first lookback window ExtractFeatures expects.
func recentWindow(prior []models.CardMetrics) []models.CardMetrics {
	n := len(prior)
	if n == 0 {
		return nil
	}
	size := LookbackReviews
	if n < size {
		size = n
	}
	window := make([]models.CardMetrics, size)
	for i := 0; i < size; i++ {
		window[i] = prior[n-1-i]
	}
	return window
}

// stratifiedSplit holds out testFrac of each class when both classes are
// present, so a skewed corpus keeps positives in the test set.
func stratifiedSplit(X [][]float64, y []int, testFrac float64, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	rng := rand.New(rand.NewSource(seed))

	var posIdx, negIdx []int
	for i, label := range y {
		if label == 1 {
			posIdx = append(posIdx, i)
		} else {
			negIdx = append(negIdx, i)
		}
	}

	split := func(idx []int) (test map[int]bool) {
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		nTest := int(float64(len(idx)) * testFrac)
		test = make(map[int]bool, nTest)
		for _, i := range idx[:nTest] {
			test[i] = true
		}
		return test
	}

	var testSet map[int]bool
	if len(posIdx) > 0 && len(negIdx) > 0 {
		testSet = split(posIdx)
		for i := range split(negIdx) {
			testSet[i] = true
		}
	} else {
		all := make([]int, len(y))
		for i := range all {
			all[i] = i
		}
		testSet = split(all)
	}

	for i := range X {
		if testSet[i] {
			testX = append(testX, X[i])
			testY = append(testY, y[i])
		} else {
			trainX = append(trainX, X[i])
			trainY = append(trainY, y[i])
		}
	}
	return trainX, trainY, testX, testY
}
