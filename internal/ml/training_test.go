package ml

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/flashcards/backend/internal/models"
)

// fakeTrainingSource feeds Train a canned history without a database.
type fakeTrainingSource struct {
	cards   map[int64]*models.Card
	metrics map[int64][]models.CardMetrics
}

func (f *fakeTrainingSource) MetricsByCard() (map[int64][]models.CardMetrics, error) {
	return f.metrics, nil
}

func (f *fakeTrainingSource) GetCard(cardID int64) (*models.Card, error) {
	c, ok := f.cards[cardID]
	if !ok {
		return nil, fmt.Errorf("card %d not found", cardID)
	}
	return c, nil
}

// sourceWithAttempts builds one card with n recorded attempts, which
// yields n-1 training examples. Correctness alternates so both labels
// are present.
func sourceWithAttempts(n int) *fakeTrainingSource {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	metrics := make([]models.CardMetrics, n)
	for i := range metrics {
		metrics[i] = models.CardMetrics{
			CardID:      1,
			WasCorrect:  i%2 == 0,
			TimeTakenMs: 2000 + i*100,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
	}
	return &fakeTrainingSource{
		cards: map[int64]*models.Card{
			1: {ID: 1, Question: "q", Answer: "a", Ease: 2.5, IntervalDays: 3},
		},
		metrics: map[int64][]models.CardMetrics{1: metrics},
	}
}

func TestTrainInsufficientData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	// 100 attempts on one card produce 99 examples, one short of the gate.
	result, err := Train(sourceWithAttempts(100), path)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if result.Success {
		t.Error("Success = true, want structured failure")
	}
	if result.SampleCount != 99 {
		t.Errorf("SampleCount = %d, want 99", result.SampleCount)
	}
	if result.Reason == "" {
		t.Error("Reason should name the shortfall")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no model file should be written on a refused run")
	}
}

func TestTrainSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	result, err := Train(sourceWithAttempts(121), path)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if !result.Success {
		t.Fatalf("Success = false (%s), want trained model", result.Reason)
	}
	if result.SampleCount != 120 {
		t.Errorf("SampleCount = %d, want 120", result.SampleCount)
	}
	if result.TrainCount+result.TestCount != 120 {
		t.Errorf("train+test = %d, want 120", result.TrainCount+result.TestCount)
	}

	bundle, err := LoadBundle(path)
	if err != nil {
		t.Fatalf("LoadBundle after training: %v", err)
	}
	if bundle.SampleCount != 120 {
		t.Errorf("persisted sample count = %d, want 120", bundle.SampleCount)
	}
}

func TestSnapshotCard(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	card := &models.Card{
		ID: 1, Question: "q", Answer: "a",
		Ease: 2.3, IntervalDays: 4, Reps: 5, Lapses: 1,
		// Live stats that must NOT leak into the snapshot.
		TimesSeen: 50, AccuracyRate: 99, AvgResponseTime: 123,
	}

	prior := []models.CardMetrics{
		{WasCorrect: true, TimeTakenMs: 2000, SimilarityScore: 1.0, CreatedAt: base},
		{WasCorrect: false, TimeTakenMs: 4000, SimilarityScore: 0.85, CreatedAt: base.Add(time.Hour)},
	}

	snap := snapshotCard(card, prior)

	if snap.TimesSeen != 2 {
		t.Errorf("times_seen = %d, want 2", snap.TimesSeen)
	}
	if snap.AccuracyRate != 50 {
		t.Errorf("accuracy = %f, want 50", snap.AccuracyRate)
	}
	if snap.AvgResponseTime != 3000 {
		t.Errorf("avg time = %d, want 3000", snap.AvgResponseTime)
	}
	// Similarity 0.85 is a near-miss, similarity 1.0 is not.
	if snap.TypoCount != 1 {
		t.Errorf("typo count = %d, want 1", snap.TypoCount)
	}
	if snap.LastReviewed == nil || !snap.LastReviewed.Equal(base.Add(time.Hour)) {
		t.Errorf("last_reviewed = %v, want %v", snap.LastReviewed, base.Add(time.Hour))
	}
	// Scheduling state carries over from the live card.
	if snap.Ease != 2.3 || snap.IntervalDays != 4 || snap.Reps != 5 || snap.Lapses != 1 {
		t.Errorf("scheduling state = (%f, %d, %d, %d), want (2.3, 4, 5, 1)",
			snap.Ease, snap.IntervalDays, snap.Reps, snap.Lapses)
	}
}

func TestSnapshotCardNoHistory(t *testing.T) {
	card := &models.Card{ID: 1, TimesSeen: 10, AccuracyRate: 80}
	snap := snapshotCard(card, nil)

	if snap.TimesSeen != 0 || snap.AccuracyRate != 0 {
		t.Errorf("empty prior should zero the stats, got %d, %f",
			snap.TimesSeen, snap.AccuracyRate)
	}
	if snap.LastReviewed != nil {
		t.Errorf("last_reviewed = %v, want nil", snap.LastReviewed)
	}
}

func TestRecentWindow(t *testing.T) {
	prior := []models.CardMetrics{
		{SessionPosition: 1}, {SessionPosition: 2}, {SessionPosition: 3},
		{SessionPosition: 4}, {SessionPosition: 5}, {SessionPosition: 6},
		{SessionPosition: 7},
	}

	window := recentWindow(prior)
	if len(window) != LookbackReviews {
		t.Fatalf("window size = %d, want %d", len(window), LookbackReviews)
	}
	// Newest first: positions 7, 6, 5, 4, 3.
	for i, want := range []int{7, 6, 5, 4, 3} {
		if window[i].SessionPosition != want {
			t.Errorf("window[%d] = %d, want %d", i, window[i].SessionPosition, want)
		}
	}

	if got := recentWindow(nil); got != nil {
		t.Errorf("recentWindow(nil) = %v, want nil", got)
	}

	short := recentWindow(prior[:2])
	if len(short) != 2 || short[0].SessionPosition != 2 {
		t.Errorf("short window = %v, want reversed 2 elements", short)
	}
}

func TestStratifiedSplit(t *testing.T) {
	var X [][]float64
	var y []int
	for i := 0; i < 80; i++ {
		X = append(X, []float64{float64(i)})
		y = append(y, 1)
	}
	for i := 0; i < 20; i++ {
		X = append(X, []float64{float64(100 + i)})
		y = append(y, 0)
	}

	trainX, trainY, testX, testY := stratifiedSplit(X, y, 0.2, RandomState)

	if len(trainX) != 80 || len(testX) != 20 {
		t.Errorf("split sizes = %d/%d, want 80/20", len(trainX), len(testX))
	}
	if len(trainX) != len(trainY) || len(testX) != len(testY) {
		t.Fatal("feature/label lengths diverged")
	}

	// Stratification keeps the minority class in the test set.
	testNeg := 0
	for _, label := range testY {
		if label == 0 {
			testNeg++
		}
	}
	if testNeg != 4 {
		t.Errorf("test negatives = %d, want 4 (20%% of 20)", testNeg)
	}

	// Same seed, same split.
	_, _, testX2, _ := stratifiedSplit(X, y, 0.2, RandomState)
	for i := range testX {
		if testX[i][0] != testX2[i][0] {
			t.Fatal("split is not deterministic for a fixed seed")
		}
	}
}

func TestStratifiedSplitSingleClass(t *testing.T) {
	var X [][]float64
	var y []int
	for i := 0; i < 10; i++ {
		X = append(X, []float64{float64(i)})
		y = append(y, 1)
	}

	trainX, _, testX, _ := stratifiedSplit(X, y, 0.2, RandomState)
	if len(trainX) != 8 || len(testX) != 2 {
		t.Errorf("single-class split = %d/%d, want 8/2", len(trainX), len(testX))
	}
}
