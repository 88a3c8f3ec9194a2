package ml

import "os"

// Training configuration.
const (
	// MinTrainingSamples is the floor below which training refuses to
	// produce a model.
	MinTrainingSamples = 100
	// TrainTestSplit is the held-out fraction for evaluation.
	TrainTestSplit = 0.2
	// RandomState seeds the split shuffle so runs are reproducible.
	RandomState = 42
	// MinReviewsPerCard is the minimum attempts a card needs before it
	// contributes training examples.
	MinReviewsPerCard = 2
)

// LookbackReviews is the number of recent metrics used for trend features.
const LookbackReviews = 5

// Prediction thresholds.
const (
	HighLikelihoodThreshold = 0.75 // >= is "High" / green
	LowLikelihoodThreshold  = 0.35 // <= is "Low" / red
)

// Logistic regression hyperparameters.
const (
	logisticLearningRate = 0.1
	logisticIterations   = 1000
	logisticL2           = 1.0 // inverse of regularization strength C=1.0
)

// ModelPath returns where the trained model bundle lives on disk.
func ModelPath() string {
	if p := os.Getenv("ML_MODEL_PATH"); p != "" {
		return p
	}
	return "trained_models/likelihood_v1.json"
}
