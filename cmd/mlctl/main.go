package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/flashcards/backend/internal/database"
	"github.com/flashcards/backend/internal/ml"
)

const usage = `mlctl — likelihood model management

Usage:
  mlctl status   show model state and training-data counts
  mlctl train    train the model from recorded metrics
  mlctl test     smoke-test predictions against a few cards
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store := ml.NewStore(db)
	modelPath := ml.ModelPath()

	switch os.Args[1] {
	case "status":
		runStatus(store, modelPath)
	case "train":
		runTrain(store, modelPath)
	case "test":
		runTest(store, modelPath)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runStatus(store *ml.Store, modelPath string) {
	count, err := store.CountMetrics()
	if err != nil {
		log.Fatalf("count metrics: %v", err)
	}

	fmt.Printf("model path:       %s\n", modelPath)
	fmt.Printf("metrics recorded: %d\n", count)
	fmt.Printf("samples needed:   %d\n", max(0, ml.MinTrainingSamples-count))

	bundle, err := ml.LoadBundle(modelPath)
	if err != nil {
		fmt.Println("model:            not loaded")
		return
	}
	fmt.Printf("model:            trained %s on %d samples\n",
		bundle.TrainedAt.Format(time.RFC3339), bundle.SampleCount)
	fmt.Printf("eval:             accuracy=%.3f precision=%.3f recall=%.3f f1=%.3f auc=%.3f\n",
		bundle.Eval.Accuracy, bundle.Eval.Precision, bundle.Eval.Recall,
		bundle.Eval.F1, bundle.Eval.AUC)
}

func runTrain(store *ml.Store, modelPath string) {
	result, err := ml.Train(store, modelPath)
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}

	if !result.Success {
		fmt.Printf("not trained: %s\n", result.Reason)
		os.Exit(1)
	}

	fmt.Printf("trained on %d samples (%d train, %d test)\n",
		result.SampleCount, result.TrainCount, result.TestCount)
	fmt.Printf("eval: accuracy=%.3f precision=%.3f recall=%.3f f1=%.3f auc=%.3f\n",
		result.Eval.Accuracy, result.Eval.Precision, result.Eval.Recall,
		result.Eval.F1, result.Eval.AUC)
	fmt.Printf("saved to %s\n", result.ModelPath)
}

func runTest(store *ml.Store, modelPath string) {
	predictor := ml.NewPredictor(modelPath)
	if !predictor.Loaded() {
		fmt.Println("no model loaded — predictions will use the fallback heuristic")
	}

	cards, err := store.SampleCards(10)
	if err != nil {
		log.Fatalf("load sample cards: %v", err)
	}
	if len(cards) == 0 {
		fmt.Println("no cards to test against")
		return
	}

	now := time.Now().UTC()
	for _, card := range cards {
		recent, err := store.RecentMetrics(card.ID, ml.LookbackReviews)
		if err != nil {
			log.Fatalf("load metrics for card %d: %v", card.ID, err)
		}
		likelihood := predictor.Likelihood(&card, recent, now)
		fmt.Printf("card %-6d likelihood=%.3f %-6s %-6s %q\n",
			card.ID, likelihood, ml.LikelihoodLabel(likelihood),
			ml.LikelihoodColor(likelihood), truncate(card.Question, 50))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
