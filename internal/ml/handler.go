package ml

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/flashcards/backend/internal/models"
)

type Handler struct {
	store     *Store
	predictor *Predictor
	modelPath string
}

func NewHandler(store *Store, predictor *Predictor, modelPath string) *Handler {
	return &Handler{store: store, predictor: predictor, modelPath: modelPath}
}

type statusResponse struct {
	ModelLoaded     bool   `json:"model_loaded"`
	MetricsRecorded int    `json:"metrics_recorded"`
	SamplesNeeded   int    `json:"samples_needed"`
	ModelPath       string `json:"model_path"`
}

// Status reports whether a model is loaded and how much training data
// has accumulated.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.CountMetrics()
	if err != nil {
		log.Printf("[ml] count metrics: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to read metrics"})
		return
	}

	needed := MinTrainingSamples - count
	if needed < 0 {
		needed = 0
	}

	writeJSON(w, http.StatusOK, statusResponse{
		ModelLoaded:     h.predictor.Loaded(),
		MetricsRecorded: count,
		SamplesNeeded:   needed,
		ModelPath:       h.modelPath,
	})
}

// Retrain runs the training pipeline and, on success, reloads the
// predictor so new requests see the fresh model.
func (h *Handler) Retrain(w http.ResponseWriter, r *http.Request) {
	result, err := Train(h.store, h.modelPath)
	if err != nil {
		log.Printf("[ml] training failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Training failed"})
		return
	}

	if !result.Success {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	if err := h.predictor.Reload(); err != nil {
		log.Printf("[ml] reload after training failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Model trained but reload failed"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
