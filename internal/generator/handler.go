package generator

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/flashcards/backend/internal/models"
)

const defaultDraftCount = 10

// DraftSaver persists generated cards as pending drafts.
type DraftSaver interface {
	InsertDrafts(userID int64, drafts []models.DraftCard) ([]models.DraftCard, error)
}

type Handler struct {
	gen    *Generator
	drafts DraftSaver
}

func NewHandler(gen *Generator, drafts DraftSaver) *Handler {
	return &Handler{gen: gen, drafts: drafts}
}

// GenerateDrafts turns posted notes into pending draft cards. The drafts
// go into the review queue; nothing enters a deck until accepted.
func (h *Handler) GenerateDrafts(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.GenerateDraftsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Notes) == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "notes are required"})
		return
	}
	count := req.Count
	if count <= 0 || count > 50 {
		count = defaultDraftCount
	}

	batch, resp, err := h.gen.GenerateCards(r.Context(), req.Notes, count)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			log.Printf("[generator] rejected batch: %v", verr)
			writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: "Generated cards failed validation"})
			return
		}
		log.Printf("[generator] generation failed: %v", err)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Card generation failed"})
		return
	}

	if resp != nil {
		log.Printf("[generator] model=%s cards=%d prompt_tokens=%d output_tokens=%d",
			h.gen.ModelName(), len(batch.Cards), resp.PromptTokens, resp.OutputTokens)
	}

	drafts := make([]models.DraftCard, 0, len(batch.Cards))
	for _, c := range batch.Cards {
		drafts = append(drafts, models.DraftCard{
			Prompt:     c.Prompt,
			Answer:     c.Answer,
			SourceFile: req.SourceFile,
		})
	}

	saved, err := h.drafts.InsertDrafts(userID, drafts)
	if err != nil {
		log.Printf("[generator] save drafts: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save drafts"})
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
