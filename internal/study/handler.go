package study

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/flashcards/backend/internal/ml"
	"github.com/flashcards/backend/internal/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	service   *Service
	predictor *ml.Predictor
	history   ml.HistorySource
}

func NewHandler(service *Service, predictor *ml.Predictor, history ml.HistorySource) *Handler {
	return &Handler{service: service, predictor: predictor, history: history}
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

// ── Sessions ────────────────────────────────────────────

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.SessionStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if !models.ValidSessionTypes[req.SessionType] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "session_type must be 'writing', 'flashcards', or 'multiple_choice'"})
		return
	}

	sess, err := h.service.StartSession(userID, req)
	if err != nil {
		log.Printf("[study] start session: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to start session"})
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.SessionEndRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	analytics, err := h.service.EndSession(userID, req.SessionID)
	switch {
	case errors.Is(err, ErrSessionEnded):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Session already ended"})
		return
	case errors.Is(err, ErrNotSessionOwner):
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Not your session"})
		return
	case err != nil:
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Session not found"})
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}

// ── Card Retrieval ──────────────────────────────────────

// DueCards returns due cards ordered by due date — the deterministic
// fallback ordering.
func (h *Handler) DueCards(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r, "deckID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid deck id"})
		return
	}
	limit := intQueryParam(r.URL.Query(), "limit", 20)

	cards, err := h.service.store.DueCards(deckID, limit)
	if err != nil {
		log.Printf("[study] due cards: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load due cards"})
		return
	}

	writeJSON(w, http.StatusOK, studyCards(cards))
}

// DueCardsRanked returns due cards in review-priority order: lowest
// predicted recall likelihood first. When no model is loaded the
// fallback heuristic supplies the likelihoods.
func (h *Handler) DueCardsRanked(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r, "deckID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid deck id"})
		return
	}
	limit := intQueryParam(r.URL.Query(), "limit", 20)

	cards, err := h.service.store.DueCards(deckID, limit)
	if err != nil {
		log.Printf("[study] due cards: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load due cards"})
		return
	}

	ranked := h.predictor.RankCards(cards, h.history, time.Now().UTC())

	out := make([]models.RankedCard, 0, len(ranked))
	for _, sc := range ranked {
		out = append(out, models.RankedCard{
			Card:       models.StudyCard{ID: sc.Card.ID, Question: sc.Card.Question},
			Likelihood: sc.Likelihood,
			Label:      ml.LikelihoodLabel(sc.Likelihood),
			Color:      ml.LikelihoodColor(sc.Likelihood),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) NewCards(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r, "deckID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid deck id"})
		return
	}
	limit := intQueryParam(r.URL.Query(), "limit", 20)

	cards, err := h.service.store.NewCards(deckID, limit)
	if err != nil {
		log.Printf("[study] new cards: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load new cards"})
		return
	}

	writeJSON(w, http.StatusOK, studyCards(cards))
}

// ── Answer Submission ───────────────────────────────────

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.AnswerSubmit
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.SessionID == 0 || req.CardID == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "session_id and card_id are required"})
		return
	}

	resp, err := h.service.SubmitAnswer(r.Context(), userID, req)
	switch {
	case errors.Is(err, ErrSessionEnded):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Session already ended"})
		return
	case errors.Is(err, ErrNotSessionOwner):
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Not your session"})
		return
	case err != nil:
		log.Printf("[study] submit answer: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to submit answer"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ── Analytics ───────────────────────────────────────────

func (h *Handler) CardAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	cardID, err := pathID(r, "cardID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid card id"})
		return
	}

	analytics, err := h.service.CardAnalytics(cardID, userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Card not found"})
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}

func (h *Handler) Streak(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	streak, err := h.service.Streak(userID)
	if err != nil {
		log.Printf("[study] streak: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to compute streak"})
		return
	}

	writeJSON(w, http.StatusOK, streak)
}

// ── Helpers ─────────────────────────────────────────────

func studyCards(cards []models.Card) []models.StudyCard {
	out := make([]models.StudyCard, 0, len(cards))
	for _, c := range cards {
		out = append(out, models.StudyCard{ID: c.ID, Question: c.Question})
	}
	return out
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

func intQueryParam(query url.Values, name string, fallback int) int {
	if v := query.Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
