package decks

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/flashcards/backend/internal/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

// ownedDeck loads a deck and verifies the requester owns it. The nil,
// false return means the response has already been written.
func (h *Handler) ownedDeck(w http.ResponseWriter, r *http.Request, deckID int64) (*models.Deck, bool) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return nil, false
	}

	deck, err := h.store.GetDeck(deckID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Deck not found"})
		return nil, false
	}
	if deck.UserID != userID {
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Not your deck"})
		return nil, false
	}
	return deck, true
}

// ── Decks ───────────────────────────────────────────────

func (h *Handler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.CreateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Deck name is required"})
		return
	}

	deck, err := h.store.CreateDeck(userID, req)
	if err != nil {
		log.Printf("[decks] create deck: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create deck"})
		return
	}

	writeJSON(w, http.StatusCreated, deck)
}

func (h *Handler) ListDecks(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	decks, err := h.store.ListDecks(userID)
	if err != nil {
		log.Printf("[decks] list decks: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list decks"})
		return
	}
	if decks == nil {
		decks = []models.Deck{}
	}

	writeJSON(w, http.StatusOK, decks)
}

func (h *Handler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r, "deckID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid deck id"})
		return
	}

	deck, ok := h.ownedDeck(w, r, deckID)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, deck)
}

func (h *Handler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r, "deckID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid deck id"})
		return
	}

	deck, ok := h.ownedDeck(w, r, deckID)
	if !ok {
		return
	}

	var req models.UpdateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Name != nil {
		deck.Name = *req.Name
	}
	if req.Description != nil {
		deck.Description = *req.Description
	}
	if req.IsPrivate != nil {
		deck.IsPrivate = *req.IsPrivate
	}

	if err := h.store.UpdateDeck(deck); err != nil {
		log.Printf("[decks] update deck: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update deck"})
		return
	}

	writeJSON(w, http.StatusOK, deck)
}

func (h *Handler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r, "deckID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid deck id"})
		return
	}

	if _, ok := h.ownedDeck(w, r, deckID); !ok {
		return
	}

	if err := h.store.DeleteDeck(deckID); err != nil {
		log.Printf("[decks] delete deck: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete deck"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ── Cards ───────────────────────────────────────────────

func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r, "deckID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid deck id"})
		return
	}

	if _, ok := h.ownedDeck(w, r, deckID); !ok {
		return
	}

	var req models.CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.Answer) == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "question and answer are required"})
		return
	}

	card, err := h.store.CreateCard(deckID, req)
	if err != nil {
		log.Printf("[decks] create card: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create card"})
		return
	}

	writeJSON(w, http.StatusCreated, card)
}

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r, "deckID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid deck id"})
		return
	}

	if _, ok := h.ownedDeck(w, r, deckID); !ok {
		return
	}

	cards, err := h.store.ListCards(deckID)
	if err != nil {
		log.Printf("[decks] list cards: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list cards"})
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}

	writeJSON(w, http.StatusOK, cards)
}

func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "cardID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid card id"})
		return
	}

	card, err := h.store.GetCard(cardID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Card not found"})
		return
	}

	if _, ok := h.ownedDeck(w, r, card.DeckID); !ok {
		return
	}

	var req models.UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Question != nil {
		card.Question = *req.Question
	}
	if req.Answer != nil {
		card.Answer = *req.Answer
	}
	if req.Suspended != nil {
		card.Suspended = *req.Suspended
	}

	if err := h.store.UpdateCard(card); err != nil {
		log.Printf("[decks] update card: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update card"})
		return
	}

	writeJSON(w, http.StatusOK, card)
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "cardID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid card id"})
		return
	}

	card, err := h.store.GetCard(cardID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Card not found"})
		return
	}

	if _, ok := h.ownedDeck(w, r, card.DeckID); !ok {
		return
	}

	if err := h.store.DeleteCard(cardID); err != nil {
		log.Printf("[decks] delete card: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete card"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ── Drafts ──────────────────────────────────────────────

func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	status := models.DraftStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.DraftPending
	}

	drafts, err := h.store.ListDrafts(userID, status)
	if err != nil {
		log.Printf("[decks] list drafts: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list drafts"})
		return
	}
	if drafts == nil {
		drafts = []models.DraftCard{}
	}

	writeJSON(w, http.StatusOK, drafts)
}

func (h *Handler) AcceptDrafts(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.DraftAcceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.DeckID == 0 || len(req.DraftIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "deck_id and draft_ids are required"})
		return
	}

	if _, ok := h.ownedDeck(w, r, req.DeckID); !ok {
		return
	}

	accepted, err := h.store.AcceptDrafts(r.Context(), userID, req.DeckID, req.DraftIDs)
	if err != nil {
		log.Printf("[decks] accept drafts: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to accept drafts"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"accepted": accepted})
}

func (h *Handler) RejectDrafts(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req struct {
		DraftIDs []int64 `json:"draft_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.DraftIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "draft_ids are required"})
		return
	}

	rejected, err := h.store.RejectDrafts(userID, req.DraftIDs)
	if err != nil {
		log.Printf("[decks] reject drafts: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to reject drafts"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"rejected": rejected})
}

// ── Helpers ─────────────────────────────────────────────

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
