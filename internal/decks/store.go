package decks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/flashcards/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Decks ───────────────────────────────────────────────

func (s *Store) CreateDeck(userID int64, req models.CreateDeckRequest) (*models.Deck, error) {
	isPrivate := true
	if req.IsPrivate != nil {
		isPrivate = *req.IsPrivate
	}

	var d models.Deck
	err := s.db.QueryRow(
		`INSERT INTO decks (user_id, name, description, is_private)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, name, description, is_private, created_at`,
		userID, req.Name, req.Description, isPrivate,
	).Scan(&d.ID, &d.UserID, &d.Name, &d.Description, &d.IsPrivate, &d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create deck: %w", err)
	}
	return &d, nil
}

func (s *Store) ListDecks(userID int64) ([]models.Deck, error) {
	rows, err := s.db.Query(
		`SELECT d.id, d.user_id, d.name, d.description, d.is_private, d.created_at,
		        COUNT(c.id) AS card_count
		 FROM decks d
		 LEFT JOIN cards c ON c.deck_id = d.id
		 WHERE d.user_id = $1
		 GROUP BY d.id
		 ORDER BY d.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()

	var decks []models.Deck
	for rows.Next() {
		var d models.Deck
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Description,
			&d.IsPrivate, &d.CreatedAt, &d.CardCount); err != nil {
			return nil, fmt.Errorf("scan deck: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

func (s *Store) GetDeck(deckID int64) (*models.Deck, error) {
	var d models.Deck
	err := s.db.QueryRow(
		`SELECT d.id, d.user_id, d.name, d.description, d.is_private, d.created_at,
		        (SELECT COUNT(*) FROM cards WHERE deck_id = d.id) AS card_count
		 FROM decks d WHERE d.id = $1`,
		deckID,
	).Scan(&d.ID, &d.UserID, &d.Name, &d.Description, &d.IsPrivate, &d.CreatedAt, &d.CardCount)
	if err != nil {
		return nil, fmt.Errorf("get deck: %w", err)
	}
	return &d, nil
}

func (s *Store) UpdateDeck(deck *models.Deck) error {
	_, err := s.db.Exec(
		`UPDATE decks SET name = $1, description = $2, is_private = $3 WHERE id = $4`,
		deck.Name, deck.Description, deck.IsPrivate, deck.ID,
	)
	if err != nil {
		return fmt.Errorf("update deck: %w", err)
	}
	return nil
}

func (s *Store) DeleteDeck(deckID int64) error {
	_, err := s.db.Exec(`DELETE FROM decks WHERE id = $1`, deckID)
	if err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}
	return nil
}

// ── Cards ───────────────────────────────────────────────

func (s *Store) CreateCard(deckID int64, req models.CreateCardRequest) (*models.Card, error) {
	var c models.Card
	err := s.db.QueryRow(
		`INSERT INTO cards (deck_id, question, answer)
		 VALUES ($1, $2, $3)
		 RETURNING id, deck_id, question, answer, ease, interval_days, reps, lapses,
		           due_date, suspended, accuracy_rate, avg_response_time, times_seen,
		           typo_count, last_reviewed, created_at`,
		deckID, req.Question, req.Answer,
	).Scan(&c.ID, &c.DeckID, &c.Question, &c.Answer, &c.Ease, &c.IntervalDays,
		&c.Reps, &c.Lapses, &c.DueDate, &c.Suspended, &c.AccuracyRate,
		&c.AvgResponseTime, &c.TimesSeen, &c.TypoCount, &c.LastReviewed, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return &c, nil
}

func (s *Store) ListCards(deckID int64) ([]models.Card, error) {
	rows, err := s.db.Query(
		`SELECT id, deck_id, question, answer, ease, interval_days, reps, lapses,
		        due_date, suspended, accuracy_rate, avg_response_time, times_seen,
		        typo_count, last_reviewed, created_at
		 FROM cards WHERE deck_id = $1 ORDER BY id ASC`,
		deckID,
	)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(&c.ID, &c.DeckID, &c.Question, &c.Answer, &c.Ease,
			&c.IntervalDays, &c.Reps, &c.Lapses, &c.DueDate, &c.Suspended,
			&c.AccuracyRate, &c.AvgResponseTime, &c.TimesSeen, &c.TypoCount,
			&c.LastReviewed, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (s *Store) GetCard(cardID int64) (*models.Card, error) {
	var c models.Card
	err := s.db.QueryRow(
		`SELECT id, deck_id, question, answer, ease, interval_days, reps, lapses,
		        due_date, suspended, accuracy_rate, avg_response_time, times_seen,
		        typo_count, last_reviewed, created_at
		 FROM cards WHERE id = $1`,
		cardID,
	).Scan(&c.ID, &c.DeckID, &c.Question, &c.Answer, &c.Ease, &c.IntervalDays,
		&c.Reps, &c.Lapses, &c.DueDate, &c.Suspended, &c.AccuracyRate,
		&c.AvgResponseTime, &c.TimesSeen, &c.TypoCount, &c.LastReviewed, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	return &c, nil
}

func (s *Store) UpdateCard(card *models.Card) error {
	_, err := s.db.Exec(
		`UPDATE cards SET question = $1, answer = $2, suspended = $3 WHERE id = $4`,
		card.Question, card.Answer, card.Suspended, card.ID,
	)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	return nil
}

func (s *Store) DeleteCard(cardID int64) error {
	_, err := s.db.Exec(`DELETE FROM cards WHERE id = $1`, cardID)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return nil
}

// ── Draft Cards ─────────────────────────────────────────

func (s *Store) InsertDrafts(userID int64, drafts []models.DraftCard) ([]models.DraftCard, error) {
	out := make([]models.DraftCard, 0, len(drafts))
	for _, d := range drafts {
		var saved models.DraftCard
		err := s.db.QueryRow(
			`INSERT INTO draft_cards (user_id, prompt, answer, source_file, status)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, user_id, deck_id, prompt, answer, source_file, status, created_at`,
			userID, d.Prompt, d.Answer, d.SourceFile, models.DraftPending,
		).Scan(&saved.ID, &saved.UserID, &saved.DeckID, &saved.Prompt, &saved.Answer,
			&saved.SourceFile, &saved.Status, &saved.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert draft: %w", err)
		}
		out = append(out, saved)
	}
	return out, nil
}

func (s *Store) ListDrafts(userID int64, status models.DraftStatus) ([]models.DraftCard, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, deck_id, prompt, answer, source_file, status, created_at
		 FROM draft_cards WHERE user_id = $1 AND status = $2
		 ORDER BY created_at DESC`,
		userID, status,
	)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []models.DraftCard
	for rows.Next() {
		var d models.DraftCard
		if err := rows.Scan(&d.ID, &d.UserID, &d.DeckID, &d.Prompt, &d.Answer,
			&d.SourceFile, &d.Status, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// RejectDrafts marks the user's pending drafts rejected. Unknown or
// already-resolved ids are skipped.
func (s *Store) RejectDrafts(userID int64, draftIDs []int64) (int, error) {
	rejected := 0
	for _, id := range draftIDs {
		res, err := s.db.Exec(
			`UPDATE draft_cards SET status = $1
			 WHERE id = $2 AND user_id = $3 AND status = $4`,
			models.DraftRejected, id, userID, models.DraftPending,
		)
		if err != nil {
			return 0, fmt.Errorf("reject draft %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			rejected++
		}
	}
	return rejected, nil
}

// AcceptDrafts converts pending drafts into real cards in the target
// deck. The card inserts and the status flips commit together.
func (s *Store) AcceptDrafts(ctx context.Context, userID, deckID int64, draftIDs []int64) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin accept tx: %w", err)
	}
	defer tx.Rollback()

	accepted := 0
	for _, id := range draftIDs {
		var prompt, answer string
		err := tx.QueryRow(
			`SELECT prompt, answer FROM draft_cards
			 WHERE id = $1 AND user_id = $2 AND status = $3`,
			id, userID, models.DraftPending,
		).Scan(&prompt, &answer)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("load draft %d: %w", id, err)
		}

		if _, err := tx.Exec(
			`INSERT INTO cards (deck_id, question, answer) VALUES ($1, $2, $3)`,
			deckID, prompt, answer,
		); err != nil {
			return 0, fmt.Errorf("accept draft %d: %w", id, err)
		}

		if _, err := tx.Exec(
			`UPDATE draft_cards SET status = $1, deck_id = $2 WHERE id = $3`,
			models.DraftAccepted, deckID, id,
		); err != nil {
			return 0, fmt.Errorf("mark draft %d: %w", id, err)
		}
		accepted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit accept: %w", err)
	}
	return accepted, nil
}
