package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// CardRepository handles database operations for cards.
type CardRepository struct{}

// NewCardRepository creates a new repository instance.
func NewCardRepository() *CardRepository {
	return &CardRepository{}
}

// GetByID returns a card by ID.
func (r *CardRepository) GetByID(id int64) (*models.Card, error) {
	var card models.Card
	err := DB.Get(&card, "SELECT * FROM cards WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get card %d: %w", id, err)
	}
	return &card, nil
}

// GetByDeck returns all cards of a deck, front-sorted.
func (r *CardRepository) GetByDeck(deckID int64) ([]models.Card, error) {
	var cards []models.Card
	err := DB.Select(&cards, "SELECT * FROM cards WHERE deck_id = $1 ORDER BY front", deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for deck %d: %w", deckID, err)
	}
	return cards, nil
}

// GetByDeckAndFront looks a card up by its natural key. Returns (nil, nil)
// when no such card exists; the importer uses this for its upsert decision.
func (r *CardRepository) GetByDeckAndFront(deckID int64, front string) (*models.Card, error) {
	var card models.Card
	err := DB.Get(&card, "SELECT * FROM cards WHERE deck_id = $1 AND front = $2", deckID, front)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up card: %w", err)
	}
	return &card, nil
}

// GetUnseenByUser returns cards the user has no progress record for yet,
// i.e. candidates for introduction. deckID 0 means any deck.
func (r *CardRepository) GetUnseenByUser(userID int64, deckID int64, limit int) ([]models.Card, error) {
	query := `
		SELECT c.* FROM cards c
		LEFT JOIN card_progress p ON p.card_id = c.id AND p.user_id = $1
		WHERE p.id IS NULL AND ($2 = 0 OR c.deck_id = $2)
		ORDER BY c.id
		LIMIT $3
	`
	var cards []models.Card
	err := DB.Select(&cards, query, userID, deckID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get unseen cards: %w", err)
	}
	return cards, nil
}

// GetRandomByDeckAndKind returns up to count random cards of one kind from
// a deck, excluding one card ID. The drill builder uses it for distractors.
func (r *CardRepository) GetRandomByDeckAndKind(deckID int64, kind models.CardKind, excludeID int64, count int) ([]models.Card, error) {
	var cards []models.Card
	err := DB.Select(&cards, `
		SELECT * FROM cards
		WHERE deck_id = $1 AND kind = $2 AND id != $3
		ORDER BY RANDOM()
		LIMIT $4
	`, deckID, kind, excludeID, count)
	if err != nil {
		return nil, fmt.Errorf("failed to get random cards: %w", err)
	}
	return cards, nil
}

// Search finds cards whose front or back matches the pattern.
func (r *CardRepository) Search(pattern string) ([]models.Card, error) {
	var cards []models.Card
	like := "%" + pattern + "%"
	err := DB.Select(&cards, `
		SELECT * FROM cards
		WHERE front LIKE $1 OR back LIKE $1 OR transliteration LIKE $1
		ORDER BY front
	`, like)
	if err != nil {
		return nil, fmt.Errorf("failed to search cards: %w", err)
	}
	return cards, nil
}

// Create inserts a new card.
func (r *CardRepository) Create(card *models.Card) error {
	if isPostgres() {
		return DB.QueryRow(`
			INSERT INTO cards (deck_id, kind, front, back, transliteration, notes)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at
		`, card.DeckID, card.Kind, card.Front, card.Back, card.Transliteration, card.Notes).
			Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)
	}

	result, err := DB.Exec(`
		INSERT INTO cards (deck_id, kind, front, back, transliteration, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, card.DeckID, card.Kind, card.Front, card.Back, card.Transliteration, card.Notes)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	card.ID = id
	return DB.QueryRow("SELECT created_at, updated_at FROM cards WHERE id = $1", card.ID).
		Scan(&card.CreatedAt, &card.UpdatedAt)
}

// Update modifies an existing card.
func (r *CardRepository) Update(card *models.Card) error {
	if isPostgres() {
		return DB.QueryRow(`
			UPDATE cards SET
				deck_id = $1,
				kind = $2,
				front = $3,
				back = $4,
				transliteration = $5,
				notes = $6,
				updated_at = NOW()
			WHERE id = $7
			RETURNING updated_at
		`, card.DeckID, card.Kind, card.Front, card.Back, card.Transliteration, card.Notes, card.ID).
			Scan(&card.UpdatedAt)
	}

	_, err := DB.Exec(`
		UPDATE cards SET
			deck_id = $1,
			kind = $2,
			front = $3,
			back = $4,
			transliteration = $5,
			notes = $6,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $7
	`, card.DeckID, card.Kind, card.Front, card.Back, card.Transliteration, card.Notes, card.ID)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return DB.QueryRow("SELECT updated_at FROM cards WHERE id = $1", card.ID).Scan(&card.UpdatedAt)
}

// Delete removes a card and its per-user state.
func (r *CardRepository) Delete(id int64) error {
	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	for _, q := range []string{
		"DELETE FROM card_progress WHERE card_id = $1",
		"DELETE FROM review_logs WHERE card_id = $1",
		"DELETE FROM drill_results WHERE card_id = $1",
		"DELETE FROM cards WHERE id = $1",
	} {
		if _, err := tx.Exec(q, id); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to delete card %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// CountByDeck returns the number of cards in a deck.
func (r *CardRepository) CountByDeck(deckID int64) (int, error) {
	var count int
	err := DB.Get(&count, "SELECT COUNT(*) FROM cards WHERE deck_id = $1", deckID)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}
