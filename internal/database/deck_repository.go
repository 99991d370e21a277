package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// DeckRepository handles database operations for decks.
type DeckRepository struct{}

// NewDeckRepository creates a new repository instance.
func NewDeckRepository() *DeckRepository {
	return &DeckRepository{}
}

// GetAll returns all decks, name-sorted.
func (r *DeckRepository) GetAll() ([]models.Deck, error) {
	var decks []models.Deck
	err := DB.Select(&decks, "SELECT * FROM decks ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to get decks: %w", err)
	}
	return decks, nil
}

// GetByID returns a deck by ID.
func (r *DeckRepository) GetByID(id int64) (*models.Deck, error) {
	var deck models.Deck
	err := DB.Get(&deck, "SELECT * FROM decks WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck %d: %w", id, err)
	}
	return &deck, nil
}

// GetByName returns a deck by its unique name, or (nil, nil) when missing.
func (r *DeckRepository) GetByName(name string) (*models.Deck, error) {
	var deck models.Deck
	err := DB.Get(&deck, "SELECT * FROM decks WHERE name = $1", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck %q: %w", name, err)
	}
	return &deck, nil
}

// Create inserts a new deck.
func (r *DeckRepository) Create(deck *models.Deck) error {
	if isPostgres() {
		return DB.QueryRow(`
			INSERT INTO decks (name, description)
			VALUES ($1, $2)
			RETURNING id, created_at, updated_at
		`, deck.Name, deck.Description).Scan(&deck.ID, &deck.CreatedAt, &deck.UpdatedAt)
	}

	result, err := DB.Exec(`
		INSERT INTO decks (name, description, created_at, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, deck.Name, deck.Description)
	if err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	deck.ID = id
	return DB.QueryRow("SELECT created_at, updated_at FROM decks WHERE id = $1", deck.ID).
		Scan(&deck.CreatedAt, &deck.UpdatedAt)
}

// Delete removes a deck with its cards and all per-user state.
func (r *DeckRepository) Delete(id int64) error {
	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	for _, q := range []string{
		"DELETE FROM card_progress WHERE card_id IN (SELECT id FROM cards WHERE deck_id = $1)",
		"DELETE FROM review_logs WHERE card_id IN (SELECT id FROM cards WHERE deck_id = $1)",
		"DELETE FROM drill_results WHERE card_id IN (SELECT id FROM cards WHERE deck_id = $1)",
		"DELETE FROM cards WHERE deck_id = $1",
		"DELETE FROM decks WHERE id = $1",
	} {
		if _, err := tx.Exec(q, id); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to delete deck %d: %w", id, err)
		}
	}
	return tx.Commit()
}
