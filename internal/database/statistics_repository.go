package database

import (
	"fmt"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// StatisticsRepository serves the cross-entity aggregates behind /stats.
// It returns raw counts only; retention math and risk ranking live in the
// scheduling core.
type StatisticsRepository struct{}

// NewStatisticsRepository creates a new repository instance.
func NewStatisticsRepository() *StatisticsRepository {
	return &StatisticsRepository{}
}

// CardsPerDeck returns the card count of every deck, name-sorted.
func (r *StatisticsRepository) CardsPerDeck() ([]models.DeckCount, error) {
	var counts []models.DeckCount
	err := DB.Select(&counts, `
		SELECT d.id AS deck_id, d.name AS deck_name, COUNT(c.id) AS cards
		FROM decks d
		LEFT JOIN cards c ON c.deck_id = d.id
		GROUP BY d.id, d.name
		ORDER BY d.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count cards per deck: %w", err)
	}
	return counts, nil
}

// TotalCards returns the number of cards across all decks.
func (r *StatisticsRepository) TotalCards() (int, error) {
	var count int
	err := DB.Get(&count, "SELECT COUNT(*) FROM cards")
	if err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}

// UnseenCount returns how many cards the user has never been introduced to.
// deckID 0 means any deck.
func (r *StatisticsRepository) UnseenCount(userID int64, deckID int64) (int, error) {
	var count int
	err := DB.Get(&count, `
		SELECT COUNT(*) FROM cards c
		LEFT JOIN card_progress p ON p.card_id = c.id AND p.user_id = $1
		WHERE p.id IS NULL AND ($2 = 0 OR c.deck_id = $2)
	`, userID, deckID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unseen cards: %w", err)
	}
	return count, nil
}
