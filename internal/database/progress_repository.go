package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// ProgressRepository handles database operations for per-user card
// scheduling state. Rows are created once per (user, card) and afterwards
// replaced wholesale with whatever the scheduler returns.
type ProgressRepository struct{}

// NewProgressRepository creates a new repository instance.
func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{}
}

// GetByUserAndCard returns the progress row for one user and card, or
// (nil, nil) when the card has not been introduced to the user yet.
func (r *ProgressRepository) GetByUserAndCard(userID, cardID int64) (*models.CardProgress, error) {
	var progress models.CardProgress
	err := DB.Get(&progress, "SELECT * FROM card_progress WHERE user_id = $1 AND card_id = $2", userID, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress for user %d card %d: %w", userID, cardID, err)
	}
	return &progress, nil
}

// GetByUser returns every progress row the user has.
func (r *ProgressRepository) GetByUser(userID int64) ([]models.CardProgress, error) {
	var progress []models.CardProgress
	err := DB.Select(&progress, "SELECT * FROM card_progress WHERE user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress for user %d: %w", userID, err)
	}
	return progress, nil
}

// GetDueByUser returns the user's due rows at now, earliest first, capped
// at limit. deckID 0 means any deck.
func (r *ProgressRepository) GetDueByUser(userID int64, deckID int64, now time.Time, limit int) ([]models.CardProgress, error) {
	var progress []models.CardProgress
	err := DB.Select(&progress, `
		SELECT p.* FROM card_progress p
		JOIN cards c ON c.id = p.card_id
		WHERE p.user_id = $1 AND p.due <= $2 AND ($3 = 0 OR c.deck_id = $3)
		ORDER BY p.due ASC
		LIMIT $4
	`, userID, now, deckID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due cards for user %d: %w", userID, err)
	}
	return progress, nil
}

// CountDueByUser returns how many of the user's cards are due at now.
func (r *ProgressRepository) CountDueByUser(userID int64, now time.Time) (int, error) {
	var count int
	err := DB.Get(&count, "SELECT COUNT(*) FROM card_progress WHERE user_id = $1 AND due <= $2", userID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to count due cards for user %d: %w", userID, err)
	}
	return count, nil
}

// CountByPhase returns the user's card counts grouped by scheduling phase.
func (r *ProgressRepository) CountByPhase(userID int64) ([]models.PhaseCount, error) {
	var counts []models.PhaseCount
	err := DB.Select(&counts, `
		SELECT phase, COUNT(*) AS count
		FROM card_progress
		WHERE user_id = $1
		GROUP BY phase
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count progress by phase: %w", err)
	}
	return counts, nil
}

// CountIntroducedSince returns how many cards were introduced to the user
// since the given moment. The study builder uses it to enforce the daily
// new-card allowance.
func (r *ProgressRepository) CountIntroducedSince(userID int64, since time.Time) (int, error) {
	var count int
	err := DB.Get(&count, "SELECT COUNT(*) FROM card_progress WHERE user_id = $1 AND created_at >= $2", userID, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count introduced cards: %w", err)
	}
	return count, nil
}

// Create inserts the initial scheduling state for one (user, card) pair.
func (r *ProgressRepository) Create(progress *models.CardProgress) error {
	if isPostgres() {
		return DB.QueryRow(`
			INSERT INTO card_progress (user_id, card_id, phase, due, interval, ease_factor, reps, lapses, last_review)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at
		`, progress.UserID, progress.CardID, progress.Phase, progress.Due, progress.Interval,
			progress.EaseFactor, progress.Reps, progress.Lapses, progress.LastReview).
			Scan(&progress.ID, &progress.CreatedAt, &progress.UpdatedAt)
	}

	result, err := DB.Exec(`
		INSERT INTO card_progress (user_id, card_id, phase, due, interval, ease_factor, reps, lapses, last_review, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, progress.UserID, progress.CardID, progress.Phase, progress.Due, progress.Interval,
		progress.EaseFactor, progress.Reps, progress.Lapses, progress.LastReview)
	if err != nil {
		return fmt.Errorf("failed to create progress: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	progress.ID = id
	return DB.QueryRow("SELECT created_at, updated_at FROM card_progress WHERE id = $1", progress.ID).
		Scan(&progress.CreatedAt, &progress.UpdatedAt)
}

// Update replaces the stored scheduling fields with the given state. The
// scheduler hands back a complete replacement record, so every field is
// written unconditionally.
func (r *ProgressRepository) Update(progress *models.CardProgress) error {
	if isPostgres() {
		return DB.QueryRow(`
			UPDATE card_progress SET
				phase = $1,
				due = $2,
				interval = $3,
				ease_factor = $4,
				reps = $5,
				lapses = $6,
				last_review = $7,
				updated_at = NOW()
			WHERE id = $8
			RETURNING updated_at
		`, progress.Phase, progress.Due, progress.Interval, progress.EaseFactor,
			progress.Reps, progress.Lapses, progress.LastReview, progress.ID).
			Scan(&progress.UpdatedAt)
	}

	_, err := DB.Exec(`
		UPDATE card_progress SET
			phase = $1,
			due = $2,
			interval = $3,
			ease_factor = $4,
			reps = $5,
			lapses = $6,
			last_review = $7,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $8
	`, progress.Phase, progress.Due, progress.Interval, progress.EaseFactor,
		progress.Reps, progress.Lapses, progress.LastReview, progress.ID)
	if err != nil {
		return fmt.Errorf("failed to update progress %d: %w", progress.ID, err)
	}
	return DB.QueryRow("SELECT updated_at FROM card_progress WHERE id = $1", progress.ID).
		Scan(&progress.UpdatedAt)
}

// Delete removes a progress record.
func (r *ProgressRepository) Delete(id int64) error {
	_, err := DB.Exec("DELETE FROM card_progress WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete progress %d: %w", id, err)
	}
	return nil
}
