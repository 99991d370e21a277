package database

import (
	"fmt"
	"time"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// DrillResultRepository handles database operations for multiple-choice
// drill outcomes. Drill rows are advisory statistics; the scheduling state
// never reads them.
type DrillResultRepository struct{}

// NewDrillResultRepository creates a new repository instance.
func NewDrillResultRepository() *DrillResultRepository {
	return &DrillResultRepository{}
}

// Create inserts one answered drill question.
func (r *DrillResultRepository) Create(result *models.DrillResult) error {
	if result.AnsweredAt.IsZero() {
		result.AnsweredAt = time.Now()
	}

	if isPostgres() {
		return DB.QueryRow(`
			INSERT INTO drill_results (user_id, card_id, correct, answered_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, result.UserID, result.CardID, result.Correct, result.AnsweredAt).
			Scan(&result.ID)
	}

	res, err := DB.Exec(`
		INSERT INTO drill_results (user_id, card_id, correct, answered_at)
		VALUES ($1, $2, $3, $4)
	`, result.UserID, result.CardID, result.Correct, result.AnsweredAt)
	if err != nil {
		return fmt.Errorf("failed to create drill result: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	result.ID = id
	return nil
}

// Accuracy returns the user's share of correct drill answers since the
// given moment, in percent, plus the number of questions answered. Zero
// answers yield (0, 0) rather than a division error.
func (r *DrillResultRepository) Accuracy(userID int64, since time.Time) (float64, int, error) {
	var row struct {
		Total   int `db:"total"`
		Correct int `db:"correct"`
	}
	err := DB.Get(&row, `
		SELECT COUNT(*) AS total, COALESCE(SUM(CASE WHEN correct THEN 1 ELSE 0 END), 0) AS correct
		FROM drill_results
		WHERE user_id = $1 AND answered_at >= $2
	`, userID, since)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute drill accuracy: %w", err)
	}
	if row.Total == 0 {
		return 0, 0, nil
	}
	return float64(row.Correct) / float64(row.Total) * 100, row.Total, nil
}
