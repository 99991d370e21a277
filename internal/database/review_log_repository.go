package database

import (
	"fmt"
	"time"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// ReviewLogRepository handles the append-only review history. Rows are
// written once per rating and only ever read back for statistics.
type ReviewLogRepository struct{}

// NewReviewLogRepository creates a new repository instance.
func NewReviewLogRepository() *ReviewLogRepository {
	return &ReviewLogRepository{}
}

// Create appends one review event.
func (r *ReviewLogRepository) Create(log *models.ReviewLog) error {
	if isPostgres() {
		return DB.QueryRow(`
			INSERT INTO review_logs (user_id, card_id, quality, interval_before, interval_after, ease_after, learning, reviewed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`, log.UserID, log.CardID, log.Quality, log.IntervalBefore, log.IntervalAfter,
			log.EaseAfter, log.Learning, log.ReviewedAt).
			Scan(&log.ID)
	}

	result, err := DB.Exec(`
		INSERT INTO review_logs (user_id, card_id, quality, interval_before, interval_after, ease_after, learning, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, log.UserID, log.CardID, log.Quality, log.IntervalBefore, log.IntervalAfter,
		log.EaseAfter, log.Learning, log.ReviewedAt)
	if err != nil {
		return fmt.Errorf("failed to create review log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	log.ID = id
	return nil
}

// GetByUser returns the user's review history, newest first, capped at
// limit.
func (r *ReviewLogRepository) GetByUser(userID int64, limit int) ([]models.ReviewLog, error) {
	var logs []models.ReviewLog
	err := DB.Select(&logs, `
		SELECT * FROM review_logs
		WHERE user_id = $1
		ORDER BY reviewed_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get review logs for user %d: %w", userID, err)
	}
	return logs, nil
}

// CountSince returns how many reviews the user did since the given moment.
func (r *ReviewLogRepository) CountSince(userID int64, since time.Time) (int, error) {
	var count int
	err := DB.Get(&count, "SELECT COUNT(*) FROM review_logs WHERE user_id = $1 AND reviewed_at >= $2", userID, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

// CountPerDay returns reviews-per-calendar-day counts for the last `days`
// days. Days without reviews are absent; the stats view zero-fills.
func (r *ReviewLogRepository) CountPerDay(userID int64, days int) ([]models.DayCount, error) {
	since := time.Now().AddDate(0, 0, -days)

	var query string
	if isPostgres() {
		query = `
			SELECT TO_CHAR(reviewed_at, 'YYYY-MM-DD') AS day, COUNT(*) AS count
			FROM review_logs
			WHERE user_id = $1 AND reviewed_at >= $2
			GROUP BY day
			ORDER BY day
		`
	} else {
		query = `
			SELECT strftime('%Y-%m-%d', reviewed_at) AS day, COUNT(*) AS count
			FROM review_logs
			WHERE user_id = $1 AND reviewed_at >= $2
			GROUP BY day
			ORDER BY day
		`
	}

	var counts []models.DayCount
	err := DB.Select(&counts, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews per day: %w", err)
	}
	return counts, nil
}
