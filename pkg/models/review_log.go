package models

import "time"

// ReviewLog is an append-only record of a single review event. The stats
// views read it; the scheduler never does.
type ReviewLog struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	CardID         int64     `json:"card_id" db:"card_id"`
	Quality        int       `json:"quality" db:"quality"` // 1=Again .. 4=Easy
	IntervalBefore int       `json:"interval_before" db:"interval_before"`
	IntervalAfter  int       `json:"interval_after" db:"interval_after"`
	EaseAfter      float64   `json:"ease_after" db:"ease_after"`
	Learning       bool      `json:"learning" db:"learning"` // still in learning phase after this review
	ReviewedAt     time.Time `json:"reviewed_at" db:"reviewed_at"`
}
