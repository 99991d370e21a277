package models

import "time"

// DrillResult records one answered multiple-choice drill question.
// Drills are self-tests; their outcomes never touch scheduling state.
type DrillResult struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	CardID     int64     `json:"card_id" db:"card_id"`
	Correct    bool      `json:"correct" db:"correct"`
	AnsweredAt time.Time `json:"answered_at" db:"answered_at"`
}
