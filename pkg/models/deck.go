package models

import "time"

// Deck groups cards by source or theme (e.g. "Attic core vocabulary",
// "Iliad I.1-52").
type Deck struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
