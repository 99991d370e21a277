package models

import "time"

// Phase is the scheduling phase of a card for one user. It is set by the
// scheduler on every transition so consumers never re-derive it from reps.
type Phase string

const (
	PhaseNew      Phase = "new"      // never reviewed
	PhaseLearning Phase = "learning" // inside the minute-granularity learning steps
	PhaseReview   Phase = "review"   // graduated to day-granularity intervals
)

// IsValid reports whether p is one of the recognized phases.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseNew, PhaseLearning, PhaseReview:
		return true
	}
	return false
}

// ReviewState is the scheduling state shared by every card kind. It is
// created once when a card is introduced to a user and afterwards replaced
// wholesale by the scheduler on each review.
type ReviewState struct {
	Phase      Phase      `json:"phase" db:"phase"`
	Due        time.Time  `json:"due" db:"due"`
	Interval   int        `json:"interval" db:"interval"` // whole days; 0 while learning
	EaseFactor float64    `json:"ease_factor" db:"ease_factor"`
	Reps       int        `json:"reps" db:"reps"`     // consecutive successes since last failure
	Lapses     int        `json:"lapses" db:"lapses"` // lifetime failures, never reset
	LastReview *time.Time `json:"last_review,omitempty" db:"last_review"`
}

// CardProgress attaches a ReviewState to one user's study of one card.
// sqlx flattens the embedded struct, so the row maps onto a single table.
type CardProgress struct {
	ID     int64 `json:"id" db:"id"`
	UserID int64 `json:"user_id" db:"user_id"`
	CardID int64 `json:"card_id" db:"card_id"`
	ReviewState
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
