package models

// PhaseCount is one row of a per-phase progress aggregate.
type PhaseCount struct {
	Phase Phase `json:"phase" db:"phase"`
	Count int   `json:"count" db:"count"`
}

// DeckCount is one row of a per-deck card count aggregate.
type DeckCount struct {
	DeckID   int64  `json:"deck_id" db:"deck_id"`
	DeckName string `json:"deck_name" db:"deck_name"`
	Cards    int    `json:"cards" db:"cards"`
}

// DayCount is one row of a reviews-per-day aggregate, keyed by calendar
// date in "2006-01-02" form.
type DayCount struct {
	Day   string `json:"day" db:"day"`
	Count int    `json:"count" db:"count"`
}
