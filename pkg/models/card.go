package models

import "time"

// CardKind identifies what a card teaches. The scheduler never looks at it;
// every kind shares the same ReviewState.
type CardKind string

const (
	KindVocab   CardKind = "vocab"   // lexical entry: Greek headword -> gloss
	KindGrammar CardKind = "grammar" // morphology drill: form -> parsing
	KindPassage CardKind = "passage" // memorized passage: incipit -> full text
)

// IsValid reports whether k is one of the recognized card kinds.
func (k CardKind) IsValid() bool {
	switch k {
	case KindVocab, KindGrammar, KindPassage:
		return true
	}
	return false
}

// Card represents a learnable item: a vocabulary word, a morphology drill
// or a passage to memorize.
type Card struct {
	ID              int64     `json:"id" db:"id"`
	DeckID          int64     `json:"deck_id" db:"deck_id"`
	Kind            CardKind  `json:"kind" db:"kind"`
	Front           string    `json:"front" db:"front"` // Greek side (headword, inflected form or incipit)
	Back            string    `json:"back" db:"back"`   // gloss, parsing or full passage text
	Transliteration string    `json:"transliteration" db:"transliteration"`
	Notes           string    `json:"notes" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
