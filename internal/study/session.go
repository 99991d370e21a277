// Package study assembles review queues and multiple-choice drills from
// store data. It owns no scheduling math: initial states come from the
// scheduling core and every rating is applied by the caller.
package study

import (
	"fmt"
	"time"

	"github.com/romain-girardi-eng/greekify-app-sub000/internal/spaced_repetition"
	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// DefaultReviewLimit caps how many due cards a single session pulls.
const DefaultReviewLimit = 100

// CardStore is the slice of the card repository the builder needs.
type CardStore interface {
	GetByID(id int64) (*models.Card, error)
	GetUnseenByUser(userID int64, deckID int64, limit int) ([]models.Card, error)
	GetRandomByDeckAndKind(deckID int64, kind models.CardKind, excludeID int64, count int) ([]models.Card, error)
}

// ProgressStore is the slice of the progress repository the builder needs.
type ProgressStore interface {
	GetDueByUser(userID int64, deckID int64, now time.Time, limit int) ([]models.CardProgress, error)
	GetByUser(userID int64) ([]models.CardProgress, error)
	CountIntroducedSince(userID int64, since time.Time) (int, error)
	Create(progress *models.CardProgress) error
}

// SettingsStore supplies per-user study preferences.
type SettingsStore interface {
	Get(userID int64) (*models.UserSettings, error)
}

// Builder assembles study sessions for one user at a time.
type Builder struct {
	cards       CardStore
	progress    ProgressStore
	settings    SettingsStore
	core        *spaced_repetition.Scheduler
	reviewLimit int
	clock       func() time.Time
}

// NewBuilder wires the stores with the scheduling core. reviewLimit <= 0
// falls back to DefaultReviewLimit.
func NewBuilder(cards CardStore, progress ProgressStore, settings SettingsStore, core *spaced_repetition.Scheduler, reviewLimit int) *Builder {
	if reviewLimit <= 0 {
		reviewLimit = DefaultReviewLimit
	}
	return &Builder{
		cards:       cards,
		progress:    progress,
		settings:    settings,
		core:        core,
		reviewLimit: reviewLimit,
		clock:       time.Now,
	}
}

// Item is one step of a session: a card together with its scheduling state.
type Item struct {
	Card     models.Card
	Progress models.CardProgress
	New      bool // introduced in this session
}

// Session is the queue one user works through, consumed item by item.
// The bot serializes access; Session itself is not safe for concurrent use.
type Session struct {
	UserID   int64
	Items    []Item
	Reviewed int // ratings applied so far
	Again    int // of which failures
	pos      int
}

// Current returns the item under review, or false when the session is done.
func (s *Session) Current() (*Item, bool) {
	if s.pos >= len(s.Items) {
		return nil, false
	}
	return &s.Items[s.pos], true
}

// Advance moves past the current item.
func (s *Session) Advance() {
	if s.pos < len(s.Items) {
		s.pos++
	}
}

// Remaining returns how many items are left, including the current one.
func (s *Session) Remaining() int {
	return len(s.Items) - s.pos
}

// Len returns the total session size.
func (s *Session) Len() int {
	return len(s.Items)
}

// BuildReview assembles a full session: every due card first (earliest
// overdue in front, as the store returns them), then unseen cards up to
// what is left of the user's daily new-card allowance. Introduced cards
// get their initial scheduling state persisted immediately, so an
// abandoned session still counts against the allowance.
func (b *Builder) BuildReview(userID int64) (*Session, error) {
	settings, err := b.settings.Get(userID)
	if err != nil {
		return nil, err
	}
	now := b.clock()

	due, err := b.progress.GetDueByUser(userID, settings.DeckID, now, b.reviewLimit)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(due))
	for _, p := range due {
		card, err := b.cards.GetByID(p.CardID)
		if err != nil {
			return nil, fmt.Errorf("load card %d: %w", p.CardID, err)
		}
		items = append(items, Item{Card: *card, Progress: p})
	}

	intro, err := b.introduce(userID, settings, now)
	if err != nil {
		return nil, err
	}
	items = append(items, intro...)

	return &Session{UserID: userID, Items: items}, nil
}

// BuildLearn assembles an introductions-only session (the /learn command):
// no due cards, just new material up to the daily allowance.
func (b *Builder) BuildLearn(userID int64) (*Session, error) {
	settings, err := b.settings.Get(userID)
	if err != nil {
		return nil, err
	}
	intro, err := b.introduce(userID, settings, b.clock())
	if err != nil {
		return nil, err
	}
	return &Session{UserID: userID, Items: intro}, nil
}

// introduce creates initial scheduling states for unseen cards, bounded by
// what remains of today's new-card allowance.
func (b *Builder) introduce(userID int64, settings *models.UserSettings, now time.Time) ([]Item, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	introduced, err := b.progress.CountIntroducedSince(userID, startOfDay)
	if err != nil {
		return nil, err
	}
	allowance := settings.NewCardsPerDay - introduced
	if allowance <= 0 {
		return nil, nil
	}

	cards, err := b.cards.GetUnseenByUser(userID, settings.DeckID, allowance)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(cards))
	for _, card := range cards {
		p := models.CardProgress{
			UserID:      userID,
			CardID:      card.ID,
			ReviewState: b.core.NewState(now),
		}
		if err := b.progress.Create(&p); err != nil {
			return nil, fmt.Errorf("introduce card %d: %w", card.ID, err)
		}
		items = append(items, Item{Card: card, Progress: p, New: true})
	}
	return items, nil
}
