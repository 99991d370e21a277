package study

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// drillOptions is how many answers a drill question offers, the correct
// one included.
const drillOptions = 4

// Question is one multiple-choice drill item: a card front with the real
// gloss hidden among distractors from the same deck.
type Question struct {
	Card    models.Card
	Options []string
	Answer  int // index of the correct option
}

// Drill is a self-test over already-graduated vocabulary. Its outcomes are
// recorded as DrillResult rows and never touch scheduling state.
type Drill struct {
	UserID    int64
	Questions []Question
	Correct   int
	pos       int
}

// Current returns the question being asked, or false when the drill is done.
func (d *Drill) Current() (*Question, bool) {
	if d.pos >= len(d.Questions) {
		return nil, false
	}
	return &d.Questions[d.pos], true
}

// Advance moves past the current question.
func (d *Drill) Advance() {
	if d.pos < len(d.Questions) {
		d.pos++
	}
}

// Remaining returns how many questions are left, including the current one.
func (d *Drill) Remaining() int {
	return len(d.Questions) - d.pos
}

// Len returns the total number of questions.
func (d *Drill) Len() int {
	return len(d.Questions)
}

// BuildDrill assembles up to size multiple-choice questions over the user's
// review-phase vocab cards. Learning-phase cards are excluded: drilling a
// card the learner barely knows only teaches the distractors.
func (b *Builder) BuildDrill(userID int64, size int) (*Drill, error) {
	progress, err := b.progress.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	graduated := lo.Filter(progress, func(p models.CardProgress, _ int) bool {
		return p.Phase == models.PhaseReview
	})

	pool := make([]models.Card, 0, len(graduated))
	for _, p := range graduated {
		card, err := b.cards.GetByID(p.CardID)
		if err != nil {
			return nil, fmt.Errorf("load card %d: %w", p.CardID, err)
		}
		if card.Kind == models.KindVocab {
			pool = append(pool, *card)
		}
	}
	if len(pool) == 0 {
		return &Drill{UserID: userID}, nil
	}

	pool = lo.Shuffle(pool)
	if size > 0 && len(pool) > size {
		pool = pool[:size]
	}

	questions := make([]Question, 0, len(pool))
	for _, card := range pool {
		q, err := b.buildQuestion(card, pool)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return &Drill{UserID: userID, Questions: questions}, nil
}

// buildQuestion picks distractors from the card's own deck first and tops
// up from the drill pool when the deck is too small.
func (b *Builder) buildQuestion(card models.Card, pool []models.Card) (Question, error) {
	same, err := b.cards.GetRandomByDeckAndKind(card.DeckID, card.Kind, card.ID, drillOptions-1)
	if err != nil {
		return Question{}, fmt.Errorf("load distractors for card %d: %w", card.ID, err)
	}

	options := make([]string, 0, drillOptions)
	for _, c := range same {
		if c.Back != card.Back && !lo.Contains(options, c.Back) {
			options = append(options, c.Back)
		}
	}
	for _, other := range pool {
		if len(options) >= drillOptions-1 {
			break
		}
		if other.ID != card.ID && other.Back != card.Back && !lo.Contains(options, other.Back) {
			options = append(options, other.Back)
		}
	}
	if len(options) > drillOptions-1 {
		options = options[:drillOptions-1]
	}

	options = append(options, card.Back)
	options = lo.Shuffle(options)
	return Question{
		Card:    card,
		Options: options,
		Answer:  lo.IndexOf(options, card.Back),
	}, nil
}
