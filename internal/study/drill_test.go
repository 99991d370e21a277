package study

import (
	"fmt"
	"testing"
	"time"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// seedDrillStore fills a store with graduated vocab plus cards that must be
// excluded from drills: learning-phase vocab and a graduated grammar card.
func seedDrillStore(t *testing.T) *fakeStore {
	t.Helper()
	store := newFakeStore(models.UserSettings{NewCardsPerDay: 0})
	for i := int64(1); i <= 6; i++ {
		store.addCard(card(i, 1, models.KindVocab, fmt.Sprintf("ὄνομα-%d", i), fmt.Sprintf("gloss-%d", i)))
		store.addProgress(models.CardProgress{UserID: 7, CardID: i, ReviewState: models.ReviewState{
			Phase: models.PhaseReview, Due: studyNow.AddDate(0, 0, 3), Reps: 2,
		}})
	}
	store.addCard(card(7, 1, models.KindVocab, "still-learning", "not yet"))
	store.addProgress(models.CardProgress{UserID: 7, CardID: 7, ReviewState: models.ReviewState{
		Phase: models.PhaseLearning, Due: studyNow.Add(10 * time.Minute), Reps: 1,
	}})
	store.addCard(card(8, 1, models.KindGrammar, "λύομεν", "we loose"))
	store.addProgress(models.CardProgress{UserID: 7, CardID: 8, ReviewState: models.ReviewState{
		Phase: models.PhaseReview, Due: studyNow.AddDate(0, 0, 3), Reps: 2,
	}})

	return store
}

func TestBuildDrillUsesOnlyGraduatedVocab(t *testing.T) {
	store := seedDrillStore(t)
	b := newTestBuilder(store, 0)

	drill, err := b.BuildDrill(7, 10)
	if err != nil {
		t.Fatalf("BuildDrill: %v", err)
	}

	if drill.Len() != 6 {
		t.Fatalf("Len = %d, want the 6 graduated vocab cards", drill.Len())
	}
	for _, q := range drill.Questions {
		if q.Card.Kind != models.KindVocab {
			t.Errorf("question over %v card %d, want vocab only", q.Card.Kind, q.Card.ID)
		}
		if q.Card.ID == 7 {
			t.Error("learning-phase card 7 made it into the drill")
		}
	}
}

func TestBuildDrillQuestionShape(t *testing.T) {
	store := seedDrillStore(t)
	b := newTestBuilder(store, 0)

	drill, err := b.BuildDrill(7, 4)
	if err != nil {
		t.Fatalf("BuildDrill: %v", err)
	}
	if drill.Len() != 4 {
		t.Fatalf("Len = %d, want the requested 4", drill.Len())
	}

	for _, q := range drill.Questions {
		if len(q.Options) != 4 {
			t.Errorf("card %d: %d options, want 4", q.Card.ID, len(q.Options))
		}
		if q.Answer < 0 || q.Answer >= len(q.Options) {
			t.Fatalf("card %d: answer index %d out of range", q.Card.ID, q.Answer)
		}
		if q.Options[q.Answer] != q.Card.Back {
			t.Errorf("card %d: options[%d] = %q, want the real gloss %q",
				q.Card.ID, q.Answer, q.Options[q.Answer], q.Card.Back)
		}

		occurrences := 0
		seen := make(map[string]bool)
		for _, opt := range q.Options {
			if opt == q.Card.Back {
				occurrences++
			}
			if seen[opt] {
				t.Errorf("card %d: duplicate option %q", q.Card.ID, opt)
			}
			seen[opt] = true
		}
		if occurrences != 1 {
			t.Errorf("card %d: correct answer appears %d times, want exactly once", q.Card.ID, occurrences)
		}
	}
}

func TestBuildDrillEmptyWithoutGraduatedVocab(t *testing.T) {
	store := newFakeStore(models.UserSettings{})
	store.addCard(card(1, 1, models.KindVocab, "λόγος", "word"))
	store.addProgress(models.CardProgress{UserID: 7, CardID: 1, ReviewState: models.ReviewState{
		Phase: models.PhaseLearning, Due: studyNow, Reps: 1,
	}})

	b := newTestBuilder(store, 0)
	drill, err := b.BuildDrill(7, 5)
	if err != nil {
		t.Fatalf("BuildDrill: %v", err)
	}
	if drill.Len() != 0 {
		t.Errorf("Len = %d, want 0 for a user with nothing drillable", drill.Len())
	}
}

func TestDrillWalkCountsCorrect(t *testing.T) {
	d := &Drill{Questions: []Question{
		{Card: card(1, 1, models.KindVocab, "a", "1"), Options: []string{"1", "2"}, Answer: 0},
		{Card: card(2, 1, models.KindVocab, "b", "2"), Options: []string{"1", "2"}, Answer: 1},
	}}

	q, ok := d.Current()
	if !ok || q.Card.ID != 1 {
		t.Fatalf("Current = %v, %v; want question 1", q, ok)
	}
	d.Correct++
	d.Advance()

	q, ok = d.Current()
	if !ok || q.Card.ID != 2 {
		t.Fatalf("Current = %v, %v; want question 2", q, ok)
	}
	d.Advance()
	if _, ok := d.Current(); ok {
		t.Error("Current ok after the last question")
	}
	if d.Correct != 1 {
		t.Errorf("Correct = %d, want 1", d.Correct)
	}
}
