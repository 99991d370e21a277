package spaced_repetition

import (
	"math"
	"testing"
	"time"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

func TestStability(t *testing.T) {
	tests := []struct {
		name string
		st   models.ReviewState
		want float64
	}{
		{
			"settled card",
			models.ReviewState{Interval: 10, EaseFactor: 2.5, Reps: 4},
			// 10 * 1.5 * (2.5/2.5) * log2(5) / 1
			15 * math.Log2(5),
		},
		{
			"lapses drag it down",
			models.ReviewState{Interval: 10, EaseFactor: 2.5, Reps: 4, Lapses: 2},
			15 * math.Log2(5) / 1.6,
		},
		{
			"unreviewed card has no stability",
			models.ReviewState{Interval: 0, EaseFactor: 2.5, Reps: 0},
			0,
		},
		{
			"negative counters read as zero",
			models.ReviewState{Interval: -4, EaseFactor: 2.5, Reps: -1, Lapses: -2},
			0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stability(tt.st); !almostEqual(got, tt.want) {
				t.Errorf("Stability = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetention(t *testing.T) {
	reviewed := t0
	st := models.ReviewState{
		Interval:   10,
		EaseFactor: 2.5,
		Reps:       4,
		LastReview: &reviewed,
	}

	t.Run("just reviewed", func(t *testing.T) {
		if got := Retention(st, t0); !almostEqual(got, 100) {
			t.Errorf("Retention = %v, want 100", got)
		}
	})

	t.Run("one stability later", func(t *testing.T) {
		later := t0.Add(time.Duration(Stability(st) * 24 * float64(time.Hour)))
		got := Retention(st, later)
		want := math.Exp(-1) * 100
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("Retention = %v, want %v", got, want)
		}
	})

	t.Run("never reviewed", func(t *testing.T) {
		if got := Retention(models.ReviewState{EaseFactor: 2.5}, t0); got != 0 {
			t.Errorf("Retention = %v, want 0", got)
		}
	})

	t.Run("clock skew clamps to now", func(t *testing.T) {
		future := t0.Add(2 * time.Hour)
		skewed := st
		skewed.LastReview = &future
		if got := Retention(skewed, t0); !almostEqual(got, 100) {
			t.Errorf("Retention = %v, want 100 when lastReview is in the future", got)
		}
	})

	t.Run("always within bounds", func(t *testing.T) {
		states := []models.ReviewState{
			{Interval: 1, EaseFactor: 1.3, Reps: 2, Lapses: 9, LastReview: &reviewed},
			{Interval: 365, EaseFactor: 3.0, Reps: 40, LastReview: &reviewed},
			{Interval: 0, EaseFactor: 2.5, Reps: 0, Lapses: 0, LastReview: &reviewed},
		}
		for _, s := range states {
			for _, at := range []time.Time{t0, t0.AddDate(0, 0, 1), t0.AddDate(2, 0, 0)} {
				got := Retention(s, at)
				if got < 0 || got > 100 {
					t.Errorf("Retention(%+v at %v) = %v, out of [0,100]", s, at, got)
				}
			}
		}
	})
}

func TestRankByRisk(t *testing.T) {
	fresh := t0
	old := t0.AddDate(0, 0, -60)

	items := []models.CardProgress{
		prog(1, models.ReviewState{Interval: 10, EaseFactor: 2.5, Reps: 4, LastReview: &fresh}),
		prog(2, models.ReviewState{Interval: 10, EaseFactor: 2.5, Reps: 4, LastReview: &old}),
		prog(3, models.ReviewState{EaseFactor: 2.5}), // never reviewed: retention 0
	}

	ranked := RankByRisk(items, t0)

	wantOrder := []int64{3, 2, 1}
	for i, id := range wantOrder {
		if ranked[i].ID != id {
			t.Errorf("ranked[%d].ID = %d, want %d", i, ranked[i].ID, id)
		}
	}
	// The input keeps its order; ranking works on a copy.
	if items[0].ID != 1 || items[2].ID != 3 {
		t.Error("input slice was reordered")
	}
}
