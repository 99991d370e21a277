package spaced_repetition

import (
	"math"
	"sort"
	"time"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// Stability estimates, in days, how long a memory persists before decaying:
// longer intervals, higher ease and more successful reps raise it, lapses
// drag it down. Analytics-only; the transition function never reads it.
func Stability(st models.ReviewState) float64 {
	interval := float64(max(st.Interval, 0))
	ease := math.Max(st.EaseFactor, 0)
	reps := float64(max(st.Reps, 0))
	lapses := float64(max(st.Lapses, 0))
	return interval * 1.5 * (ease / 2.5) * math.Log2(reps+1) / (1 + lapses*0.3)
}

// Retention estimates the probability, in percent, that the item can still
// be recalled at now, using exponential decay over the stability estimate.
// Items never reviewed report 0. Clock skew (lastReview in the future)
// clamps elapsed time to zero instead of producing out-of-range values.
func Retention(st models.ReviewState, now time.Time) float64 {
	if st.LastReview == nil {
		return 0
	}
	elapsed := now.Sub(*st.LastReview)
	if elapsed < 0 {
		elapsed = 0
	}
	days := elapsed.Hours() / 24
	r := math.Exp(-days/math.Max(Stability(st), 0.1)) * 100
	return clampFloat(r, 0, 100)
}

// RankByRisk returns a copy of items ordered most-at-risk first (lowest
// estimated retention). Used by the stats view to suggest what to review.
func RankByRisk(items []models.CardProgress, now time.Time) []models.CardProgress {
	ranked := make([]models.CardProgress, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Retention(ranked[i].ReviewState, now) < Retention(ranked[j].ReviewState, now)
	})
	return ranked
}
