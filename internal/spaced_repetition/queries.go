package spaced_repetition

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// DueCards returns the items due at now, earliest first. The input slice is
// left untouched.
func DueCards(items []models.CardProgress, now time.Time) []models.CardProgress {
	due := lo.Filter(items, func(p models.CardProgress, _ int) bool {
		return !p.Due.After(now)
	})
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].Due.Before(due[j].Due)
	})
	return due
}

// NewCards returns the items that have never been reviewed.
func NewCards(items []models.CardProgress) []models.CardProgress {
	return lo.Filter(items, func(p models.CardProgress, _ int) bool {
		return p.Reps == 0 && p.Lapses == 0
	})
}

// LearningCards returns the items still inside the learning steps.
func LearningCards(items []models.CardProgress) []models.CardProgress {
	return lo.Filter(items, func(p models.CardProgress, _ int) bool {
		return p.Reps == 1
	})
}

// RetentionRate is the share of successful reviews across the set, in
// percent. Zero when the set has no review history at all.
func RetentionRate(items []models.CardProgress) float64 {
	reps := lo.SumBy(items, func(p models.CardProgress) int { return p.Reps })
	lapses := lo.SumBy(items, func(p models.CardProgress) int { return p.Lapses })
	if reps+lapses == 0 {
		return 0
	}
	return float64(reps) / float64(reps+lapses) * 100
}

// ForecastDay is one day of a review-load forecast.
type ForecastDay struct {
	Day   time.Time
	Count int
}

// Forecast buckets items by the calendar day their due falls on, for a
// horizon of `days` days starting today. Days without due items report 0;
// items already overdue count toward today.
func Forecast(items []models.CardProgress, now time.Time, days int) []ForecastDay {
	if days <= 0 {
		return nil
	}
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	out := make([]ForecastDay, days)
	for i := range out {
		out[i].Day = today.AddDate(0, 0, i)
	}
	for _, p := range items {
		d := p.Due.In(loc)
		dueDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
		// Rounding absorbs DST days that are not exactly 24h long.
		idx := int(math.Round(dueDay.Sub(today).Hours() / 24))
		if idx < 0 {
			idx = 0
		}
		if idx >= days {
			continue
		}
		out[idx].Count++
	}
	return out
}
