package spaced_repetition

import (
	"github.com/samber/lo"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// LeechLevel grades how chronically difficult an item has proven to be.
// Leeches keep being scheduled normally; the level only drives warnings.
type LeechLevel int

const (
	LeechNone LeechLevel = iota
	LeechWarning
	LeechFlagged
)

func (l LeechLevel) String() string {
	switch l {
	case LeechWarning:
		return "warning"
	case LeechFlagged:
		return "leech"
	default:
		return "none"
	}
}

// LeechLevel reports the advisory leech grade for st, based on its lifetime
// lapse count and the configured thresholds.
func (s *Scheduler) LeechLevel(st models.ReviewState) LeechLevel {
	switch {
	case st.Lapses >= s.cfg.LeechThreshold:
		return LeechFlagged
	case st.Lapses >= s.cfg.LeechWarning:
		return LeechWarning
	default:
		return LeechNone
	}
}

// Leeches returns the items whose lapse count meets threshold.
func Leeches(items []models.CardProgress, threshold int) []models.CardProgress {
	return lo.Filter(items, func(p models.CardProgress, _ int) bool {
		return p.Lapses >= threshold
	})
}
