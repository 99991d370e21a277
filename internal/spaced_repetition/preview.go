package spaced_repetition

import (
	"fmt"
	"math"
	"time"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// Preview returns, for each of the four ratings, the human-readable delay
// or interval that rating would produce for st. It runs the transition once
// per rating against the same input and never mutates stored state, so the
// review keyboard can show "Again 1m / Hard 10m / Good 10m / Easy 4d"
// before the learner commits.
func (s *Scheduler) Preview(st models.ReviewState, now time.Time) map[Quality]string {
	out := make(map[Quality]string, 4)
	for _, q := range []Quality{Again, Hard, Good, Easy} {
		res, err := s.Review(st, q, now)
		if err != nil {
			continue // not reachable: the four constants are all valid
		}
		if res.Learning {
			out[q] = FormatDelay(res.Delay)
		} else {
			out[q] = FormatDays(res.State.Interval)
		}
	}
	return out
}

// FormatDelay renders a learning-step delay: "1m", "10m", "1.5h".
func FormatDelay(d time.Duration) string {
	if d < time.Hour {
		m := int(math.Round(d.Minutes()))
		if m < 1 {
			m = 1
		}
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

// FormatDays renders a graduated interval: "3d", "1.1mo", "1.2y".
func FormatDays(days int) string {
	switch {
	case days < 30:
		return fmt.Sprintf("%dd", days)
	case days < 365:
		return fmt.Sprintf("%.1fmo", float64(days)/30)
	default:
		return fmt.Sprintf("%.1fy", float64(days)/365)
	}
}
