package spaced_repetition

import (
	"errors"
	"fmt"
	"strings"
)

// Quality is the learner's self-assessment of one recall attempt.
type Quality int

const (
	// Again means recall failed; the card restarts its learning steps.
	Again Quality = iota + 1
	// Hard means recall succeeded with significant effort.
	Hard
	// Good means recall succeeded normally.
	Good
	// Easy means recall was effortless.
	Easy
)

// ErrInvalidQuality is returned when a rating outside Again..Easy reaches
// the scheduler. Ratings are validated, never coerced.
var ErrInvalidQuality = errors.New("spaced_repetition: invalid quality rating")

// IsValid reports whether q is one of the four recognized ratings.
func (q Quality) IsValid() bool {
	return q >= Again && q <= Easy
}

func (q Quality) String() string {
	switch q {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	default:
		return fmt.Sprintf("quality(%d)", int(q))
	}
}

// ParseQuality converts callback payloads ("1".."4" or the rating names)
// into a Quality.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "again":
		return Again, nil
	case "2", "hard":
		return Hard, nil
	case "3", "good":
		return Good, nil
	case "4", "easy":
		return Easy, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidQuality, s)
}

var _ fmt.Stringer = Quality(0)
