// Package spaced_repetition implements the scheduling engine that decides
// when each card should next be shown. It is pure computation over
// models.ReviewState: no I/O, no hidden clock, no mutation of its inputs.
// Callers read the wall clock and persist the replacement state themselves.
package spaced_repetition

import (
	"math"
	"time"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// graduatedReps is the reps count at which a card leaves the learning steps.
const graduatedReps = 2

// Config is an immutable tuning profile for the scheduler. Zero fields are
// filled from DefaultConfig by New, so a zero Config is usable. A zero
// DueHour means the default review hour, not midnight.
type Config struct {
	RelearnStep        time.Duration // delay after Again
	LearnStep          time.Duration // delay after the first successful exposure
	GraduatingInterval int           // days after completing the learning steps
	EasyInterval       int           // days when graduating with Easy
	SecondInterval     int           // days at the third success
	SecondEasyInterval int           // days at the third success rated Easy
	InitialEase        float64
	MinEase            float64
	MaxEase            float64
	LapsePenalty       float64 // ease lost on Again
	HardFactor         float64 // interval multiplier for Hard
	EasyBonus          float64 // interval multiplier for Easy
	MinInterval        int     // days
	MaxInterval        int     // days
	DueHour            int     // local hour graduated reviews are batched to
	LeechThreshold     int     // lapses at which a card is flagged
	LeechWarning       int     // lapses at which a soft warning starts
}

// DefaultConfig returns the standard tuning profile.
func DefaultConfig() Config {
	return Config{
		RelearnStep:        1 * time.Minute,
		LearnStep:          10 * time.Minute,
		GraduatingInterval: 1,
		EasyInterval:       4,
		SecondInterval:     3,
		SecondEasyInterval: 7,
		InitialEase:        2.5,
		MinEase:            1.3,
		MaxEase:            3.0,
		LapsePenalty:       0.2,
		HardFactor:         0.8,
		EasyBonus:          1.3,
		MinInterval:        1,
		MaxInterval:        365,
		DueHour:            4,
		LeechThreshold:     8,
		LeechWarning:       5,
	}
}

// Scheduler applies quality ratings to review states.
type Scheduler struct {
	cfg Config
}

// New builds a Scheduler, filling zero Config fields with defaults.
func New(cfg Config) *Scheduler {
	def := DefaultConfig()
	if cfg.RelearnStep <= 0 {
		cfg.RelearnStep = def.RelearnStep
	}
	if cfg.LearnStep <= 0 {
		cfg.LearnStep = def.LearnStep
	}
	if cfg.GraduatingInterval <= 0 {
		cfg.GraduatingInterval = def.GraduatingInterval
	}
	if cfg.EasyInterval <= 0 {
		cfg.EasyInterval = def.EasyInterval
	}
	if cfg.SecondInterval <= 0 {
		cfg.SecondInterval = def.SecondInterval
	}
	if cfg.SecondEasyInterval <= 0 {
		cfg.SecondEasyInterval = def.SecondEasyInterval
	}
	if cfg.InitialEase <= 0 {
		cfg.InitialEase = def.InitialEase
	}
	if cfg.MinEase <= 0 {
		cfg.MinEase = def.MinEase
	}
	if cfg.MaxEase <= cfg.MinEase {
		cfg.MaxEase = def.MaxEase
	}
	if cfg.LapsePenalty <= 0 {
		cfg.LapsePenalty = def.LapsePenalty
	}
	if cfg.HardFactor <= 0 {
		cfg.HardFactor = def.HardFactor
	}
	if cfg.EasyBonus <= 0 {
		cfg.EasyBonus = def.EasyBonus
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = def.MinInterval
	}
	if cfg.MaxInterval < cfg.MinInterval {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.DueHour <= 0 || cfg.DueHour > 23 {
		cfg.DueHour = def.DueHour
	}
	if cfg.LeechThreshold <= 0 {
		cfg.LeechThreshold = def.LeechThreshold
	}
	if cfg.LeechWarning <= 0 {
		cfg.LeechWarning = def.LeechWarning
	}
	return &Scheduler{cfg: cfg}
}

// Config returns the profile the scheduler runs with.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// NewState builds the scheduling state a card carries when it is first
// introduced to a user: immediately due, no history.
func (s *Scheduler) NewState(now time.Time) models.ReviewState {
	return models.ReviewState{
		Phase:      models.PhaseNew,
		Due:        now,
		Interval:   0,
		EaseFactor: s.cfg.InitialEase,
		Reps:       0,
		Lapses:     0,
	}
}

// ReviewResult is the outcome of applying one rating.
type ReviewResult struct {
	State    models.ReviewState
	Learning bool          // still inside the minute-granularity steps
	Delay    time.Duration // next presentation delay; set only while learning
}

// Review applies one quality rating to a state and returns the complete
// replacement state. The input is never mutated; the caller persists the
// result. now is the review moment (normally time.Now()).
func (s *Scheduler) Review(st models.ReviewState, q Quality, now time.Time) (ReviewResult, error) {
	if !q.IsValid() {
		return ReviewResult{}, ErrInvalidQuality
	}
	st = s.normalize(st)

	var res ReviewResult
	switch {
	case q == Again:
		// A failure always restarts the learning steps, whatever the phase.
		st.Lapses++
		st.Reps = 0
		st.Interval = 0
		st.EaseFactor = math.Max(s.cfg.MinEase, st.EaseFactor-s.cfg.LapsePenalty)
		st.Phase = models.PhaseLearning
		res.Learning = true
		res.Delay = s.cfg.RelearnStep

	case st.Reps < graduatedReps:
		// Learning steps. Ease factor is not touched here.
		switch {
		case q == Easy:
			// Fast-track: a known card graduates on the spot.
			st.Reps = graduatedReps
			st.Interval = s.cfg.EasyInterval
			st.Phase = models.PhaseReview
		case st.Reps == 0:
			st.Reps = 1
			st.Phase = models.PhaseLearning
			res.Learning = true
			res.Delay = s.cfg.LearnStep
		default:
			st.Reps = graduatedReps
			st.Interval = s.cfg.GraduatingInterval
			st.Phase = models.PhaseReview
		}

	default:
		// Graduated growth. The first two successes after graduation walk
		// fixed tables; afterwards the interval grows by the ease factor.
		// The tables are keyed on reps, so they run again after every
		// lapse-and-regraduation cycle.
		st.Reps++
		switch {
		case st.Reps == 2:
			if q == Easy {
				st.Interval = s.cfg.EasyInterval
			} else {
				st.Interval = s.cfg.GraduatingInterval
			}
		case st.Reps == 3:
			if q == Easy {
				st.Interval = s.cfg.SecondEasyInterval
			} else {
				st.Interval = s.cfg.SecondInterval
			}
		default:
			grown := math.Round(float64(st.Interval) * st.EaseFactor)
			switch q {
			case Hard:
				grown = math.Round(grown * s.cfg.HardFactor)
			case Easy:
				grown = math.Round(grown * s.cfg.EasyBonus)
			}
			st.Interval = int(grown)
		}
		st.Interval = clampInt(st.Interval, s.cfg.MinInterval, s.cfg.MaxInterval)
		// The interval above intentionally used the pre-update ease factor.
		st.EaseFactor = clampFloat(st.EaseFactor+easeDelta(q), s.cfg.MinEase, s.cfg.MaxEase)
		st.Phase = models.PhaseReview
	}

	if res.Learning {
		st.Due = now.Add(res.Delay)
	} else {
		st.Due = s.dueAt(now, st.Interval)
	}
	reviewed := now
	st.LastReview = &reviewed

	res.State = st
	return res, nil
}

// easeDelta is the ease-factor adjustment for a successful rating
// (q in Hard..Easy): -0.14 for Hard, 0 for Good, +0.1 for Easy.
func easeDelta(q Quality) float64 {
	d := float64(Easy - q)
	return 0.1 - d*(0.08+d*0.02)
}

// normalize clamps a stored state into legal ranges before use, so corrupt
// rows cannot push outputs further out of range.
func (s *Scheduler) normalize(st models.ReviewState) models.ReviewState {
	st.EaseFactor = clampFloat(st.EaseFactor, s.cfg.MinEase, s.cfg.MaxEase)
	if st.Reps < 0 {
		st.Reps = 0
	}
	if st.Lapses < 0 {
		st.Lapses = 0
	}
	if st.Interval < 0 {
		st.Interval = 0
	}
	return st
}

// dueAt places a graduated review `days` days out, batched to the
// configured local hour so each day's reviews arrive together.
func (s *Scheduler) dueAt(now time.Time, days int) time.Time {
	target := now.AddDate(0, 0, days)
	return time.Date(target.Year(), target.Month(), target.Day(), s.cfg.DueHour, 0, 0, 0, target.Location())
}

func clampFloat(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
