package spaced_repetition

import (
	"reflect"
	"testing"
	"time"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

func TestPreviewNewCard(t *testing.T) {
	s := New(Config{})
	st := s.NewState(t0)

	got := s.Preview(st, t0)
	want := map[Quality]string{
		Again: "1m",
		Hard:  "10m", // first exposure: Hard and Good both go to the second step
		Good:  "10m",
		Easy:  "4d",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Preview = %v, want %v", got, want)
	}
}

func TestPreviewMatureCard(t *testing.T) {
	s := New(Config{})
	st := models.ReviewState{
		Phase:      models.PhaseReview,
		Due:        t0,
		Interval:   10,
		EaseFactor: 2.5,
		Reps:       4,
	}

	got := s.Preview(st, t0)
	want := map[Quality]string{
		Again: "1m",
		Hard:  "20d",
		Good:  "25d",
		Easy:  "1.1mo", // 33 days
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Preview = %v, want %v", got, want)
	}
}

func TestPreviewIsIdempotentAndPure(t *testing.T) {
	s := New(Config{})
	st := models.ReviewState{
		Phase:      models.PhaseReview,
		Due:        t0,
		Interval:   12,
		EaseFactor: 2.1,
		Reps:       3,
		Lapses:     2,
	}
	before := st

	first := s.Preview(st, t0)
	second := s.Preview(st, t0)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("two previews differ: %v vs %v", first, second)
	}
	if st != before {
		t.Errorf("preview mutated its input: %+v -> %+v", before, st)
	}
}

func TestFormatDelay(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{time.Minute, "1m"},
		{10 * time.Minute, "10m"},
		{59 * time.Minute, "59m"},
		{90 * time.Minute, "1.5h"},
		{30 * time.Second, "1m"}, // sub-minute rounds up to the floor of 1m
	}
	for _, tt := range tests {
		if got := FormatDelay(tt.d); got != tt.want {
			t.Errorf("FormatDelay(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatDays(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{1, "1d"},
		{29, "29d"},
		{30, "1.0mo"},
		{33, "1.1mo"},
		{180, "6.0mo"},
		{364, "12.1mo"},
		{365, "1.0y"},
		{550, "1.5y"},
	}
	for _, tt := range tests {
		if got := FormatDays(tt.days); got != tt.want {
			t.Errorf("FormatDays(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}
