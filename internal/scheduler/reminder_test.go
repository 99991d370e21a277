package scheduler

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

type fakeNotifier struct {
	sent map[int64]int
	err  error
}

func (f *fakeNotifier) SendDueReminder(userID int64, count int) error {
	if f.err != nil {
		return f.err
	}
	if f.sent == nil {
		f.sent = make(map[int64]int)
	}
	f.sent[userID] = count
	return nil
}

type fakeSettingsSource struct {
	settings []models.UserSettings
	err      error
}

func (f *fakeSettingsSource) GetWithRemindersEnabled() ([]models.UserSettings, error) {
	return f.settings, f.err
}

type fakeDueCounter struct {
	counts map[int64]int
	err    error
}

func (f *fakeDueCounter) CountDueByUser(userID int64, _ time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[userID], nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// checkNow is 14:05 local; user hours around it exercise the hour match.
var checkNow = time.Date(2026, time.May, 4, 14, 5, 0, 0, time.UTC)

func newTestScheduler(n Notifier, u SettingsSource, d DueCounter) *Scheduler {
	s := New(n, u, d, time.Hour, quietLogger())
	s.clock = func() time.Time { return checkNow }
	return s
}

func TestCheckNotifiesOnlyMatchingHourWithDueCards(t *testing.T) {
	notifier := &fakeNotifier{}
	users := &fakeSettingsSource{settings: []models.UserSettings{
		{UserID: 1, ReminderHour: 14, RemindersEnabled: true}, // matches, has due
		{UserID: 2, ReminderHour: 9, RemindersEnabled: true},  // wrong hour
		{UserID: 3, ReminderHour: 14, RemindersEnabled: true}, // matches, nothing due
	}}
	due := &fakeDueCounter{counts: map[int64]int{1: 12, 2: 30, 3: 0}}

	s := newTestScheduler(notifier, users, due)
	s.checkAndNotify()

	if len(notifier.sent) != 1 {
		t.Fatalf("sent to %d users, want 1: %v", len(notifier.sent), notifier.sent)
	}
	if notifier.sent[1] != 12 {
		t.Errorf("user 1 digest = %d, want 12", notifier.sent[1])
	}
}

func TestCheckContinuesPastBrokenUser(t *testing.T) {
	notifier := &fakeNotifier{}
	users := &fakeSettingsSource{settings: []models.UserSettings{
		{UserID: 1, ReminderHour: 14},
		{UserID: 2, ReminderHour: 14},
	}}
	// User 1's count fails; user 2 must still be notified.
	due := &countByUser{counts: map[int64]int{2: 5}, failFor: 1}

	s := newTestScheduler(notifier, users, due)
	s.checkAndNotify()

	if notifier.sent[2] != 5 {
		t.Errorf("user 2 digest = %d, want 5 despite user 1 failing", notifier.sent[2])
	}
}

type countByUser struct {
	counts  map[int64]int
	failFor int64
}

func (c *countByUser) CountDueByUser(userID int64, _ time.Time) (int, error) {
	if userID == c.failFor {
		return 0, errors.New("boom")
	}
	return c.counts[userID], nil
}

func TestRunNowIgnoresConfiguredHour(t *testing.T) {
	notifier := &fakeNotifier{}
	due := &fakeDueCounter{counts: map[int64]int{9: 3}}

	s := newTestScheduler(notifier, &fakeSettingsSource{}, due)
	if err := s.RunNow(9); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if notifier.sent[9] != 3 {
		t.Errorf("digest = %d, want 3", notifier.sent[9])
	}
}

func TestRunNowSkipsWhenNothingDue(t *testing.T) {
	notifier := &fakeNotifier{}
	due := &fakeDueCounter{counts: map[int64]int{}}

	s := newTestScheduler(notifier, &fakeSettingsSource{}, due)
	if err := s.RunNow(9); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("sent %v, want nothing for a user with no due cards", notifier.sent)
	}
}
