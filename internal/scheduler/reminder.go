// Package scheduler runs the periodic job that reminds users of due cards.
// It counts and notifies only; scheduling state is never touched here.
package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// Notifier delivers the due-count digest. The bot implements it.
type Notifier interface {
	SendDueReminder(userID int64, count int) error
}

// SettingsSource lists the users who opted into reminders.
type SettingsSource interface {
	GetWithRemindersEnabled() ([]models.UserSettings, error)
}

// DueCounter counts a user's due cards at a moment in time.
type DueCounter interface {
	CountDueByUser(userID int64, now time.Time) (int, error)
}

// Scheduler periodically checks every opted-in user and sends a digest at
// their configured hour.
type Scheduler struct {
	cron     *gocron.Scheduler
	notifier Notifier
	users    SettingsSource
	due      DueCounter
	interval time.Duration
	log      *logrus.Logger
	clock    func() time.Time
}

// New creates the reminder scheduler. interval <= 0 defaults to hourly,
// which matches the hour-granularity of the user setting.
func New(notifier Notifier, users SettingsSource, due DueCounter, interval time.Duration, log *logrus.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		cron:     gocron.NewScheduler(time.Local),
		notifier: notifier,
		users:    users,
		due:      due,
		interval: interval,
		log:      log,
		clock:    time.Now,
	}
}

// Start begins the periodic check in the background.
func (s *Scheduler) Start() {
	s.cron.Every(s.interval).Do(s.checkAndNotify)
	s.cron.StartAsync()
}

// Stop terminates the periodic check.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// checkAndNotify sends a digest to every opted-in user whose reminder hour
// is the current hour and who has at least one due card. Errors are logged
// and skipped so one broken user cannot stall the rest.
func (s *Scheduler) checkAndNotify() {
	now := s.clock()
	settings, err := s.users.GetWithRemindersEnabled()
	if err != nil {
		s.log.WithError(err).Error("reminder check: listing users failed")
		return
	}

	for _, st := range settings {
		if st.ReminderHour != now.Hour() {
			continue
		}
		count, err := s.due.CountDueByUser(st.UserID, now)
		if err != nil {
			s.log.WithError(err).WithField("user_id", st.UserID).Error("reminder check: due count failed")
			continue
		}
		if count == 0 {
			continue
		}
		if err := s.notifier.SendDueReminder(st.UserID, count); err != nil {
			s.log.WithError(err).WithField("user_id", st.UserID).Error("reminder check: send failed")
			continue
		}
		s.log.WithFields(logrus.Fields{"user_id": st.UserID, "due": count}).Info("sent due reminder")
	}
}

// RunNow checks a single user immediately, regardless of their configured
// hour. Nothing is sent when no cards are due.
func (s *Scheduler) RunNow(userID int64) error {
	count, err := s.due.CountDueByUser(userID, s.clock())
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	return s.notifier.SendDueReminder(userID, count)
}
