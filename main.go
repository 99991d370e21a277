package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/romain-girardi-eng/greekify-app-sub000/internal/bot"
	"github.com/romain-girardi-eng/greekify-app-sub000/internal/database"
	"github.com/romain-girardi-eng/greekify-app-sub000/internal/scheduler"
	"github.com/romain-girardi-eng/greekify-app-sub000/internal/spaced_repetition"
)

func main() {
	// .env is a convenience for local runs; deployments set the
	// environment directly.
	_ = godotenv.Load()

	log := newLogger()

	if err := database.Connect(); err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer database.Close()

	core := spaced_repetition.New(spaced_repetition.DefaultConfig())

	b, err := bot.New(bot.Config{
		Token:        os.Getenv("TELEGRAM_TOKEN"),
		AdminID:      envInt64("ADMIN_TELEGRAM_ID", 0),
		ReviewLimit:  envInt("REVIEW_LIMIT", 0),
		DrillSize:    envInt("DRILL_SIZE", 0),
		ForecastDays: envInt("FORECAST_DAYS", 0),
	}, core, log)
	if err != nil {
		log.WithError(err).Fatal("bot setup failed")
	}

	reminders := scheduler.New(
		b,
		database.NewUserRepository(),
		database.NewProgressRepository(),
		time.Duration(envInt("REMINDER_CHECK_MINUTES", 60))*time.Minute,
		log,
	)
	reminders.Start()
	defer reminders.Stop()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		b.Stop()
	}()

	log.Info("starting greekify bot")
	if err := b.Start(); err != nil {
		log.WithError(err).Fatal("bot exited with error")
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
	return log
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
