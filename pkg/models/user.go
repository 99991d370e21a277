package models

import "time"

// User represents a Telegram user studying with the bot.
type User struct {
	ID        int64     `json:"id" db:"telegram_id"` // Telegram user ID
	Username  string    `json:"username" db:"username"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserSettings holds per-user study preferences.
type UserSettings struct {
	UserID           int64     `json:"user_id" db:"user_id"`
	NewCardsPerDay   int       `json:"new_cards_per_day" db:"new_cards_per_day"`
	RemindersEnabled bool      `json:"reminders_enabled" db:"reminders_enabled"`
	ReminderHour     int       `json:"reminder_hour" db:"reminder_hour"` // hour of day, 0-23
	DeckID           int64     `json:"deck_id" db:"deck_id"`             // 0 = study all decks
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
