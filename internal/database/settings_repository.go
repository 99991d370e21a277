package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// Defaults applied when a user has no settings row yet.
const (
	DefaultNewCardsPerDay = 10
	DefaultReminderHour   = 9
)

// SettingsRepository handles database operations for per-user study
// preferences.
type SettingsRepository struct{}

// NewSettingsRepository creates a new repository instance.
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

// Get returns the user's settings, falling back to defaults when the user
// has never changed anything. The defaults are not persisted until the
// first explicit update.
func (r *SettingsRepository) Get(userID int64) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := DB.Get(&settings, "SELECT * FROM user_settings WHERE user_id = $1", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.UserSettings{
			UserID:           userID,
			NewCardsPerDay:   DefaultNewCardsPerDay,
			RemindersEnabled: true,
			ReminderHour:     DefaultReminderHour,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings for user %d: %w", userID, err)
	}
	return &settings, nil
}

// Save upserts the user's settings row.
func (r *SettingsRepository) Save(settings *models.UserSettings) error {
	if isPostgres() {
		return DB.QueryRow(`
			INSERT INTO user_settings (user_id, new_cards_per_day, reminders_enabled, reminder_hour, deck_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id) DO UPDATE SET
				new_cards_per_day = EXCLUDED.new_cards_per_day,
				reminders_enabled = EXCLUDED.reminders_enabled,
				reminder_hour = EXCLUDED.reminder_hour,
				deck_id = EXCLUDED.deck_id,
				updated_at = NOW()
			RETURNING updated_at
		`, settings.UserID, settings.NewCardsPerDay, settings.RemindersEnabled,
			settings.ReminderHour, settings.DeckID).
			Scan(&settings.UpdatedAt)
	}

	_, err := DB.Exec(`
		INSERT INTO user_settings (user_id, new_cards_per_day, reminders_enabled, reminder_hour, deck_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			new_cards_per_day = $2,
			reminders_enabled = $3,
			reminder_hour = $4,
			deck_id = $5,
			updated_at = CURRENT_TIMESTAMP
	`, settings.UserID, settings.NewCardsPerDay, settings.RemindersEnabled,
		settings.ReminderHour, settings.DeckID)
	if err != nil {
		return fmt.Errorf("failed to save settings for user %d: %w", settings.UserID, err)
	}
	return DB.QueryRow("SELECT updated_at FROM user_settings WHERE user_id = $1", settings.UserID).
		Scan(&settings.UpdatedAt)
}
