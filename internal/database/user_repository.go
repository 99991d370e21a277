package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// UserRepository handles database operations for users.
type UserRepository struct{}

// NewUserRepository creates a new repository instance.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// GetByID returns a user by Telegram ID, or (nil, nil) when unknown.
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	var user models.User
	err := DB.Get(&user, "SELECT * FROM users WHERE telegram_id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// GetAll returns all users, newest first.
func (r *UserRepository) GetAll() ([]models.User, error) {
	var users []models.User
	err := DB.Select(&users, "SELECT * FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// Upsert inserts the user or refreshes the profile fields Telegram sends
// with every update. The admin flag is set once at insert and preserved on
// conflict so /import rights survive profile changes.
func (r *UserRepository) Upsert(user *models.User) error {
	if isPostgres() {
		return DB.QueryRow(`
			INSERT INTO users (telegram_id, username, first_name, last_name, is_admin)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (telegram_id) DO UPDATE SET
				username = EXCLUDED.username,
				first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name,
				updated_at = NOW()
			RETURNING is_admin, created_at, updated_at
		`, user.ID, user.Username, user.FirstName, user.LastName, user.IsAdmin).
			Scan(&user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	}

	_, err := DB.Exec(`
		INSERT INTO users (telegram_id, username, first_name, last_name, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = $2,
			first_name = $3,
			last_name = $4,
			updated_at = CURRENT_TIMESTAMP
	`, user.ID, user.Username, user.FirstName, user.LastName, user.IsAdmin)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", user.ID, err)
	}
	return DB.QueryRow("SELECT is_admin, created_at, updated_at FROM users WHERE telegram_id = $1", user.ID).
		Scan(&user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
}

// SetAdmin flips the admin flag for a user.
func (r *UserRepository) SetAdmin(id int64, admin bool) error {
	_, err := DB.Exec("UPDATE users SET is_admin = $1, updated_at = CURRENT_TIMESTAMP WHERE telegram_id = $2", admin, id)
	if err != nil {
		return fmt.Errorf("failed to set admin flag for user %d: %w", id, err)
	}
	return nil
}

// GetWithRemindersEnabled returns the users whose settings have reminders
// switched on, together with their configured hour. The reminder job runs
// this once per check.
func (r *UserRepository) GetWithRemindersEnabled() ([]models.UserSettings, error) {
	var settings []models.UserSettings
	err := DB.Select(&settings, `
		SELECT s.* FROM user_settings s
		JOIN users u ON u.telegram_id = s.user_id
		WHERE s.reminders_enabled = true
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get users with reminders: %w", err)
	}
	return settings, nil
}

// Delete removes a user and everything recorded for them.
func (r *UserRepository) Delete(id int64) error {
	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	for _, q := range []string{
		"DELETE FROM card_progress WHERE user_id = $1",
		"DELETE FROM review_logs WHERE user_id = $1",
		"DELETE FROM drill_results WHERE user_id = $1",
		"DELETE FROM user_settings WHERE user_id = $1",
		"DELETE FROM users WHERE telegram_id = $1",
	} {
		if _, err := tx.Exec(q, id); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to delete user %d: %w", id, err)
		}
	}
	return tx.Commit()
}
