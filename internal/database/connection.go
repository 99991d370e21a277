package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection shared by the repositories.
var DB *sqlx.DB

// Connect opens the database selected by DB_TYPE ("sqlite" by default,
// "postgres" with DATABASE_URL). For sqlite the schema is created when
// missing; a postgres database is expected to be migrated externally.
func Connect() error {
	switch os.Getenv("DB_TYPE") {
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_TYPE=postgres")
		}
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		DB = db
		return nil

	default:
		dbPath := os.Getenv("DB_PATH")
		if dbPath == "" {
			dbPath = filepath.Join("data", "greekify.db")
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err := sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to sqlite: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite does not support multiple writers.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		DB = db
		return initializeSchema()
	}
}

// Close closes the database connection.
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates the tables if they don't exist.
func initializeSchema() error {
	statements := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				telegram_id INTEGER PRIMARY KEY,
				username TEXT DEFAULT '',
				first_name TEXT DEFAULT '',
				last_name TEXT DEFAULT '',
				is_admin BOOLEAN DEFAULT false,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"user_settings", `
			CREATE TABLE IF NOT EXISTS user_settings (
				user_id INTEGER PRIMARY KEY,
				new_cards_per_day INTEGER DEFAULT 10,
				reminders_enabled BOOLEAN DEFAULT true,
				reminder_hour INTEGER DEFAULT 9,
				deck_id INTEGER DEFAULT 0,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(telegram_id)
			)
		`},
		{"decks", `
			CREATE TABLE IF NOT EXISTS decks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE,
				description TEXT DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"cards", `
			CREATE TABLE IF NOT EXISTS cards (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				deck_id INTEGER NOT NULL,
				kind TEXT NOT NULL DEFAULT 'vocab',
				front TEXT NOT NULL,
				back TEXT NOT NULL,
				transliteration TEXT DEFAULT '',
				notes TEXT DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (deck_id) REFERENCES decks(id),
				UNIQUE(deck_id, front)
			)
		`},
		{"card_progress", `
			CREATE TABLE IF NOT EXISTS card_progress (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				card_id INTEGER NOT NULL,
				phase TEXT NOT NULL DEFAULT 'new',
				due TIMESTAMP NOT NULL,
				interval INTEGER DEFAULT 0,
				ease_factor REAL DEFAULT 2.5,
				reps INTEGER DEFAULT 0,
				lapses INTEGER DEFAULT 0,
				last_review TIMESTAMP,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(telegram_id),
				FOREIGN KEY (card_id) REFERENCES cards(id),
				UNIQUE(user_id, card_id)
			)
		`},
		{"card_progress due index", `
			CREATE INDEX IF NOT EXISTS idx_card_progress_user_due
			ON card_progress(user_id, due)
		`},
		{"review_logs", `
			CREATE TABLE IF NOT EXISTS review_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				card_id INTEGER NOT NULL,
				quality INTEGER NOT NULL,
				interval_before INTEGER DEFAULT 0,
				interval_after INTEGER DEFAULT 0,
				ease_after REAL DEFAULT 2.5,
				learning BOOLEAN DEFAULT false,
				reviewed_at TIMESTAMP NOT NULL,
				FOREIGN KEY (user_id) REFERENCES users(telegram_id),
				FOREIGN KEY (card_id) REFERENCES cards(id)
			)
		`},
		{"drill_results", `
			CREATE TABLE IF NOT EXISTS drill_results (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				card_id INTEGER NOT NULL,
				correct BOOLEAN NOT NULL,
				answered_at TIMESTAMP NOT NULL,
				FOREIGN KEY (user_id) REFERENCES users(telegram_id),
				FOREIGN KEY (card_id) REFERENCES cards(id)
			)
		`},
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt.sql); err != nil {
			return fmt.Errorf("failed to create %s: %w", stmt.name, err)
		}
	}
	return nil
}
