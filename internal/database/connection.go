package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a requested row is absent or not visible to
// the requester. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("not found")

// DB is the global database connection, set by Connect. Repositories take
// the handle explicitly; the global exists for the process-wide lifecycle
// in main.
var DB *sqlx.DB

// Connect opens the database and initializes the schema. databaseURL selects
// PostgreSQL when non-empty; otherwise a SQLite file under dataDir is used.
func Connect(databaseURL, dataDir string) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	if databaseURL != "" {
		db, err = sqlx.Connect("postgres", databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %v", err)
		}
	} else {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %v", err)
		}
		dbPath := filepath.Join(dataDir, "habitbot.db")
		db, err = sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to sqlite: %v", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
		}
	}

	if err := InitializeSchema(db); err != nil {
		return nil, err
	}

	DB = db
	return db, nil
}

// Close closes the global database connection.
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// InitializeSchema creates the tables if they don't exist. Deleting a user
// cascades to their habits and profile; deleting a habit nulls out weak
// references to it from other habits and removes its reminder log entries.
func InitializeSchema(db *sqlx.DB) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "postgres" {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id ` + idColumn + `,
			username TEXT UNIQUE NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_profiles (
			user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			telegram_id TEXT NOT NULL DEFAULT '',
			telegram_username TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS habits (
			id ` + idColumn + `,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			place TEXT,
			notify_time TEXT NOT NULL,
			action TEXT NOT NULL,
			is_pleasant BOOLEAN NOT NULL DEFAULT false,
			related_habit_id INTEGER REFERENCES habits(id) ON DELETE SET NULL,
			frequency INTEGER NOT NULL DEFAULT 1,
			reward TEXT,
			duration INTEGER NOT NULL,
			is_public BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_habits_notify_time ON habits(notify_time)`,
		`CREATE TABLE IF NOT EXISTS reminder_log (
			habit_id INTEGER NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
			sent_on TEXT NOT NULL,
			UNIQUE(habit_id, sent_on)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}

	return nil
}
