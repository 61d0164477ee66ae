package models

import "time"

// User represents an account that owns habits. Registration and
// authentication live outside this service; only the fields the reminder
// pipeline needs are modeled here.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserProfile is the one-to-one Telegram extension of a user. A user without
// a profile, or with a profile whose TelegramID is empty, simply has no
// notification destination.
type UserProfile struct {
	UserID           int64  `json:"user_id" db:"user_id"`
	TelegramID       string `json:"telegram_id" db:"telegram_id"`
	TelegramUsername string `json:"telegram_username" db:"telegram_username"`
}
