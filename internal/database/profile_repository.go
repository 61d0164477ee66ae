package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/habitbot/pkg/models"
)

// ProfileRepository handles database operations for the one-to-one Telegram
// profiles. Profiles are created and edited through the bot's account
// surface, never by the habit CRUD paths.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new repository instance.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID returns the profile for a user, or ErrNotFound when none has
// been created. Callers that only need a destination should treat both
// ErrNotFound and an empty TelegramID as "no destination".
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error) {
	query := r.db.Rebind("SELECT user_id, telegram_id, telegram_username FROM user_profiles WHERE user_id = ?")
	var profile models.UserProfile
	err := r.db.GetContext(ctx, &profile, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %v", err)
	}
	return &profile, nil
}

// GetByTelegramID returns the profile attached to a Telegram chat, or
// ErrNotFound when no account is linked to it.
func (r *ProfileRepository) GetByTelegramID(ctx context.Context, telegramID string) (*models.UserProfile, error) {
	query := r.db.Rebind("SELECT user_id, telegram_id, telegram_username FROM user_profiles WHERE telegram_id = ?")
	var profile models.UserProfile
	err := r.db.GetContext(ctx, &profile, query, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %v", err)
	}
	return &profile, nil
}

// Upsert creates the profile row or updates it in place.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.UserProfile) error {
	query := r.db.Rebind(`
		INSERT INTO user_profiles (user_id, telegram_id, telegram_username)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			telegram_id = excluded.telegram_id,
			telegram_username = excluded.telegram_username
	`)
	if _, err := r.db.ExecContext(ctx, query, profile.UserID, profile.TelegramID, profile.TelegramUsername); err != nil {
		return fmt.Errorf("failed to upsert profile: %v", err)
	}
	return nil
}

// Delete removes a user's profile.
func (r *ProfileRepository) Delete(ctx context.Context, userID int64) error {
	query := r.db.Rebind("DELETE FROM user_profiles WHERE user_id = ?")
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
