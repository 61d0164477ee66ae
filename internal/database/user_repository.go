package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/habitbot/pkg/models"
)

// UserRepository handles database operations for users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now().UTC()

	if r.db.DriverName() == "postgres" {
		query := r.db.Rebind("INSERT INTO users (username, is_active, created_at) VALUES (?, ?, ?) RETURNING id")
		if err := r.db.QueryRowContext(ctx, query, user.Username, user.IsActive, user.CreatedAt).Scan(&user.ID); err != nil {
			return fmt.Errorf("failed to create user: %v", err)
		}
		return nil
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, is_active, created_at) VALUES (?, ?, ?)",
		user.Username, user.IsActive, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	user.ID = id
	return nil
}

// GetByID returns a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := r.db.Rebind("SELECT id, username, is_active, created_at FROM users WHERE id = ?")
	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return &user, nil
}

// GetByUsername returns a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := r.db.Rebind("SELECT id, username, is_active, created_at FROM users WHERE username = ?")
	var user models.User
	err := r.db.GetContext(ctx, &user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return &user, nil
}

// GetActiveUsers returns all non-deactivated users.
func (r *UserRepository) GetActiveUsers(ctx context.Context) ([]models.User, error) {
	query := r.db.Rebind("SELECT id, username, is_active, created_at FROM users WHERE is_active = ? ORDER BY id")
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, true); err != nil {
		return nil, fmt.Errorf("failed to get active users: %v", err)
	}
	return users, nil
}

// Delete removes a user. Their habits and profile go with them.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind("DELETE FROM users WHERE id = ?")
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
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
