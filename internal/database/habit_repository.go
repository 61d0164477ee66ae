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

const habitColumns = "id, user_id, place, notify_time, action, is_pleasant, related_habit_id, frequency, reward, duration, is_public, created_at"

// HabitRepository handles database operations for habits.
type HabitRepository struct {
	db *sqlx.DB
}

// NewHabitRepository creates a new repository instance.
func NewHabitRepository(db *sqlx.DB) *HabitRepository {
	return &HabitRepository{db: db}
}

// Create validates and inserts a new habit. Validation and the insert run in
// one transaction so the related habit's pleasant flag cannot change between
// the check and the write.
func (r *HabitRepository) Create(ctx context.Context, h *models.Habit) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if err := r.validate(ctx, tx, h); err != nil {
		return err
	}

	h.CreatedAt = time.Now().UTC()

	if r.db.DriverName() == "postgres" {
		query := tx.Rebind(`
			INSERT INTO habits (user_id, place, notify_time, action, is_pleasant, related_habit_id, frequency, reward, duration, is_public, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id
		`)
		if err := tx.QueryRowContext(ctx, query,
			h.UserID, h.Place, h.Time, h.Action, h.IsPleasant, h.RelatedHabitID,
			h.Frequency, h.Reward, h.Duration, h.IsPublic, h.CreatedAt,
		).Scan(&h.ID); err != nil {
			return fmt.Errorf("failed to create habit: %v", err)
		}
	} else {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO habits (user_id, place, notify_time, action, is_pleasant, related_habit_id, frequency, reward, duration, is_public, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			h.UserID, h.Place, h.Time, h.Action, h.IsPleasant, h.RelatedHabitID,
			h.Frequency, h.Reward, h.Duration, h.IsPublic, h.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create habit: %v", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %v", err)
		}
		h.ID = id
	}

	return tx.Commit()
}

// Update validates and modifies an existing habit. Only the owner's row is
// touched; a non-owner request reports not found.
func (r *HabitRepository) Update(ctx context.Context, h *models.Habit) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if err := r.validate(ctx, tx, h); err != nil {
		return err
	}

	query := tx.Rebind(`
		UPDATE habits SET
			place = ?,
			notify_time = ?,
			action = ?,
			is_pleasant = ?,
			related_habit_id = ?,
			frequency = ?,
			reward = ?,
			duration = ?,
			is_public = ?
		WHERE id = ? AND user_id = ?
	`)
	result, err := tx.ExecContext(ctx, query,
		h.Place, h.Time, h.Action, h.IsPleasant, h.RelatedHabitID,
		h.Frequency, h.Reward, h.Duration, h.IsPublic,
		h.ID, h.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update habit: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// Delete removes a habit owned by requesterID. Weak references from other
// habits are nulled out by the schema, never cascaded.
func (r *HabitRepository) Delete(ctx context.Context, id, requesterID int64) error {
	query := r.db.Rebind("DELETE FROM habits WHERE id = ? AND user_id = ?")
	result, err := r.db.ExecContext(ctx, query, id, requesterID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %v", err)
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

// GetByID returns a habit by ID regardless of visibility; callers enforce
// scoping.
func (r *HabitRepository) GetByID(ctx context.Context, id int64) (*models.Habit, error) {
	return r.get(ctx, r.db, id)
}

// FindDue returns the habits whose trigger time equals (hour, minute)
// exactly, restricted to active owners. This is the due-set snapshot for one
// scheduler tick.
func (r *HabitRepository) FindDue(ctx context.Context, hour, minute int) ([]models.Habit, error) {
	query := r.db.Rebind(`
		SELECT h.id, h.user_id, h.place, h.notify_time, h.action, h.is_pleasant, h.related_habit_id, h.frequency, h.reward, h.duration, h.is_public, h.created_at
		FROM habits h
		JOIN users u ON u.id = h.user_id
		WHERE h.notify_time = ? AND u.is_active = ?
		ORDER BY h.id
	`)
	var habits []models.Habit
	err := r.db.SelectContext(ctx, &habits, query, models.NewTimeOfDay(hour, minute), true)
	if err != nil {
		return nil, fmt.Errorf("failed to find due habits: %v", err)
	}
	return habits, nil
}

// FindByOwnerOrPublic returns the habits visible to ownerID: their own plus
// everyone's public ones.
func (r *HabitRepository) FindByOwnerOrPublic(ctx context.Context, ownerID int64) ([]models.Habit, error) {
	query := r.db.Rebind(`
		SELECT ` + habitColumns + ` FROM habits
		WHERE user_id = ? OR is_public = ?
		ORDER BY created_at DESC, id DESC
	`)
	var habits []models.Habit
	err := r.db.SelectContext(ctx, &habits, query, ownerID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %v", err)
	}
	return habits, nil
}

// GetAll returns every habit, newest first. Used by the admin export.
func (r *HabitRepository) GetAll(ctx context.Context) ([]models.Habit, error) {
	var habits []models.Habit
	err := r.db.SelectContext(ctx, &habits,
		"SELECT "+habitColumns+" FROM habits ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to get habits: %v", err)
	}
	return habits, nil
}

// CountCreatedSince returns how many habits ownerID created at or after
// since.
func (r *HabitRepository) CountCreatedSince(ctx context.Context, ownerID int64, since time.Time) (int, error) {
	query := r.db.Rebind("SELECT COUNT(*) FROM habits WHERE user_id = ? AND created_at >= ?")
	var count int
	err := r.db.GetContext(ctx, &count, query, ownerID, since.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to count habits: %v", err)
	}
	return count, nil
}

// ClaimReminder records that a reminder for habitID went out on day
// (formatted YYYY-MM-DD) and reports whether this call made the claim. A
// false result means the habit was already handled today and must not be
// sent again.
func (r *HabitRepository) ClaimReminder(ctx context.Context, habitID int64, day string) (bool, error) {
	query := r.db.Rebind(`
		INSERT INTO reminder_log (habit_id, sent_on) VALUES (?, ?)
		ON CONFLICT (habit_id, sent_on) DO NOTHING
	`)
	result, err := r.db.ExecContext(ctx, query, habitID, day)
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %v", err)
	}
	return rows > 0, nil
}

// validate runs the structural checks against the habit, resolving the
// related habit inside the same transaction as the pending write.
func (r *HabitRepository) validate(ctx context.Context, tx *sqlx.Tx, h *models.Habit) error {
	var related *models.Habit
	if h.HasRelated() {
		var err error
		related, err = r.get(ctx, tx, h.RelatedHabitID.Int64)
		if err != nil {
			return err
		}
	}
	return models.Validate(h, related)
}

func (r *HabitRepository) get(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Habit, error) {
	query := r.db.Rebind("SELECT " + habitColumns + " FROM habits WHERE id = ?")
	var h models.Habit
	err := sqlx.GetContext(ctx, q, &h, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %v", err)
	}
	return &h, nil
}
