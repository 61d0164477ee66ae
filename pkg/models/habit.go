package models

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"
)

// Habit represents a recurring intention: an action performed at a place and
// time, optionally paired with a reward or a linked pleasant habit.
type Habit struct {
	ID             int64          `json:"id" db:"id"`
	UserID         int64          `json:"user_id" db:"user_id"` // Owner, assigned server-side
	Place          sql.NullString `json:"place" db:"place"`
	Time           TimeOfDay      `json:"time" db:"notify_time"` // Daily trigger instant
	Action         string         `json:"action" db:"action"`
	IsPleasant     bool           `json:"is_pleasant" db:"is_pleasant"`
	RelatedHabitID sql.NullInt64  `json:"related_habit_id" db:"related_habit_id"` // Weak reference, nulled on delete
	Frequency      int            `json:"frequency" db:"frequency"`               // Days between repetitions (1-7)
	Reward         sql.NullString `json:"reward" db:"reward"`
	Duration       int            `json:"duration" db:"duration"` // Minutes, at most 2
	IsPublic       bool           `json:"is_public" db:"is_public"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// HasReward reports whether the habit carries a non-empty reward.
func (h *Habit) HasReward() bool {
	return h.Reward.Valid && h.Reward.String != ""
}

// HasRelated reports whether the habit references another habit.
func (h *Habit) HasRelated() bool {
	return h.RelatedHabitID.Valid
}

// TimeOfDay is a wall-clock trigger time with minute granularity and no date
// component. It is stored as "HH:MM" text so exact-equality lookups behave
// the same on SQLite and PostgreSQL.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// NewTimeOfDay builds a TimeOfDay without range checking; validation happens
// in Validate.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute}
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Value implements driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements sql.Scanner, accepting "HH:MM" text.
func (t *TimeOfDay) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		t.Hour, t.Minute = v.Hour(), v.Minute()
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return fmt.Errorf("invalid time of day %q: %v", s, err)
	}
	t.Hour, t.Minute = parsed.Hour(), parsed.Minute()
	return nil
}
