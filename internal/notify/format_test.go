package notify

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/habitbot/pkg/models"
)

func TestFormatReminderRendersAllFields(t *testing.T) {
	h := &models.Habit{
		Time:     models.NewTimeOfDay(8, 0),
		Place:    sql.NullString{String: "the park", Valid: true},
		Action:   "do ten squats",
		Duration: 2,
		Reward:   sql.NullString{String: "coffee", Valid: true},
	}

	text := FormatReminder(h)
	assert.Contains(t, text, "08:00")
	assert.Contains(t, text, "the park")
	assert.Contains(t, text, "do ten squats")
	assert.Contains(t, text, "2 min.")
	assert.Contains(t, text, "coffee")
	assert.NotContains(t, text, "not specified")
}

func TestFormatReminderMissingOptionalsUsePlaceholder(t *testing.T) {
	h := &models.Habit{
		Time:     models.NewTimeOfDay(7, 30),
		Action:   "stretch",
		Duration: 1,
	}

	text := FormatReminder(h)
	// Both place and reward render the placeholder; the message shape
	// never changes.
	assert.Equal(t, 2, strings.Count(text, "not specified"))
}

func TestFormatReminderIsIdempotent(t *testing.T) {
	h := &models.Habit{
		Time:     models.NewTimeOfDay(8, 0),
		Action:   "drink water",
		Duration: 1,
	}
	assert.Equal(t, FormatReminder(h), FormatReminder(h))
}

func TestFormatWeeklySummary(t *testing.T) {
	text := FormatWeeklySummary("alice", 7, 3)
	assert.Contains(t, text, "alice")
	assert.Contains(t, text, "last 7 days")
	assert.Contains(t, text, "Habits created: 3")
}
