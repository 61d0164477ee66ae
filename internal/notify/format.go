package notify

import (
	"fmt"

	"github.com/example/habitbot/pkg/models"
)

// notSpecified is the placeholder rendered for optional fields, so the
// message shape stays stable whether or not they are set.
const notSpecified = "not specified"

// FormatReminder renders a habit into the reminder message sent at its
// trigger time. Pure; the same habit always yields the same text.
func FormatReminder(h *models.Habit) string {
	place := notSpecified
	if h.Place.Valid && h.Place.String != "" {
		place = h.Place.String
	}
	reward := notSpecified
	if h.HasReward() {
		reward = h.Reward.String
	}

	return fmt.Sprintf(
		"🔔 <b>Habit reminder!</b>\n\n"+
			"⏰ <b>Time:</b> %s\n"+
			"📍 <b>Place:</b> %s\n"+
			"✅ <b>Action:</b> %s\n"+
			"⏱ <b>Duration:</b> %d min.\n"+
			"🎁 <b>Reward:</b> %s",
		h.Time, place, h.Action, h.Duration, reward,
	)
}

// FormatWeeklySummary renders the aggregate message the weekly job sends to
// each user.
func FormatWeeklySummary(username string, periodDays, createdCount int) string {
	return fmt.Sprintf(
		"📊 <b>Weekly report</b>\n\n"+
			"👤 User: %s\n"+
			"📅 Period: last %d days\n"+
			"✅ Habits created: %d\n\n"+
			"Keep it up! 💪",
		username, periodDays, createdCount,
	)
}
