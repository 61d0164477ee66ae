package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/habitbot/internal/database"
	"github.com/example/habitbot/internal/habit"
	"github.com/example/habitbot/internal/logger"
)

// Bot is the Telegram account surface. It does not dispatch reminders; it
// exists so users can attach a Telegram destination to their account
// (/link), browse habits, and let admins pull a spreadsheet export.
type Bot struct {
	api      *tgbotapi.BotAPI
	users    *database.UserRepository
	profiles *database.ProfileRepository
	habits   *database.HabitRepository
	service  *habit.Service
	admins   map[int64]bool
}

// New creates a bot instance. The token must be valid; unlike the reminder
// transport, an interactive surface without a working credential is useless.
func New(token string, users *database.UserRepository, profiles *database.ProfileRepository,
	habits *database.HabitRepository, service *habit.Service, admins map[int64]bool) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is not set")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %v", err)
	}

	return &Bot{
		api:      api,
		users:    users,
		profiles: profiles,
		habits:   habits,
		service:  service,
		admins:   admins,
	}, nil
}

// Start runs the long-poll update loop until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	logger.Info("bot update loop started", "username", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if err := b.HandleCommand(ctx, update.Message); err != nil {
				logger.Error("command failed", "command", update.Message.Command(), "error", err)
			}
		}
	}
}

// Stop shuts down the update loop.
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}
