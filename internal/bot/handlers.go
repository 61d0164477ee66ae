package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/habitbot/internal/database"
	"github.com/example/habitbot/internal/excel"
	"github.com/example/habitbot/pkg/models"
)

// HandleCommand dispatches a single bot command.
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message.From == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}

	switch message.Command() {
	case "start", "help":
		return b.handleHelp(message)
	case "link":
		return b.handleLink(ctx, message)
	case "habits":
		return b.handleHabits(ctx, message)
	case "export":
		return b.handleExport(ctx, message)
	default:
		return b.reply(message, "Unknown command. Try /help.")
	}
}

func (b *Bot) handleHelp(message *tgbotapi.Message) error {
	return b.reply(message,
		"I deliver habit reminders.\n\n"+
			"/link <username> — attach this Telegram chat to your account\n"+
			"/habits — list your habits and the public ones\n"+
			"/help — this message")
}

// handleLink attaches the caller's chat to an existing account. This is the
// account-settings surface behind the recipient resolver: reminders start
// arriving once the profile row exists.
func (b *Bot) handleLink(ctx context.Context, message *tgbotapi.Message) error {
	username := strings.TrimSpace(message.CommandArguments())
	if username == "" {
		return b.reply(message, "Usage: /link <username>")
	}

	user, err := b.users.GetByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		return b.reply(message, fmt.Sprintf("No account named %q.", username))
	}
	if err != nil {
		return err
	}

	profile := &models.UserProfile{
		UserID:           user.ID,
		TelegramID:       strconv.FormatInt(message.From.ID, 10),
		TelegramUsername: message.From.UserName,
	}
	if err := b.profiles.Upsert(ctx, profile); err != nil {
		return err
	}
	return b.reply(message, fmt.Sprintf("Linked. Reminders for %q will arrive here.", username))
}

func (b *Bot) handleHabits(ctx context.Context, message *tgbotapi.Message) error {
	profile, err := b.profiles.GetByTelegramID(ctx, strconv.FormatInt(message.From.ID, 10))
	if errors.Is(err, database.ErrNotFound) {
		return b.reply(message, "This chat is not linked yet. Use /link <username> first.")
	}
	if err != nil {
		return err
	}

	habits, err := b.service.List(ctx, profile.UserID)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		return b.reply(message, "No habits yet.")
	}

	var sb strings.Builder
	sb.WriteString("Your habits and public habits:\n")
	for _, h := range habits {
		marker := ""
		if h.UserID != profile.UserID {
			marker = " (public)"
		}
		sb.WriteString(fmt.Sprintf("• %s — %s%s\n", h.Time, h.Action, marker))
	}
	return b.reply(message, sb.String())
}

func (b *Bot) handleExport(ctx context.Context, message *tgbotapi.Message) error {
	if !b.admins[message.From.ID] {
		return b.reply(message, "This command is for admins only.")
	}

	habits, err := b.habits.GetAll(ctx)
	if err != nil {
		return err
	}

	path := filepath.Join(os.TempDir(), "habits-export.xlsx")
	if err := excel.ExportHabits(path, habits); err != nil {
		return err
	}
	defer os.Remove(path)

	doc := tgbotapi.NewDocument(message.Chat.ID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("%d habits", len(habits))
	_, err = b.api.Send(doc)
	return err
}

func (b *Bot) reply(message *tgbotapi.Message, text string) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	_, err := b.api.Send(msg)
	return err
}
