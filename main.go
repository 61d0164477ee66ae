package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/habitbot/internal/bot"
	"github.com/example/habitbot/internal/config"
	"github.com/example/habitbot/internal/database"
	"github.com/example/habitbot/internal/habit"
	"github.com/example/habitbot/internal/logger"
	"github.com/example/habitbot/internal/notify"
	"github.com/example/habitbot/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Init(logger.Config{Debug: cfg.Debug, LogDir: cfg.LogDir}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, cfg.DataDir)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close()

	habitRepo := database.NewHabitRepository(db)
	userRepo := database.NewUserRepository(db)
	profileRepo := database.NewProfileRepository(db)
	service := habit.NewService(habitRepo)

	resolver := notify.NewRecipientResolver(profileRepo)
	transport := notify.NewTelegramTransport(cfg.TelegramToken)

	sched := scheduler.New(habitRepo, userRepo, resolver, transport)
	sched.Start(cfg.WeeklyReportCron)
	defer sched.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The bot surface is optional: without a token the scheduler still
	// runs and tallies every send as a failure.
	var b *bot.Bot
	if cfg.TelegramToken != "" {
		b, err = bot.New(cfg.TelegramToken, userRepo, profileRepo, habitRepo, service, cfg.AdminUserIDs)
		if err != nil {
			logger.Error("failed to create bot, continuing with scheduler only", "error", err)
			b = nil
		} else {
			go func() {
				if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("bot stopped with error", "error", err)
				}
			}()
		}
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN not set, running without the bot surface")
	}

	logger.Info("habitbot started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("received signal, shutting down", "signal", sig)

	cancel()
	if b != nil {
		b.Stop()
	}

	logger.Info("habitbot stopped")
}
