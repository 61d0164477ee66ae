package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Default cadence for the weekly summary job: Monday 09:00.
const DefaultWeeklyReportCron = "0 9 * * 1"

// Config holds everything the process reads from the environment. It is
// loaded once in main and injected; nothing else reads os.Getenv at call
// time, so components (notably the Telegram transport) can be constructed
// credential-less in tests.
type Config struct {
	// TelegramToken is the bot credential. Empty means every send fails
	// with an unauthenticated error; the process still runs.
	TelegramToken string
	// DatabaseURL selects PostgreSQL when set; otherwise a SQLite file
	// under DataDir is used.
	DatabaseURL string
	DataDir     string
	// AdminUserIDs are Telegram user IDs allowed to run admin commands.
	AdminUserIDs map[int64]bool
	// WeeklyReportCron is the cron expression for the weekly summary job.
	WeeklyReportCron string
	Debug            bool
	LogDir           string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// A missing .env file is fine; environment variables win either way.
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DataDir:          os.Getenv("DATA_DIR"),
		AdminUserIDs:     make(map[int64]bool),
		WeeklyReportCron: os.Getenv("WEEKLY_REPORT_CRON"),
		Debug:            os.Getenv("DEBUG") == "true",
		LogDir:           os.Getenv("LOG_DIR"),
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.WeeklyReportCron == "" {
		cfg.WeeklyReportCron = DefaultWeeklyReportCron
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}

	if ids := os.Getenv("ADMIN_USER_IDS"); ids != "" {
		for _, idStr := range strings.Split(ids, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid admin user ID %q: %v", idStr, err)
			}
			cfg.AdminUserIDs[id] = true
		}
	}

	return cfg, nil
}
