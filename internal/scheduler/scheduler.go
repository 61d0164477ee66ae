package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/habitbot/internal/logger"
	"github.com/example/habitbot/internal/notify"
	"github.com/example/habitbot/pkg/models"
)

// softDeadline is how long a reminder tick may run before it is logged as
// overrunning. The tick is never aborted mid-send; a partial tick is
// harmless because each habit recurs the next day.
const softDeadline = 50 * time.Second

// weeklyPeriodDays is the trailing window the summary job reports on.
const weeklyPeriodDays = 7

// HabitStore is the slice of habit storage the scheduler consumes.
type HabitStore interface {
	FindDue(ctx context.Context, hour, minute int) ([]models.Habit, error)
	ClaimReminder(ctx context.Context, habitID int64, day string) (bool, error)
	CountCreatedSince(ctx context.Context, ownerID int64, since time.Time) (int, error)
}

// UserStore lists the users the weekly job iterates over.
type UserStore interface {
	GetActiveUsers(ctx context.Context) ([]models.User, error)
}

// Resolver maps a habit owner to a notification destination. ok is false,
// without an error, when the user has no destination.
type Resolver interface {
	Resolve(ctx context.Context, userID int64) (addr string, ok bool, err error)
}

// Transport delivers formatted text to a resolved destination.
type Transport interface {
	Send(ctx context.Context, addr, text string) error
}

// TickResult summarizes one reminder tick. Checked is the size of the
// due-set snapshot; every due habit lands in exactly one of Sent or Skipped.
type TickResult struct {
	Checked int
	Sent    int
	Skipped int
}

// Scheduler runs the periodic jobs: the per-minute reminder tick and the
// weekly summary.
type Scheduler struct {
	scheduler *gocron.Scheduler
	habits    HabitStore
	users     UserStore
	resolver  Resolver
	transport Transport
}

// New creates a scheduler instance.
func New(habits HabitStore, users UserStore, resolver Resolver, transport Transport) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		habits:    habits,
		users:     users,
		resolver:  resolver,
		transport: transport,
	}
}

// Start registers the jobs and begins running them. SingletonMode keeps
// invocations of the same job from overlapping: a slow tick delays the next
// one instead of double-sending.
func (s *Scheduler) Start(weeklyCron string) {
	s.scheduler.Every(1).Minute().SingletonMode().Do(s.reminderJob)
	s.scheduler.Cron(weeklyCron).SingletonMode().Do(s.weeklyJob)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) reminderJob() {
	start := time.Now()
	if _, err := s.RunReminderTick(context.Background(), start); err != nil {
		logger.Error("reminder tick failed", "error", err)
	}
	if elapsed := time.Since(start); elapsed > softDeadline {
		logger.Warn("reminder tick overran", "elapsed", elapsed)
	}
}

func (s *Scheduler) weeklyJob() {
	if err := s.RunWeeklyReport(context.Background(), time.Now()); err != nil {
		logger.Error("weekly report failed", "error", err)
	}
}

// RunReminderTick executes one reminder dispatch pass for the (hour, minute)
// derived from now. The due-set is a single snapshot; per-habit failures are
// tallied and never abort the loop.
func (s *Scheduler) RunReminderTick(ctx context.Context, now time.Time) (TickResult, error) {
	hour, minute := now.Hour(), now.Minute()
	day := now.Format("2006-01-02")

	habits, err := s.habits.FindDue(ctx, hour, minute)
	if err != nil {
		return TickResult{}, err
	}

	result := TickResult{Checked: len(habits)}
	for i := range habits {
		h := &habits[i]

		addr, ok, err := s.resolver.Resolve(ctx, h.UserID)
		if err != nil {
			result.Skipped++
			logger.Error("recipient resolution failed", "habit_id", h.ID, "user_id", h.UserID, "error", err)
			continue
		}
		if !ok {
			result.Skipped++
			logger.Debug("no notification destination", "habit_id", h.ID, "user_id", h.UserID)
			continue
		}

		claimed, err := s.habits.ClaimReminder(ctx, h.ID, day)
		if err != nil {
			result.Skipped++
			logger.Error("reminder claim failed", "habit_id", h.ID, "error", err)
			continue
		}
		if !claimed {
			result.Skipped++
			logger.Debug("reminder already sent today", "habit_id", h.ID, "day", day)
			continue
		}

		text := notify.FormatReminder(h)
		if err := s.transport.Send(ctx, addr, text); err != nil {
			result.Skipped++
			logger.Error("reminder send failed", "habit_id", h.ID, "kind", notify.KindOf(err), "error", err)
			continue
		}

		result.Sent++
		logger.Info("reminder sent", "habit_id", h.ID, "user_id", h.UserID, "action", h.Action)
	}

	logger.Info("reminder tick complete",
		"checked", result.Checked, "sent", result.Sent, "skipped", result.Skipped)
	return result, nil
}

// RunWeeklyReport sends every active user with a destination a summary of
// the habits they created over the trailing week. One user's failure never
// aborts the rest.
func (s *Scheduler) RunWeeklyReport(ctx context.Context, now time.Time) error {
	users, err := s.users.GetActiveUsers(ctx)
	if err != nil {
		return err
	}

	since := now.AddDate(0, 0, -weeklyPeriodDays)
	for _, user := range users {
		addr, ok, err := s.resolver.Resolve(ctx, user.ID)
		if err != nil {
			logger.Error("recipient resolution failed", "user_id", user.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}

		count, err := s.habits.CountCreatedSince(ctx, user.ID, since)
		if err != nil {
			logger.Error("weekly count failed", "user_id", user.ID, "error", err)
			continue
		}

		text := notify.FormatWeeklySummary(user.Username, weeklyPeriodDays, count)
		if err := s.transport.Send(ctx, addr, text); err != nil {
			logger.Error("weekly report send failed", "user_id", user.ID, "kind", notify.KindOf(err), "error", err)
			continue
		}
		logger.Info("weekly report sent", "user_id", user.ID, "username", user.Username)
	}

	return nil
}
