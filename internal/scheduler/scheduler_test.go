package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/habitbot/internal/database"
	"github.com/example/habitbot/internal/notify"
	"github.com/example/habitbot/pkg/models"
)

type sentMessage struct {
	Addr string
	Text string
}

// fakeTransport records sends and can be told to fail, globally or for a
// single address.
type fakeTransport struct {
	mu      sync.Mutex
	sent    []sentMessage
	err     error
	addrErr map[string]error
}

func (f *fakeTransport) Send(_ context.Context, addr, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.addrErr[addr]; err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{Addr: addr, Text: text})
	return nil
}

func (f *fakeTransport) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fixture struct {
	db        *sqlx.DB
	habits    *database.HabitRepository
	users     *database.UserRepository
	profiles  *database.ProfileRepository
	transport *fakeTransport
	sched     *Scheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	require.NoError(t, database.InitializeSchema(db))
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:        db,
		habits:    database.NewHabitRepository(db),
		users:     database.NewUserRepository(db),
		profiles:  database.NewProfileRepository(db),
		transport: &fakeTransport{},
	}
	resolver := notify.NewRecipientResolver(f.profiles)
	f.sched = New(f.habits, f.users, resolver, f.transport)
	return f
}

func (f *fixture) addUser(t *testing.T, username, telegramID string) *models.User {
	t.Helper()
	ctx := context.Background()
	user := &models.User{Username: username, IsActive: true}
	require.NoError(t, f.users.Create(ctx, user))
	if telegramID != "" {
		require.NoError(t, f.profiles.Upsert(ctx, &models.UserProfile{
			UserID: user.ID, TelegramID: telegramID,
		}))
	}
	return user
}

func (f *fixture) addHabit(t *testing.T, userID int64, hour, minute int, action string) *models.Habit {
	t.Helper()
	h := &models.Habit{
		UserID:    userID,
		Time:      models.NewTimeOfDay(hour, minute),
		Action:    action,
		Duration:  1,
		Frequency: 1,
	}
	require.NoError(t, f.habits.Create(context.Background(), h))
	return h
}

func tickTime(hour, minute int) time.Time {
	// Seconds are deliberately non-zero; the tick must discard them.
	return time.Date(2026, 8, 30, hour, minute, 17, 0, time.Local)
}

func TestTickMixedOutcomes(t *testing.T) {
	f := newFixture(t)
	withAddr := f.addUser(t, "alice", "111")
	noProfile := f.addUser(t, "bob", "")
	f.addHabit(t, withAddr.ID, 8, 0, "drink water")
	f.addHabit(t, noProfile.ID, 8, 0, "stretch")

	res, err := f.sched.RunReminderTick(context.Background(), tickTime(8, 0))
	require.NoError(t, err)

	assert.Equal(t, TickResult{Checked: 2, Sent: 1, Skipped: 1}, res)
	msgs := f.transport.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "111", msgs[0].Addr)
	assert.Contains(t, msgs[0].Text, "drink water")
}

func TestTickTransportFailureIsTallied(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "alice", "111")
	f.addHabit(t, user.ID, 8, 0, "drink water")
	f.transport.err = &notify.SendError{Kind: notify.KindTimeout}

	res, err := f.sched.RunReminderTick(context.Background(), tickTime(8, 0))
	require.NoError(t, err, "a failed send must not fail the tick")

	assert.Equal(t, TickResult{Checked: 1, Sent: 0, Skipped: 1}, res)
	assert.Equal(t, notify.KindTimeout, notify.KindOf(f.transport.err))
}

func TestTickEmptyMinute(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "alice", "111")
	f.addHabit(t, user.ID, 8, 0, "drink water")

	res, err := f.sched.RunReminderTick(context.Background(), tickTime(8, 1))
	require.NoError(t, err)
	assert.Equal(t, TickResult{}, res)
	assert.Empty(t, f.transport.messages())
}

func TestTickTallyCoversDueSet(t *testing.T) {
	f := newFixture(t)
	a := f.addUser(t, "alice", "111")
	b := f.addUser(t, "bob", "222")
	c := f.addUser(t, "carol", "")
	f.addHabit(t, a.ID, 8, 0, "one")
	f.addHabit(t, b.ID, 8, 0, "two")
	f.addHabit(t, c.ID, 8, 0, "three")
	f.addHabit(t, a.ID, 9, 30, "later")

	res, err := f.sched.RunReminderTick(context.Background(), tickTime(8, 0))
	require.NoError(t, err)

	due, err := f.habits.FindDue(context.Background(), 8, 0)
	require.NoError(t, err)
	assert.Equal(t, len(due), res.Checked)
	assert.Equal(t, res.Checked, res.Sent+res.Skipped)
}

func TestRefiredMinuteDoesNotDoubleSend(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "alice", "111")
	f.addHabit(t, user.ID, 8, 0, "drink water")

	first, err := f.sched.RunReminderTick(context.Background(), tickTime(8, 0))
	require.NoError(t, err)
	assert.Equal(t, TickResult{Checked: 1, Sent: 1, Skipped: 0}, first)

	second, err := f.sched.RunReminderTick(context.Background(), tickTime(8, 0))
	require.NoError(t, err)
	assert.Equal(t, TickResult{Checked: 1, Sent: 0, Skipped: 1}, second)

	assert.Len(t, f.transport.messages(), 1)
}

func TestFailedSendIsNotRetriedWithinTheDay(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "alice", "111")
	f.addHabit(t, user.ID, 8, 0, "drink water")

	f.transport.err = &notify.SendError{Kind: notify.KindRequestFailed, Code: 502}
	_, err := f.sched.RunReminderTick(context.Background(), tickTime(8, 0))
	require.NoError(t, err)

	// The claim was made before the failed attempt; a re-fired minute
	// stays quiet until the next day.
	f.transport.err = nil
	res, err := f.sched.RunReminderTick(context.Background(), tickTime(8, 0))
	require.NoError(t, err)
	assert.Equal(t, TickResult{Checked: 1, Sent: 0, Skipped: 1}, res)
	assert.Empty(t, f.transport.messages())

	// Next day the habit fires again.
	nextDay := tickTime(8, 0).AddDate(0, 0, 1)
	res, err = f.sched.RunReminderTick(context.Background(), nextDay)
	require.NoError(t, err)
	assert.Equal(t, TickResult{Checked: 1, Sent: 1, Skipped: 0}, res)
}

func TestWeeklyReportCountsAndSkips(t *testing.T) {
	f := newFixture(t)
	withAddr := f.addUser(t, "alice", "111")
	noProfile := f.addUser(t, "bob", "")
	f.addHabit(t, withAddr.ID, 8, 0, "one")
	old := f.addHabit(t, withAddr.ID, 9, 0, "old")
	f.addHabit(t, noProfile.ID, 8, 0, "unreported")

	// Push one habit outside the trailing week.
	_, err := f.db.Exec("UPDATE habits SET created_at = ? WHERE id = ?",
		time.Now().UTC().AddDate(0, 0, -10), old.ID)
	require.NoError(t, err)

	require.NoError(t, f.sched.RunWeeklyReport(context.Background(), time.Now()))

	msgs := f.transport.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "111", msgs[0].Addr)
	assert.Contains(t, msgs[0].Text, "alice")
	assert.Contains(t, msgs[0].Text, "Habits created: 1")
}

func TestWeeklyReportSurvivesPerUserFailures(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "111")
	f.addUser(t, "bob", "222")
	f.transport.addrErr = map[string]error{
		"111": &notify.SendError{Kind: notify.KindUnknown},
	}

	// Alice's send fails first; Bob still gets his report and the job
	// itself succeeds.
	require.NoError(t, f.sched.RunWeeklyReport(context.Background(), time.Now()))

	msgs := f.transport.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "222", msgs[0].Addr)
	assert.Contains(t, msgs[0].Text, "bob")
}
