package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/saadjs/gonext/internal/model"
	"github.com/saadjs/gonext/internal/service"
	"github.com/saadjs/gonext/internal/storage"
	"github.com/saadjs/gonext/internal/storage/memory"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeTicker struct {
	interval time.Duration
	name     string
	fn       func()
}

func (t *fakeTicker) Every(interval time.Duration, name string, fn func()) error {
	t.interval = interval
	t.name = name
	t.fn = fn
	return nil
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 16, 9, 30, 0, 0, time.Local)}
}

func newEventStore(t *testing.T, s storage.Store, clock *fakeClock) *service.EventStore {
	t.Helper()
	es := service.NewEventStore(s, zap.NewNop(), service.WithClock(clock.Now))
	require.NoError(t, es.Load(context.Background()))
	return es
}

func TestAddEventPersistsPendingEvent(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewStore()
	clock := newClock()
	es := newEventStore(t, mem, clock)

	ev, err := es.AddEvent(ctx, "2026-10-20", "date", "Anniversary dinner at 7pm")
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.Notified)
	assert.Equal(t, "date", ev.Mood)
	assert.Equal(t, 1, mem.Saves())

	// A fresh store sees the persisted event.
	reloaded := newEventStore(t, mem, clock)
	events := reloaded.Events()
	require.Len(t, events, 1)
	assert.Equal(t, ev.ID, events[0].ID)
	assert.Equal(t, "Anniversary dinner at 7pm", events[0].Note)
}

func TestAddEventIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	es := newEventStore(t, memory.NewStore(), newClock())
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		ev, err := es.AddEvent(ctx, "2026-10-20", "work", "")
		require.NoError(t, err)
		assert.False(t, seen[ev.ID], "duplicate id %s", ev.ID)
		seen[ev.ID] = true
	}
}

func TestAddEventValidation(t *testing.T) {
	ctx := context.Background()
	es := newEventStore(t, memory.NewStore(), newClock())

	_, err := es.AddEvent(ctx, "", "work", "")
	var verr validator.ValidationErrors
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []map[string]string{{"Date": "is required"}}, service.FieldErrors(err))

	_, err = es.AddEvent(ctx, "tomorrow", "work", "")
	assert.Error(t, err)

	_, err = es.AddEvent(ctx, "2026-10-20", "work", strings.Repeat("n", 101))
	assert.Equal(t, []map[string]string{{"Note": "must be at most 100 characters"}}, service.FieldErrors(err))

	_, err = es.AddEvent(ctx, "2026-10-20", "party", "")
	assert.ErrorContains(t, err, "unknown mood")

	ev, err := es.AddEvent(ctx, "2026-10-20", "", "")
	require.NoError(t, err)
	assert.Equal(t, "work", ev.Mood)
}

func TestDeleteEventIsNoopForUnknownID(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewStore()
	es := newEventStore(t, mem, newClock())
	ev, err := es.AddEvent(ctx, "2026-10-20", "budget", "")
	require.NoError(t, err)

	require.NoError(t, es.DeleteEvent(ctx, "missing"))
	assert.Len(t, es.Events(), 1)
	assert.Equal(t, 1, mem.Saves())

	require.NoError(t, es.DeleteEvent(ctx, ev.ID))
	assert.Empty(t, es.Events())
	assert.Equal(t, 2, mem.Saves())
}

func TestScanTodayIsPure(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: "1", Date: "2026-10-15", Mood: "work"},
		{ID: "2", Date: "2026-10-16", Mood: "date", Note: "dinner"},
		{ID: "3", Date: "2026-10-16", Mood: "work"},
	}
	next, n := service.ScanToday(events, "2026-10-16")
	require.NotNil(t, n)
	assert.Equal(t, "2", n.EventID)
	assert.Equal(t, "Romance is in the Air!", n.Title)
	assert.Equal(t, "dinner", n.Note)
	assert.True(t, next[1].Notified)
	assert.False(t, next[2].Notified)
	assert.False(t, events[1].Notified, "input must not be modified")

	_, none := service.ScanToday(events, "2026-10-17")
	assert.Nil(t, none)
}

func TestScanTodayUnknownMoodFallsBackToExplore(t *testing.T) {
	_, n := service.ScanToday([]model.CalendarEvent{{ID: "x", Date: "2026-10-16", Mood: "mystery"}}, "2026-10-16")
	require.NotNil(t, n)
	assert.Equal(t, "Adventure Awaits!", n.Title)
	assert.Equal(t, "🗺️", n.Emoji)
}

func TestCheckTodayEventsSurfacesOnePerScan(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	mem := memory.NewStore()
	es := newEventStore(t, mem, clock)
	first, err := es.AddEvent(ctx, "2026-10-16", "work", "")
	require.NoError(t, err)
	second, err := es.AddEvent(ctx, "2026-10-16", "quickbite", "")
	require.NoError(t, err)

	n, err := es.CheckTodayEvents(ctx)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, first.ID, n.EventID)

	events := es.Events()
	assert.True(t, events[0].Notified)
	assert.False(t, events[1].Notified)

	clock.Advance(60 * time.Second)
	n, err = es.CheckTodayEvents(ctx)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, second.ID, n.EventID)
	assert.Equal(t, "Time to Refuel!", n.Title)

	n, err = es.CheckTodayEvents(ctx)
	require.NoError(t, err)
	assert.Nil(t, n, "notified events never surface again")

	// The notified flag survives a reload.
	for _, ev := range newEventStore(t, mem, clock).Events() {
		assert.True(t, ev.Notified)
	}
}

func TestNotificationAutoDismisses(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	es := newEventStore(t, memory.NewStore(), clock)
	_, err := es.AddEvent(ctx, "2026-10-16", "explore", "")
	require.NoError(t, err)
	_, err = es.CheckTodayEvents(ctx)
	require.NoError(t, err)

	require.NotNil(t, es.Notification())
	clock.Advance(9 * time.Second)
	require.NotNil(t, es.Notification())
	clock.Advance(time.Second)
	assert.Nil(t, es.Notification())
}

func TestDismissNotificationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	es := newEventStore(t, memory.NewStore(), newClock())
	_, err := es.AddEvent(ctx, "2026-10-16", "work", "")
	require.NoError(t, err)
	_, err = es.CheckTodayEvents(ctx)
	require.NoError(t, err)

	es.DismissNotification()
	es.DismissNotification()
	assert.Nil(t, es.Notification())
}

func TestStartNotifierScansImmediatelyAndOnTick(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	es := newEventStore(t, memory.NewStore(), clock)
	_, err := es.AddEvent(ctx, "2026-10-16", "work", "")
	require.NoError(t, err)
	_, err = es.AddEvent(ctx, "2026-10-17", "date", "")
	require.NoError(t, err)

	ticker := &fakeTicker{}
	require.NoError(t, es.StartNotifier(ctx, ticker, 0))
	assert.Equal(t, service.DefaultPollInterval, ticker.interval)
	require.NotNil(t, es.Notification())
	es.DismissNotification()

	// Next day, the tick surfaces the second event.
	clock.Advance(24 * time.Hour)
	ticker.fn()
	n := es.Notification()
	require.NotNil(t, n)
	assert.Equal(t, "date", n.Mood)
}

func TestUpcomingIncludesTodayAndSortsByDate(t *testing.T) {
	ctx := context.Background()
	es := newEventStore(t, memory.NewStore(), newClock())
	for _, d := range []string{"2026-11-01", "2026-10-15", "2026-10-16", "2026-10-20"} {
		_, err := es.AddEvent(ctx, d, "work", "")
		require.NoError(t, err)
	}
	var dates []string
	for _, ev := range es.Upcoming() {
		dates = append(dates, ev.Date)
	}
	assert.Equal(t, []string{"2026-10-16", "2026-10-20", "2026-11-01"}, dates)
}

func TestLoadFallsBackOnCorruptEvents(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewStore()
	require.NoError(t, mem.Save(ctx, storage.KeyEvents, []byte(`{not json`)))

	core, logs := observer.New(zapcore.WarnLevel)
	es := service.NewEventStore(mem, zap.New(core), service.WithClock(newClock().Now))
	require.NoError(t, es.Load(ctx))
	assert.Empty(t, es.Events())
	assert.Equal(t, 1, logs.FilterMessage("stored events are corrupt, starting empty").Len())

	// The next mutation overwrites the corrupt value.
	_, err := es.AddEvent(ctx, "2026-10-20", "work", "")
	require.NoError(t, err)
	var events []model.CalendarEvent
	found, err := storage.LoadJSON(ctx, mem, storage.KeyEvents, &events)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, events, 1)
}

func TestOnPublishReceivesNotifications(t *testing.T) {
	ctx := context.Background()
	es := newEventStore(t, memory.NewStore(), newClock())
	var got []string
	es.OnPublish(func(n model.Notification) {
		// Listeners may read the store without deadlocking.
		_ = es.Notification()
		got = append(got, n.EventID)
	})
	ev, err := es.AddEvent(ctx, "2026-10-16", "budget", "")
	require.NoError(t, err)

	_, err = es.CheckTodayEvents(ctx)
	require.NoError(t, err)
	_, err = es.CheckTodayEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ev.ID}, got)
}
