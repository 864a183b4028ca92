package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saadjs/gonext/internal/model"
	"github.com/saadjs/gonext/internal/storage"
)

const (
	dateLayout = "2006-01-02"

	DefaultPollInterval    = 60 * time.Second
	DefaultNotificationTTL = 10 * time.Second
)

// Ticker runs fn every interval until the owner stops it.
type Ticker interface {
	Every(interval time.Duration, name string, fn func()) error
}

type eventInput struct {
	Date string `validate:"required,datetime=2006-01-02"`
	Mood string
	Note string `validate:"max=100"`
}

// EventStore owns the calendar events and the notification surfaced for
// today's events.
type EventStore struct {
	store storage.Store
	log   *zap.Logger
	now   func() time.Time
	ttl   time.Duration

	mu           sync.Mutex
	events       []model.CalendarEvent
	notification *model.Notification
	listeners    []func(model.Notification)
}

type EventStoreOption func(*EventStore)

// WithClock replaces time.Now; "today" is the clock's calendar date.
func WithClock(now func() time.Time) EventStoreOption {
	return func(s *EventStore) { s.now = now }
}

// WithNotificationTTL sets how long a published notification stays visible.
func WithNotificationTTL(d time.Duration) EventStoreOption {
	return func(s *EventStore) {
		if d > 0 {
			s.ttl = d
		}
	}
}

func NewEventStore(store storage.Store, log *zap.Logger, opts ...EventStoreOption) *EventStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &EventStore{
		store:  store,
		log:    log.Named("events"),
		now:    time.Now,
		ttl:    DefaultNotificationTTL,
		events: []model.CalendarEvent{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted events. Corrupt state is logged and replaced by
// an empty list.
func (s *EventStore) Load(ctx context.Context) error {
	var events []model.CalendarEvent
	_, err := storage.LoadJSON(ctx, s.store, storage.KeyEvents, &events)
	if errors.Is(err, storage.ErrCorruptState) {
		s.log.Warn("stored events are corrupt, starting empty", zap.Error(err))
		events = nil
	} else if err != nil {
		return err
	}
	if events == nil {
		events = []model.CalendarEvent{}
	}
	s.mu.Lock()
	s.events = events
	s.mu.Unlock()
	return nil
}

// AddEvent appends a pending event and persists the list.
func (s *EventStore) AddEvent(ctx context.Context, date, mood, note string) (model.CalendarEvent, error) {
	in := eventInput{
		Date: strings.TrimSpace(date),
		Mood: strings.TrimSpace(mood),
		Note: strings.TrimSpace(note),
	}
	if err := validate.Struct(in); err != nil {
		return model.CalendarEvent{}, err
	}
	if in.Mood == "" {
		in.Mood = MoodWork
	}
	m, err := LookupMood(in.Mood)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return model.CalendarEvent{}, fmt.Errorf("generate event id: %w", err)
	}
	ev := model.CalendarEvent{
		ID:        id.String(),
		Date:      in.Date,
		Mood:      m.ID,
		Note:      in.Note,
		CreatedAt: s.now().UTC(),
		Notified:  false,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(cloneEvents(s.events), ev)
	if err := s.persist(ctx, next); err != nil {
		return model.CalendarEvent{}, err
	}
	s.log.Debug("event added", zap.String("id", ev.ID), zap.String("date", ev.Date), zap.String("mood", ev.Mood))
	return ev, nil
}

// DeleteEvent removes an event. Unknown ids are a no-op.
func (s *EventStore) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]model.CalendarEvent, 0, len(s.events))
	for _, e := range s.events {
		if e.ID != id {
			next = append(next, e)
		}
	}
	if len(next) == len(s.events) {
		return nil
	}
	return s.persist(ctx, next)
}

// Events returns every event in store order.
func (s *EventStore) Events() []model.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEvents(s.events)
}

// Upcoming returns events dated today or later, earliest first.
func (s *EventStore) Upcoming() []model.CalendarEvent {
	today := s.today()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CalendarEvent, 0, len(s.events))
	for _, e := range s.events {
		if e.Date >= today {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ScanToday picks the first pending event dated today, in store order, and
// returns a copy of events with that one marked notified together with its
// notification. Other matches stay pending for later scans.
func ScanToday(events []model.CalendarEvent, today string) ([]model.CalendarEvent, *model.Notification) {
	for i, e := range events {
		if e.Date != today || e.Notified {
			continue
		}
		msg := MessageForMood(e.Mood)
		n := &model.Notification{
			EventID: e.ID,
			Date:    e.Date,
			Mood:    e.Mood,
			Note:    e.Note,
			Emoji:   msg.Emoji,
			Title:   msg.Title,
			Message: msg.Message,
			Color:   msg.Color,
		}
		next := cloneEvents(events)
		next[i].Notified = true
		return next, n
	}
	return events, nil
}

// CheckTodayEvents runs one scan, publishes the notification if any and
// persists the notified flag. Listeners run after the store is unlocked.
func (s *EventStore) CheckTodayEvents(ctx context.Context) (*model.Notification, error) {
	today := s.today()
	s.mu.Lock()
	next, n := ScanToday(s.events, today)
	if n == nil {
		s.mu.Unlock()
		return nil, nil
	}
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	n.PublishedAt = s.now()
	s.notification = n
	published := *n
	listeners := append([]func(model.Notification){}, s.listeners...)
	s.mu.Unlock()

	s.log.Info("event notification published", zap.String("event_id", published.EventID), zap.String("mood", published.Mood))
	for _, fn := range listeners {
		fn(published)
	}
	return &published, nil
}

// OnPublish registers fn to receive every published notification.
func (s *EventStore) OnPublish(fn func(model.Notification)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Notification returns the active notification, or nil once it has been
// dismissed or has been visible for the TTL.
func (s *EventStore) Notification() *model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notification == nil {
		return nil
	}
	if !s.now().Before(s.notification.PublishedAt.Add(s.ttl)) {
		s.notification = nil
		return nil
	}
	cp := *s.notification
	return &cp
}

// DismissNotification clears the active notification. Safe to call repeatedly.
func (s *EventStore) DismissNotification() {
	s.mu.Lock()
	s.notification = nil
	s.mu.Unlock()
}

// StartNotifier scans once now and then on every tick.
func (s *EventStore) StartNotifier(ctx context.Context, ticker Ticker, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if _, err := s.CheckTodayEvents(ctx); err != nil {
		s.log.Error("initial event scan failed", zap.Error(err))
	}
	return ticker.Every(interval, "check-today-events", func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.CheckTodayEvents(ctx); err != nil {
			s.log.Error("event scan failed", zap.Error(err))
		}
	})
}

func (s *EventStore) today() string {
	return s.now().Format(dateLayout)
}

// persist must be called with s.mu held; memory is only replaced after a
// successful write.
func (s *EventStore) persist(ctx context.Context, next []model.CalendarEvent) error {
	if err := storage.SaveJSON(ctx, s.store, storage.KeyEvents, next); err != nil {
		return err
	}
	s.events = next
	return nil
}

func cloneEvents(in []model.CalendarEvent) []model.CalendarEvent {
	return append([]model.CalendarEvent{}, in...)
}
