package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zoonmattau/healthtracker-sub000/internal/feedback"
	"github.com/zoonmattau/healthtracker-sub000/internal/logger"
	"github.com/zoonmattau/healthtracker-sub000/internal/storage"
	"github.com/zoonmattau/healthtracker-sub000/internal/stream"
)

const settingsKey = "timer-settings"

type Publisher interface {
	Publish(userID string, ev stream.Event) error
}

type Options struct {
	DefaultDurationSeconds int
	TickInterval           time.Duration
}

// Service hands out one Controller per user and owns their lifetimes.
type Service struct {
	store    *storage.Store
	notifier feedback.Notifier
	pub      Publisher
	opts     Options

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewService(store *storage.Store, notifier feedback.Notifier, pub Publisher, opts Options) *Service {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	return &Service{
		store:       store,
		notifier:    notifier,
		pub:         pub,
		opts:        opts,
		controllers: map[string]*Controller{},
	}
}

// For returns userID's controller, loading persisted preferences on first use.
func (s *Service) For(ctx context.Context, userID string) *Controller {
	s.mu.Lock()
	c, ok := s.controllers[userID]
	s.mu.Unlock()
	if ok {
		return c
	}

	prefs := s.loadPreferences(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.controllers[userID]; ok {
		return c
	}
	c = newController(userID, prefs, s.opts.TickInterval, s.notifier, s.observer(userID), s.persister(userID))
	s.controllers[userID] = c
	return c
}

// Close cancels every running countdown.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.controllers {
		c.Close()
	}
}

func (s *Service) loadPreferences(ctx context.Context, userID string) Preferences {
	defaults := DefaultPreferences(s.opts.DefaultDurationSeconds)
	if s.store == nil {
		return defaults
	}

	prefs := defaults
	err := s.store.GetJSON(ctx, s.store.Key(userID, settingsKey), &prefs)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		return defaults
	default:
		logger.Warn("timer: load preferences for %s: %v", userID, err)
		return defaults
	}
	if prefs.DefaultDurationSeconds <= 0 {
		prefs.DefaultDurationSeconds = defaults.DefaultDurationSeconds
	}
	return prefs
}

func (s *Service) persister(userID string) func(Preferences) error {
	if s.store == nil {
		return nil
	}
	return func(p Preferences) error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return s.store.SetJSON(ctx, s.store.Key(userID, settingsKey), p)
	}
}

func (s *Service) observer(userID string) func(State) {
	if s.pub == nil {
		return nil
	}
	return func(st State) {
		if err := s.pub.Publish(userID, stream.Event{Type: "timer", Data: st}); err != nil {
			logger.Warn("timer: publish state for %s: %v", userID, err)
		}
	}
}
