// Package datastore owns each user's fitness records in memory and mirrors
// every change to the key-value store.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zoonmattau/healthtracker-sub000/internal/logger"
	"github.com/zoonmattau/healthtracker-sub000/internal/metrics"
	"github.com/zoonmattau/healthtracker-sub000/internal/storage"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrNotPersisted    = errors.New("change kept in memory but not persisted")
	ErrDefaultTemplate = errors.New("default templates cannot be changed")
	ErrProgramNotFound = errors.New("program not found")
	ErrNoActiveProgram = errors.New("no active program")
	ErrInvalidEntry    = errors.New("invalid entry")
)

const (
	keyWeights       = "weights"
	keySleep         = "sleep"
	keyWorkouts      = "workouts"
	keyTemplates     = "templates"
	keyTemplateUsage = "template-usage"
	keyProgram       = "program"
	keyGoals         = "goals"
	keySupplements   = "supplements"
	keyFood          = "food"
	keyWater         = "water"
	keyTaken         = "supplements-taken"
)

// ProfileSyncer receives weights that also belong on the remote profile.
type ProfileSyncer interface {
	UpdateWeight(ctx context.Context, userID string, weightKg float64) error
}

type Service struct {
	store   *storage.Store
	profile ProfileSyncer
	catalog Catalog
	now     func() time.Time

	mu    sync.Mutex
	users map[string]*snapshot
}

// snapshot is one user's records. Every field is guarded by mu.
type snapshot struct {
	mu     sync.Mutex
	loaded bool

	weights     []WeightEntry
	sleep       []SleepEntry
	workouts    []WorkoutRecord
	templates   []WorkoutTemplate
	usage       map[string]int
	program     *ProgramState
	goals       DailyGoals
	supplements []Supplement
	days        map[string]*dayLog
}

// dayLog holds the slices stored per calendar day.
type dayLog struct {
	food    []FoodEntry
	waterMl int
	taken   []string
}

func NewService(store *storage.Store, profile ProfileSyncer) *Service {
	return &Service{
		store:   store,
		profile: profile,
		catalog: builtin,
		now:     time.Now,
		users:   map[string]*snapshot{},
	}
}

func (s *Service) today() string {
	return s.now().Format(dateLayout)
}

// acquire returns userID's snapshot locked, loading it on first use.
func (s *Service) acquire(ctx context.Context, userID string) *snapshot {
	s.mu.Lock()
	snap, ok := s.users[userID]
	if !ok {
		snap = &snapshot{}
		s.users[userID] = snap
	}
	s.mu.Unlock()

	snap.mu.Lock()
	if !snap.loaded {
		s.load(ctx, userID, snap)
		snap.loaded = true
	}
	return snap
}

func (s *Service) load(ctx context.Context, userID string, snap *snapshot) {
	snap.goals = DefaultGoals()
	snap.days = map[string]*dayLog{}

	read(ctx, s, userID, &snap.weights, keyWeights)
	read(ctx, s, userID, &snap.sleep, keySleep)
	read(ctx, s, userID, &snap.workouts, keyWorkouts)
	read(ctx, s, userID, &snap.templates, keyTemplates)
	read(ctx, s, userID, &snap.usage, keyTemplateUsage)
	read(ctx, s, userID, &snap.goals, keyGoals)
	read(ctx, s, userID, &snap.supplements, keySupplements)

	var program ProgramState
	if read(ctx, s, userID, &program, keyProgram) && program.ProgramID != "" {
		snap.program = &program
	}
	if snap.usage == nil {
		snap.usage = map[string]int{}
	}
}

// day returns the log for date, loading it on first use. Only one date is
// cached; other days are already persisted and reload on demand. snap must
// be locked.
func (s *Service) day(ctx context.Context, userID string, snap *snapshot, date string) *dayLog {
	if d, ok := snap.days[date]; ok {
		return d
	}
	clear(snap.days)
	d := &dayLog{}
	read(ctx, s, userID, &d.food, keyFood, date)
	read(ctx, s, userID, &d.waterMl, keyWater, date)
	read(ctx, s, userID, &d.taken, keyTaken, date)
	if d.waterMl < 0 {
		d.waterMl = 0
	}
	snap.days[date] = d
	return d
}

// read decodes a stored slice into dst. Missing or unreadable data leaves
// dst untouched, so the caller's default stands.
func read[T any](ctx context.Context, s *Service, userID string, dst *T, parts ...string) bool {
	if s.store == nil {
		return false
	}
	key := s.store.Key(userID, parts...)
	tmp := *dst
	err := s.store.GetJSON(ctx, key, &tmp)
	switch {
	case err == nil:
		*dst = tmp
		return true
	case errors.Is(err, storage.ErrNotFound):
	default:
		logger.Warn("datastore: load %s: %v", key, err)
	}
	return false
}

// write stores v, a copy taken while the snapshot was locked. A failure
// leaves the in-memory change in place and is reported as ErrNotPersisted.
func (s *Service) write(ctx context.Context, userID string, v any, parts ...string) error {
	slice := parts[0]
	if s.store == nil {
		metrics.IncStoreWrite(slice, storage.ErrUnavailable)
		return fmt.Errorf("%w: %s: %v", ErrNotPersisted, slice, storage.ErrUnavailable)
	}
	key := s.store.Key(userID, parts...)
	err := s.store.SetJSON(ctx, key, v)
	metrics.IncStoreWrite(slice, err)
	if err != nil {
		logger.Warn("datastore: save %s: %v", key, err)
		return fmt.Errorf("%w: %s: %v", ErrNotPersisted, slice, err)
	}
	return nil
}

func (s *Service) remove(ctx context.Context, userID string, parts ...string) error {
	slice := parts[0]
	if s.store == nil {
		return fmt.Errorf("%w: %s: %v", ErrNotPersisted, slice, storage.ErrUnavailable)
	}
	key := s.store.Key(userID, parts...)
	err := s.store.Delete(ctx, key)
	metrics.IncStoreWrite(slice, err)
	if err != nil {
		logger.Warn("datastore: delete %s: %v", key, err)
		return fmt.Errorf("%w: %s: %v", ErrNotPersisted, slice, err)
	}
	return nil
}
