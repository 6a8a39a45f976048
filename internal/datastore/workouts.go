package datastore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zoonmattau/healthtracker-sub000/internal/logger"
)

// SaveWorkout totals the record's sets and volume, dates it today when no
// date is given and stores it newest first. A record naming a built-in or
// saved template bumps that template's usage count; unknown ids are ignored.
func (s *Service) SaveWorkout(ctx context.Context, userID string, rec WorkoutRecord) (WorkoutRecord, error) {
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return WorkoutRecord{}, fmt.Errorf("%w: workout name required", ErrInvalidEntry)
	}
	if rec.DurationSeconds < 0 {
		return WorkoutRecord{}, fmt.Errorf("%w: duration must not be negative", ErrInvalidEntry)
	}
	if rec.Date == "" {
		rec.Date = s.today()
	} else if _, err := time.Parse(dateLayout, rec.Date); err != nil {
		return WorkoutRecord{}, fmt.Errorf("%w: date %q", ErrInvalidEntry, rec.Date)
	}
	rec.ID = uuid.NewString()
	rec.Exercises = cloneExercises(rec.Exercises)
	rec.TotalVolume, rec.TotalSets = workoutTotals(rec.Exercises)

	snap := s.acquire(ctx, userID)
	snap.workouts = slices.Insert(snap.workouts, 0, rec)
	workouts := clone(snap.workouts)
	var usage map[string]int
	if s.knownTemplate(snap, rec.TemplateID) {
		snap.usage[rec.TemplateID]++
		usage = cloneUsage(snap.usage)
	}
	snap.mu.Unlock()

	err := s.write(ctx, userID, workouts, keyWorkouts)
	if usage != nil {
		err = errors.Join(err, s.write(ctx, userID, usage, keyTemplateUsage))
	}
	return rec, err
}

func (s *Service) Workouts(ctx context.Context, userID string) []WorkoutRecord {
	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()
	out := make([]WorkoutRecord, len(snap.workouts))
	for i, w := range snap.workouts {
		w.Exercises = cloneExercises(w.Exercises)
		out[i] = w
	}
	return out
}

func (s *Service) DeleteWorkout(ctx context.Context, userID, id string) error {
	snap := s.acquire(ctx, userID)
	i := slices.IndexFunc(snap.workouts, func(w WorkoutRecord) bool { return w.ID == id })
	if i < 0 {
		snap.mu.Unlock()
		return ErrNotFound
	}
	snap.workouts = slices.Delete(snap.workouts, i, i+1)
	workouts := clone(snap.workouts)
	snap.mu.Unlock()

	return s.write(ctx, userID, workouts, keyWorkouts)
}

// WorkoutStreak counts consecutive days with at least one workout, ending
// today, or yesterday when nothing is logged yet today.
func (s *Service) WorkoutStreak(ctx context.Context, userID string) int {
	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()
	return streak(snap.workouts, s.now())
}

// WorkoutsThisWeek counts workouts dated from this week's Monday to today.
func (s *Service) WorkoutsThisWeek(ctx context.Context, userID string) int {
	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()
	return thisWeek(snap.workouts, s.now())
}

func streak(workouts []WorkoutRecord, now time.Time) int {
	days := make(map[string]bool, len(workouts))
	for _, w := range workouts {
		days[w.Date] = true
	}
	day := now
	if !days[day.Format(dateLayout)] {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for days[day.Format(dateLayout)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

func thisWeek(workouts []WorkoutRecord, now time.Time) int {
	offset := (int(now.Weekday()) + 6) % 7
	monday := now.AddDate(0, 0, -offset).Format(dateLayout)
	today := now.Format(dateLayout)
	n := 0
	for _, w := range workouts {
		if w.Date >= monday && w.Date <= today {
			n++
		}
	}
	return n
}

func workoutTotals(exercises []Exercise) (float64, int) {
	var volume float64
	var sets int
	for _, ex := range exercises {
		for _, set := range ex.Sets {
			volume += set.Weight * float64(set.Reps)
			sets++
		}
	}
	return volume, sets
}

// Templates lists the built-in templates followed by the user's own, each
// with its usage count.
func (s *Service) Templates(ctx context.Context, userID string) []WorkoutTemplate {
	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()

	out := make([]WorkoutTemplate, 0, len(s.catalog.Templates)+len(snap.templates))
	out = append(out, s.catalog.Templates...)
	out = append(out, snap.templates...)
	for i := range out {
		out[i].Exercises = clone(out[i].Exercises)
		out[i].TimesUsed = snap.usage[out[i].ID]
	}
	return out
}

// SaveTemplate creates a template, or replaces the user template with the
// same id.
func (s *Service) SaveTemplate(ctx context.Context, userID string, t WorkoutTemplate) (WorkoutTemplate, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return WorkoutTemplate{}, fmt.Errorf("%w: template name required", ErrInvalidEntry)
	}
	if _, ok := s.catalog.template(t.ID); ok {
		return WorkoutTemplate{}, ErrDefaultTemplate
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.IsDefault = false
	t.Exercises = clone(t.Exercises)

	snap := s.acquire(ctx, userID)
	if i := slices.IndexFunc(snap.templates, func(x WorkoutTemplate) bool { return x.ID == t.ID }); i >= 0 {
		snap.templates[i] = t
	} else {
		snap.templates = append(snap.templates, t)
	}
	t.TimesUsed = snap.usage[t.ID]
	templates := clone(snap.templates)
	snap.mu.Unlock()

	return t, s.write(ctx, userID, templates, keyTemplates)
}

// DeleteTemplate removes a user template. Built-in templates are left in
// place and reported with ErrDefaultTemplate.
func (s *Service) DeleteTemplate(ctx context.Context, userID, id string) error {
	if _, ok := s.catalog.template(id); ok {
		logger.Warn("datastore: %s tried to delete default template %s", userID, id)
		return ErrDefaultTemplate
	}

	snap := s.acquire(ctx, userID)
	i := slices.IndexFunc(snap.templates, func(t WorkoutTemplate) bool { return t.ID == id })
	if i < 0 {
		snap.mu.Unlock()
		return ErrNotFound
	}
	snap.templates = slices.Delete(snap.templates, i, i+1)
	templates := clone(snap.templates)
	snap.mu.Unlock()

	return s.write(ctx, userID, templates, keyTemplates)
}

// UseTemplate builds an unsaved workout from a template: one empty set per
// target set, with the target reps filled in. Saving it counts as a use.
func (s *Service) UseTemplate(ctx context.Context, userID, id string) (WorkoutRecord, error) {
	t, ok := s.catalog.template(id)
	if !ok {
		snap := s.acquire(ctx, userID)
		i := slices.IndexFunc(snap.templates, func(x WorkoutTemplate) bool { return x.ID == id })
		if i >= 0 {
			t = snap.templates[i]
			ok = true
		}
		snap.mu.Unlock()
	}
	if !ok {
		return WorkoutRecord{}, ErrNotFound
	}

	draft := WorkoutRecord{
		Date:       s.today(),
		Name:       t.Name,
		TemplateID: t.ID,
		Exercises:  make([]Exercise, 0, len(t.Exercises)),
	}
	for _, ex := range t.Exercises {
		sets := make([]SetEntry, max(ex.TargetSets, 0))
		for i := range sets {
			sets[i].Reps = ex.TargetReps
		}
		draft.Exercises = append(draft.Exercises, Exercise{Name: ex.Name, Muscle: ex.Muscle, Sets: sets})
	}
	return draft, nil
}

// knownTemplate reports whether id names a built-in or user template. snap
// must be locked.
func (s *Service) knownTemplate(snap *snapshot, id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s.catalog.template(id); ok {
		return true
	}
	return slices.ContainsFunc(snap.templates, func(t WorkoutTemplate) bool { return t.ID == id })
}

func clone[T any](s []T) []T {
	return append(make([]T, 0, len(s)), s...)
}

func cloneExercises(exercises []Exercise) []Exercise {
	out := make([]Exercise, len(exercises))
	for i, ex := range exercises {
		ex.Sets = clone(ex.Sets)
		out[i] = ex
	}
	return out
}

func cloneUsage(usage map[string]int) map[string]int {
	out := make(map[string]int, len(usage))
	for k, v := range usage {
		out[k] = v
	}
	return out
}
