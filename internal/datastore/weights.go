package datastore

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zoonmattau/healthtracker-sub000/internal/logger"
)

// AddWeight records weightKg for today, newest first, and forwards it to
// the remote profile. A profile failure is logged only.
func (s *Service) AddWeight(ctx context.Context, userID string, weightKg float64) (WeightEntry, error) {
	if weightKg <= 0 {
		return WeightEntry{}, fmt.Errorf("%w: weight must be positive", ErrInvalidEntry)
	}
	entry := WeightEntry{ID: uuid.NewString(), Date: s.today(), WeightKg: weightKg}

	snap := s.acquire(ctx, userID)
	snap.weights = slices.Insert(snap.weights, 0, entry)
	weights := clone(snap.weights)
	snap.mu.Unlock()

	err := s.write(ctx, userID, weights, keyWeights)
	if s.profile != nil {
		if perr := s.profile.UpdateWeight(ctx, userID, weightKg); perr != nil {
			logger.Warn("datastore: sync weight for %s: %v", userID, perr)
		}
	}
	return entry, err
}

func (s *Service) Weights(ctx context.Context, userID string) []WeightEntry {
	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()
	return clone(snap.weights)
}

// LatestWeight reports the most recent entry, if any.
func (s *Service) LatestWeight(ctx context.Context, userID string) (WeightEntry, bool) {
	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()
	if len(snap.weights) == 0 {
		return WeightEntry{}, false
	}
	return snap.weights[0], true
}

// AddSleep logs a night. The duration spans midnight when the wake time is
// not after the bedtime and is rounded to a tenth of an hour.
func (s *Service) AddSleep(ctx context.Context, userID string, in SleepInput) (SleepEntry, error) {
	hours, err := sleepDuration(in.Bedtime, in.WakeTime)
	if err != nil {
		return SleepEntry{}, err
	}
	if !in.Quality.valid() {
		return SleepEntry{}, fmt.Errorf("%w: unknown sleep quality %q", ErrInvalidEntry, in.Quality)
	}
	date := in.Date
	if date == "" {
		date = s.today()
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return SleepEntry{}, fmt.Errorf("%w: date %q", ErrInvalidEntry, date)
	}

	entry := SleepEntry{
		ID:            uuid.NewString(),
		Date:          date,
		Bedtime:       in.Bedtime,
		WakeTime:      in.WakeTime,
		DurationHours: hours,
		Quality:       in.Quality,
	}

	snap := s.acquire(ctx, userID)
	snap.sleep = slices.Insert(snap.sleep, 0, entry)
	sleep := clone(snap.sleep)
	snap.mu.Unlock()

	return entry, s.write(ctx, userID, sleep, keySleep)
}

func (s *Service) Sleep(ctx context.Context, userID string) []SleepEntry {
	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()
	return clone(snap.sleep)
}

func (s *Service) RemoveSleep(ctx context.Context, userID, id string) error {
	snap := s.acquire(ctx, userID)
	i := slices.IndexFunc(snap.sleep, func(e SleepEntry) bool { return e.ID == id })
	if i < 0 {
		snap.mu.Unlock()
		return ErrNotFound
	}
	snap.sleep = slices.Delete(snap.sleep, i, i+1)
	sleep := clone(snap.sleep)
	snap.mu.Unlock()

	return s.write(ctx, userID, sleep, keySleep)
}

// AverageSleep is the mean duration of nights dated within the last days
// days, today included. It is zero when none are logged.
func (s *Service) AverageSleep(ctx context.Context, userID string, days int) float64 {
	if days <= 0 {
		return 0
	}
	from := s.now().AddDate(0, 0, -(days - 1)).Format(dateLayout)
	to := s.today()

	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()

	var total float64
	var n int
	for _, e := range snap.sleep {
		if e.Date >= from && e.Date <= to {
			total += e.DurationHours
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return roundTenth(total / float64(n))
}

func sleepDuration(bedtime, wake string) (float64, error) {
	bed, err := minutesOfDay(bedtime)
	if err != nil {
		return 0, err
	}
	up, err := minutesOfDay(wake)
	if err != nil {
		return 0, err
	}
	mins := up - bed
	if mins <= 0 {
		mins += 24 * 60
	}
	return roundTenth(float64(mins) / 60), nil
}

func minutesOfDay(hhmm string) (int, error) {
	h, m, ok := strings.Cut(hhmm, ":")
	if !ok {
		return 0, fmt.Errorf("%w: time %q is not HH:MM", ErrInvalidEntry, hhmm)
	}
	hour, herr := strconv.Atoi(h)
	minute, merr := strconv.Atoi(m)
	if herr != nil || merr != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: time %q is not HH:MM", ErrInvalidEntry, hhmm)
	}
	return hour*60 + minute, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
