package datastore

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

func (s *Service) AddFoodEntry(ctx context.Context, userID string, entry FoodEntry) (FoodEntry, error) {
	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		return FoodEntry{}, fmt.Errorf("%w: food name required", ErrInvalidEntry)
	}
	if entry.Meal == "" {
		entry.Meal = MealSnack
	}
	if !entry.Meal.valid() {
		return FoodEntry{}, fmt.Errorf("%w: unknown meal %q", ErrInvalidEntry, entry.Meal)
	}
	if entry.Calories < 0 || entry.ProteinG < 0 || entry.CarbsG < 0 || entry.FatG < 0 {
		return FoodEntry{}, fmt.Errorf("%w: nutrition values must not be negative", ErrInvalidEntry)
	}
	entry.ID = uuid.NewString()

	date := s.today()
	snap := s.acquire(ctx, userID)
	day := s.day(ctx, userID, snap, date)
	day.food = append(day.food, entry)
	food := clone(day.food)
	snap.mu.Unlock()

	return entry, s.write(ctx, userID, food, keyFood, date)
}

func (s *Service) RemoveFoodEntry(ctx context.Context, userID, id string) error {
	date := s.today()
	snap := s.acquire(ctx, userID)
	day := s.day(ctx, userID, snap, date)
	i := slices.IndexFunc(day.food, func(e FoodEntry) bool { return e.ID == id })
	if i < 0 {
		snap.mu.Unlock()
		return ErrNotFound
	}
	day.food = slices.Delete(day.food, i, i+1)
	food := clone(day.food)
	snap.mu.Unlock()

	return s.write(ctx, userID, food, keyFood, date)
}

func (s *Service) TodayFood(ctx context.Context, userID string) []FoodEntry {
	date := s.today()
	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()
	return clone(s.day(ctx, userID, snap, date).food)
}

func (s *Service) TodayNutrition(ctx context.Context, userID string) Nutrition {
	date := s.today()
	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()
	return sumNutrition(s.day(ctx, userID, snap, date).food)
}

func sumNutrition(entries []FoodEntry) Nutrition {
	var n Nutrition
	for _, e := range entries {
		n.Calories += e.Calories
		n.ProteinG += e.ProteinG
		n.CarbsG += e.CarbsG
		n.FatG += e.FatG
	}
	return n
}

// AddWater adds deltaMl to today's intake, which never drops below zero.
func (s *Service) AddWater(ctx context.Context, userID string, deltaMl int) (WaterIntake, error) {
	date := s.today()
	snap := s.acquire(ctx, userID)
	day := s.day(ctx, userID, snap, date)
	day.waterMl = max(0, day.waterMl+deltaMl)
	intake := WaterIntake{IntakeMl: day.waterMl, GoalMl: snap.goals.WaterMl}
	snap.mu.Unlock()

	return intake, s.write(ctx, userID, intake.IntakeMl, keyWater, date)
}

func (s *Service) Water(ctx context.Context, userID string) WaterIntake {
	date := s.today()
	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()
	return WaterIntake{IntakeMl: s.day(ctx, userID, snap, date).waterMl, GoalMl: snap.goals.WaterMl}
}

func (s *Service) AddSupplement(ctx context.Context, userID string, sup Supplement) (Supplement, error) {
	sup.Name = strings.TrimSpace(sup.Name)
	if sup.Name == "" {
		return Supplement{}, fmt.Errorf("%w: supplement name required", ErrInvalidEntry)
	}
	sup.ID = uuid.NewString()

	snap := s.acquire(ctx, userID)
	snap.supplements = append(snap.supplements, sup)
	list := clone(snap.supplements)
	snap.mu.Unlock()

	return sup, s.write(ctx, userID, list, keySupplements)
}

func (s *Service) RemoveSupplement(ctx context.Context, userID, id string) error {
	snap := s.acquire(ctx, userID)
	i := slices.IndexFunc(snap.supplements, func(sup Supplement) bool { return sup.ID == id })
	if i < 0 {
		snap.mu.Unlock()
		return ErrNotFound
	}
	snap.supplements = slices.Delete(snap.supplements, i, i+1)
	list := clone(snap.supplements)
	snap.mu.Unlock()

	return s.write(ctx, userID, list, keySupplements)
}

// Supplements lists every supplement with whether it was taken today.
func (s *Service) Supplements(ctx context.Context, userID string) []SupplementStatus {
	date := s.today()
	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()

	taken := s.day(ctx, userID, snap, date).taken
	out := make([]SupplementStatus, 0, len(snap.supplements))
	for _, sup := range snap.supplements {
		out = append(out, SupplementStatus{Supplement: sup, Taken: slices.Contains(taken, sup.ID)})
	}
	return out
}

// ToggleSupplement flips whether id counts as taken today and reports the
// new state.
func (s *Service) ToggleSupplement(ctx context.Context, userID, id string) (bool, error) {
	date := s.today()
	snap := s.acquire(ctx, userID)
	if !slices.ContainsFunc(snap.supplements, func(sup Supplement) bool { return sup.ID == id }) {
		snap.mu.Unlock()
		return false, ErrNotFound
	}
	day := s.day(ctx, userID, snap, date)
	taken := true
	if i := slices.Index(day.taken, id); i >= 0 {
		day.taken = slices.Delete(day.taken, i, i+1)
		taken = false
	} else {
		day.taken = append(day.taken, id)
	}
	list := clone(day.taken)
	snap.mu.Unlock()

	return taken, s.write(ctx, userID, list, keyTaken, date)
}

// takenCount counts today's taken ids that still name a supplement.
func takenCount(supplements []Supplement, taken []string) int {
	n := 0
	for _, sup := range supplements {
		if slices.Contains(taken, sup.ID) {
			n++
		}
	}
	return n
}
