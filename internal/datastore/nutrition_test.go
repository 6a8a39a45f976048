package datastore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTodayNutritionSumsEntries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	foods := []FoodEntry{
		{Name: "Chicken Breast", Calories: 165, ProteinG: 31, FatG: 3.6, Meal: MealLunch},
		{Name: "Brown Rice", Calories: 216, ProteinG: 5, CarbsG: 45, FatG: 1.8, Meal: MealLunch},
		{Name: "Banana", Calories: 105, ProteinG: 1.3, CarbsG: 27, Meal: MealSnack},
	}
	for _, f := range foods {
		if _, err := svc.AddFoodEntry(ctx, "user-1", f); err != nil {
			t.Fatalf("add food: %v", err)
		}
	}

	n := svc.TodayNutrition(ctx, "user-1")
	if n.Calories != 486 {
		t.Fatalf("expected 486 calories, got %v", n.Calories)
	}
	if n.CarbsG != 72 {
		t.Fatalf("expected 72g carbs, got %v", n.CarbsG)
	}
}

func TestRemoveFoodEntry(t *testing.T) {
	svc, server := newTestService(t)
	ctx := context.Background()

	keep, _ := svc.AddFoodEntry(ctx, "user-1", FoodEntry{Name: "Eggs", Calories: 140})
	drop, _ := svc.AddFoodEntry(ctx, "user-1", FoodEntry{Name: "Toast", Calories: 90, Meal: MealBreakfast})

	if err := svc.RemoveFoodEntry(ctx, "user-1", drop.ID); err != nil {
		t.Fatalf("remove food: %v", err)
	}
	if err := svc.RemoveFoodEntry(ctx, "user-1", drop.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second remove, got %v", err)
	}

	var saved []FoodEntry
	stored(t, server, "ht:user-1:food:2026-10-14", &saved)
	if len(saved) != 1 || saved[0].ID != keep.ID || saved[0].Meal != MealSnack {
		t.Fatalf("unexpected stored food %+v", saved)
	}
}

func TestAddFoodValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	bad := []FoodEntry{
		{Name: "  ", Calories: 10},
		{Name: "Soup", Meal: "brunch"},
		{Name: "Soup", Calories: -1},
	}
	for _, f := range bad {
		if _, err := svc.AddFoodEntry(ctx, "user-1", f); !errors.Is(err, ErrInvalidEntry) {
			t.Fatalf("expected invalid entry for %+v, got %v", f, err)
		}
	}
}

func TestFoodIsPerDay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.AddFoodEntry(ctx, "user-1", FoodEntry{Name: "Pizza", Calories: 800}); err != nil {
		t.Fatalf("add food: %v", err)
	}

	svc.now = func() time.Time { return wednesday.AddDate(0, 0, 1) }
	if food := svc.TodayFood(ctx, "user-1"); len(food) != 0 {
		t.Fatalf("expected a fresh day, got %+v", food)
	}
}

func TestAddWaterFloorsAtZero(t *testing.T) {
	svc, server := newTestService(t)
	ctx := context.Background()

	for _, d := range []int{250, 500, -250} {
		if _, err := svc.AddWater(ctx, "user-1", d); err != nil {
			t.Fatalf("add water: %v", err)
		}
	}
	w := svc.Water(ctx, "user-1")
	if w.IntakeMl != 500 || w.GoalMl != 2500 {
		t.Fatalf("unexpected water %+v", w)
	}

	if w, _ := svc.AddWater(ctx, "user-1", -2000); w.IntakeMl != 0 {
		t.Fatalf("water must floor at zero, got %d", w.IntakeMl)
	}
	if raw, _ := server.Get("ht:user-1:water:2026-10-14"); raw != "0" {
		t.Fatalf("expected stored 0, got %q", raw)
	}
}

func TestToggleSupplementTwiceRestores(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	creatine, err := svc.AddSupplement(ctx, "user-1", Supplement{Name: "Creatine", Dosage: "5g"})
	if err != nil {
		t.Fatalf("add supplement: %v", err)
	}
	if _, err := svc.AddSupplement(ctx, "user-1", Supplement{Name: "Vitamin D"}); err != nil {
		t.Fatalf("add supplement: %v", err)
	}

	taken, err := svc.ToggleSupplement(ctx, "user-1", creatine.ID)
	if err != nil || !taken {
		t.Fatalf("expected taken after first toggle: %v %v", taken, err)
	}
	if s := svc.Today(ctx, "user-1"); s.SupplementsTaken != 1 || s.SupplementsTotal != 2 {
		t.Fatalf("unexpected supplement counts %+v", s)
	}

	taken, err = svc.ToggleSupplement(ctx, "user-1", creatine.ID)
	if err != nil || taken {
		t.Fatalf("expected untaken after second toggle: %v %v", taken, err)
	}
	for _, s := range svc.Supplements(ctx, "user-1") {
		if s.Taken {
			t.Fatalf("supplement %s should not be taken", s.Name)
		}
	}

	if _, err := svc.ToggleSupplement(ctx, "user-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveSupplementDropsFromCount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	fish, _ := svc.AddSupplement(ctx, "user-1", Supplement{Name: "Fish Oil"})
	if _, err := svc.ToggleSupplement(ctx, "user-1", fish.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := svc.RemoveSupplement(ctx, "user-1", fish.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s := svc.Today(ctx, "user-1"); s.SupplementsTaken != 0 || s.SupplementsTotal != 0 {
		t.Fatalf("removed supplement still counted: %+v", s)
	}
}

func TestDayLogsAreEvictedWhenTheDateChanges(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddFoodEntry(ctx, "user-1", FoodEntry{Name: "Oats", Calories: 300}); err != nil {
		t.Fatalf("add food: %v", err)
	}

	svc.now = func() time.Time { return wednesday.AddDate(0, 0, 1) }
	if food := svc.TodayFood(ctx, "user-1"); len(food) != 0 {
		t.Fatalf("expected an empty new day, got %v", food)
	}
	if _, err := svc.AddWater(ctx, "user-1", 250); err != nil {
		t.Fatalf("add water: %v", err)
	}

	snap := svc.acquire(ctx, "user-1")
	days := len(snap.days)
	_, kept := snap.days[wednesday.Format(dateLayout)]
	snap.mu.Unlock()
	if days != 1 || kept {
		t.Fatalf("expected only the current day cached, got %d (previous kept: %v)", days, kept)
	}

	svc.now = func() time.Time { return wednesday }
	food := svc.TodayFood(ctx, "user-1")
	if len(food) != 1 || food[0].Name != "Oats" {
		t.Fatalf("previous day should reload from storage, got %v", food)
	}
}
