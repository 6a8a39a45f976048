package datastore

import (
	"context"
	"fmt"
)

func (s *Service) Goals(ctx context.Context, userID string) DailyGoals {
	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()
	return snap.goals
}

// UpdateGoals merges patch into the current goals.
func (s *Service) UpdateGoals(ctx context.Context, userID string, patch GoalsPatch) (DailyGoals, error) {
	if err := patch.validate(); err != nil {
		return DailyGoals{}, err
	}

	snap := s.acquire(ctx, userID)
	g := &snap.goals
	if patch.Calories != nil {
		g.Calories = *patch.Calories
	}
	if patch.ProteinG != nil {
		g.ProteinG = *patch.ProteinG
	}
	if patch.CarbsG != nil {
		g.CarbsG = *patch.CarbsG
	}
	if patch.FatG != nil {
		g.FatG = *patch.FatG
	}
	if patch.WaterMl != nil {
		g.WaterMl = *patch.WaterMl
	}
	if patch.WeightKg != nil {
		g.WeightKg = *patch.WeightKg
	}
	if patch.WorkoutsPerWeek != nil {
		g.WorkoutsPerWeek = *patch.WorkoutsPerWeek
	}
	goals := *g
	snap.mu.Unlock()

	return goals, s.write(ctx, userID, goals, keyGoals)
}

func (p GoalsPatch) validate() error {
	negative := func(v *float64) bool { return v != nil && *v < 0 }
	if negative(p.Calories) || negative(p.ProteinG) || negative(p.CarbsG) || negative(p.FatG) || negative(p.WeightKg) {
		return fmt.Errorf("%w: goals must not be negative", ErrInvalidEntry)
	}
	if (p.WaterMl != nil && *p.WaterMl < 0) || (p.WorkoutsPerWeek != nil && *p.WorkoutsPerWeek < 0) {
		return fmt.Errorf("%w: goals must not be negative", ErrInvalidEntry)
	}
	return nil
}

// Today summarizes the current day in one read.
func (s *Service) Today(ctx context.Context, userID string) DailySummary {
	now := s.now()
	date := now.Format(dateLayout)

	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()

	day := s.day(ctx, userID, snap, date)
	summary := DailySummary{
		Date:             date,
		Nutrition:        sumNutrition(day.food),
		Goals:            snap.goals,
		Water:            WaterIntake{IntakeMl: day.waterMl, GoalMl: snap.goals.WaterMl},
		SupplementsTaken: takenCount(snap.supplements, day.taken),
		SupplementsTotal: len(snap.supplements),
		WorkoutsThisWeek: thisWeek(snap.workouts, now),
		Streak:           streak(snap.workouts, now),
	}
	if len(snap.weights) > 0 {
		summary.LatestWeightKg = snap.weights[0].WeightKg
	}
	if snap.program != nil {
		progress := s.progress(snap.program)
		summary.Program = &progress
	}
	return summary
}
