package datastore

import (
	"context"
	"fmt"
	"math"
	"slices"
)

func (s *Service) Programs() []Program {
	out := make([]Program, len(s.catalog.Programs))
	for i, p := range s.catalog.Programs {
		p.Schedule = clone(p.Schedule)
		out[i] = p
	}
	return out
}

// StartProgram makes programID the active program, replacing any other.
func (s *Service) StartProgram(ctx context.Context, userID, programID string) (ProgramState, error) {
	p, ok := s.catalog.program(programID)
	if !ok {
		return ProgramState{}, ErrProgramNotFound
	}
	state := ProgramState{
		ProgramID:         p.ID,
		ProgramName:       p.Name,
		CurrentWeek:       1,
		CompletedWorkouts: []string{},
		StartedAt:         s.now().UTC(),
	}

	snap := s.acquire(ctx, userID)
	active := state
	snap.program = &active
	snap.mu.Unlock()

	return state, s.write(ctx, userID, state, keyProgram)
}

func (s *Service) EndProgram(ctx context.Context, userID string) error {
	snap := s.acquire(ctx, userID)
	if snap.program == nil {
		snap.mu.Unlock()
		return nil
	}
	snap.program = nil
	snap.mu.Unlock()

	return s.remove(ctx, userID, keyProgram)
}

// CompleteWorkout marks day of week as done. Completing the same day twice
// changes nothing; currentWeek follows the highest completed week.
func (s *Service) CompleteWorkout(ctx context.Context, userID string, week, day int) (ProgramState, error) {
	if week < 1 || day < 1 || day > 7 {
		return ProgramState{}, fmt.Errorf("%w: week %d day %d", ErrInvalidEntry, week, day)
	}
	key := fmt.Sprintf("%d-%d", week, day)

	snap := s.acquire(ctx, userID)
	if snap.program == nil {
		snap.mu.Unlock()
		return ProgramState{}, ErrNoActiveProgram
	}
	p := snap.program
	if slices.Contains(p.CompletedWorkouts, key) {
		state := copyProgram(*p)
		snap.mu.Unlock()
		return state, nil
	}
	p.CompletedWorkouts = append(p.CompletedWorkouts, key)
	p.CurrentWeek = max(p.CurrentWeek, week)
	state := copyProgram(*p)
	snap.mu.Unlock()

	return state, s.write(ctx, userID, state, keyProgram)
}

func (s *Service) ActiveProgram(ctx context.Context, userID string) (ProgramState, bool) {
	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()
	if snap.program == nil {
		return ProgramState{}, false
	}
	return copyProgram(*snap.program), true
}

// ProgramProgress reports completion of the active program. The percentage
// is rounded and kept within [0, 100]; it is zero with no active program.
func (s *Service) ProgramProgress(ctx context.Context, userID string) ProgramProgress {
	snap := s.acquire(ctx, userID)
	defer snap.mu.Unlock()
	return s.progress(snap.program)
}

func (s *Service) progress(state *ProgramState) ProgramProgress {
	if state == nil {
		return ProgramProgress{}
	}
	out := ProgramProgress{CompletedWorkouts: len(state.CompletedWorkouts)}
	if p, ok := s.catalog.program(state.ProgramID); ok {
		out.TotalWorkouts = p.TotalWorkouts()
	}
	if out.TotalWorkouts == 0 {
		return out
	}
	pct := math.Round(float64(out.CompletedWorkouts) / float64(out.TotalWorkouts) * 100)
	out.PercentComplete = int(math.Min(100, math.Max(0, pct)))
	return out
}

func copyProgram(p ProgramState) ProgramState {
	p.CompletedWorkouts = clone(p.CompletedWorkouts)
	return p
}
