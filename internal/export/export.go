// Package export renders a user's history as an XLSX workbook.
package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/zoonmattau/healthtracker-sub000/internal/datastore"
)

const (
	SheetWorkouts = "Workouts"
	SheetWeights  = "Weights"
	SheetSleep    = "Sleep"
)

// History is the read side of the data store used for export.
type History interface {
	Workouts(ctx context.Context, userID string) []datastore.WorkoutRecord
	Weights(ctx context.Context, userID string) []datastore.WeightEntry
	Sleep(ctx context.Context, userID string) []datastore.SleepEntry
}

type Service struct {
	history History
}

func NewService(history History) *Service {
	return &Service{history: history}
}

// Workbook builds one sheet per history list, newest rows first.
func (s *Service) Workbook(ctx context.Context, userID string) (*excelize.File, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}

	var workouts [][]any
	for _, w := range s.history.Workouts(ctx, userID) {
		workouts = append(workouts, []any{w.Date, w.Name, w.DurationSeconds / 60, len(w.Exercises), w.TotalSets, w.TotalVolume})
	}
	var weights [][]any
	for _, w := range s.history.Weights(ctx, userID) {
		weights = append(weights, []any{w.Date, w.WeightKg})
	}
	var sleep [][]any
	for _, e := range s.history.Sleep(ctx, userID) {
		sleep = append(sleep, []any{e.Date, e.Bedtime, e.WakeTime, e.DurationHours, string(e.Quality)})
	}

	sheets := []struct {
		name    string
		headers []any
		rows    [][]any
	}{
		{SheetWorkouts, []any{"Date", "Name", "Duration (min)", "Exercises", "Sets", "Volume"}, workouts},
		{SheetWeights, []any{"Date", "Weight (kg)"}, weights},
		{SheetSleep, []any{"Date", "Bedtime", "Wake", "Hours", "Quality"}, sleep},
	}
	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", sh.name, err)
		}
		if err := writeSheet(f, sh.name, header, sh.headers, sh.rows); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, style int, headers []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
