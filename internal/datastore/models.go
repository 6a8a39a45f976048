package datastore

import "time"

// dateLayout is the day format used for record dates and per-day keys.
const dateLayout = "2006-01-02"

type WeightEntry struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	WeightKg float64 `json:"weightKg"`
}

type SleepQuality string

const (
	SleepPoor      SleepQuality = "poor"
	SleepFair      SleepQuality = "fair"
	SleepGood      SleepQuality = "good"
	SleepExcellent SleepQuality = "excellent"
)

func (q SleepQuality) valid() bool {
	switch q {
	case SleepPoor, SleepFair, SleepGood, SleepExcellent:
		return true
	}
	return false
}

type SleepEntry struct {
	ID            string       `json:"id"`
	Date          string       `json:"date"`
	Bedtime       string       `json:"bedtime"`
	WakeTime      string       `json:"wakeTime"`
	DurationHours float64      `json:"durationHours"`
	Quality       SleepQuality `json:"quality"`
}

// SleepInput is a night to log. Times are "HH:MM"; an empty Date means today.
type SleepInput struct {
	Date     string       `json:"date"`
	Bedtime  string       `json:"bedtime"`
	WakeTime string       `json:"wakeTime"`
	Quality  SleepQuality `json:"quality"`
}

type Meal string

const (
	MealBreakfast Meal = "breakfast"
	MealLunch     Meal = "lunch"
	MealDinner    Meal = "dinner"
	MealSnack     Meal = "snack"
)

func (m Meal) valid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

type FoodEntry struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"proteinG"`
	CarbsG   float64 `json:"carbsG"`
	FatG     float64 `json:"fatG"`
	Meal     Meal    `json:"meal"`
}

type Nutrition struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"proteinG"`
	CarbsG   float64 `json:"carbsG"`
	FatG     float64 `json:"fatG"`
}

type WaterIntake struct {
	IntakeMl int `json:"intakeMl"`
	GoalMl   int `json:"goalMl"`
}

type Supplement struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	TimeOfDay string `json:"timeOfDay,omitempty"`
}

// SupplementStatus is a supplement with today's taken flag.
type SupplementStatus struct {
	Supplement
	Taken bool `json:"taken"`
}

type SetEntry struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

type Exercise struct {
	Name   string     `json:"name"`
	Muscle string     `json:"muscle"`
	Sets   []SetEntry `json:"sets"`
}

type WorkoutRecord struct {
	ID              string     `json:"id"`
	Date            string     `json:"date"`
	Name            string     `json:"name"`
	DurationSeconds int        `json:"durationSeconds"`
	Exercises       []Exercise `json:"exercises"`
	TotalVolume     float64    `json:"totalVolume"`
	TotalSets       int        `json:"totalSets"`
	TemplateID      string     `json:"templateId,omitempty"`
}

type TemplateExercise struct {
	Name       string `json:"name" yaml:"name"`
	Muscle     string `json:"muscle" yaml:"muscle"`
	TargetSets int    `json:"targetSets" yaml:"targetSets"`
	TargetReps int    `json:"targetReps" yaml:"targetReps"`
}

type WorkoutTemplate struct {
	ID                       string             `json:"id" yaml:"id"`
	Name                     string             `json:"name" yaml:"name"`
	Description              string             `json:"description,omitempty" yaml:"description"`
	Exercises                []TemplateExercise `json:"exercises" yaml:"exercises"`
	EstimatedDurationMinutes int                `json:"estimatedDurationMinutes" yaml:"estimatedDurationMinutes"`
	TimesUsed                int                `json:"timesUsed" yaml:"-"`
	IsDefault                bool               `json:"isDefault" yaml:"-"`
}

// ProgramDay assigns a template, or a rest day, to a day of the week (1 = Monday).
type ProgramDay struct {
	Day        int    `json:"day" yaml:"day"`
	TemplateID string `json:"templateId,omitempty" yaml:"templateId"`
	Rest       bool   `json:"rest,omitempty" yaml:"rest"`
}

type Program struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description"`
	Weeks       int          `json:"weeks" yaml:"weeks"`
	Schedule    []ProgramDay `json:"schedule" yaml:"schedule"`
}

// TotalWorkouts is the number of scheduled training days across all weeks.
func (p Program) TotalWorkouts() int {
	perWeek := 0
	for _, d := range p.Schedule {
		if !d.Rest {
			perWeek++
		}
	}
	return perWeek * p.Weeks
}

// ProgramState is the active program. CompletedWorkouts holds unique
// "week-day" keys in completion order.
type ProgramState struct {
	ProgramID         string    `json:"programId"`
	ProgramName       string    `json:"programName"`
	CurrentWeek       int       `json:"currentWeek"`
	CompletedWorkouts []string  `json:"completedWorkouts"`
	StartedAt         time.Time `json:"startedAt"`
}

type ProgramProgress struct {
	CompletedWorkouts int `json:"completedWorkouts"`
	TotalWorkouts     int `json:"totalWorkouts"`
	PercentComplete   int `json:"percentComplete"`
}

type DailyGoals struct {
	Calories        float64 `json:"calories"`
	ProteinG        float64 `json:"proteinG"`
	CarbsG          float64 `json:"carbsG"`
	FatG            float64 `json:"fatG"`
	WaterMl         int     `json:"waterMl"`
	WeightKg        float64 `json:"weightKg"`
	WorkoutsPerWeek int     `json:"workoutsPerWeek"`
}

// GoalsPatch is a partial goals update; nil fields are kept.
type GoalsPatch struct {
	Calories        *float64 `json:"calories"`
	ProteinG        *float64 `json:"proteinG"`
	CarbsG          *float64 `json:"carbsG"`
	FatG            *float64 `json:"fatG"`
	WaterMl         *int     `json:"waterMl"`
	WeightKg        *float64 `json:"weightKg"`
	WorkoutsPerWeek *int     `json:"workoutsPerWeek"`
}

func DefaultGoals() DailyGoals {
	return DailyGoals{
		Calories:        2000,
		ProteinG:        150,
		CarbsG:          200,
		FatG:            65,
		WaterMl:         2500,
		WorkoutsPerWeek: 4,
	}
}

// DailySummary aggregates today's figures.
type DailySummary struct {
	Date             string           `json:"date"`
	Nutrition        Nutrition        `json:"nutrition"`
	Goals            DailyGoals       `json:"goals"`
	Water            WaterIntake      `json:"water"`
	SupplementsTaken int              `json:"supplementsTaken"`
	SupplementsTotal int              `json:"supplementsTotal"`
	WorkoutsThisWeek int              `json:"workoutsThisWeek"`
	Streak           int              `json:"streak"`
	LatestWeightKg   float64          `json:"latestWeightKg,omitempty"`
	Program          *ProgramProgress `json:"program,omitempty"`
}
