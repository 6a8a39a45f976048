package profile

import "time"

const (
	UnitMetric   = "metric"
	UnitImperial = "imperial"
)

// Profile is the user metadata held remotely in user_profiles.
type Profile struct {
	UserID         string     `json:"userId"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
	Gender         string     `json:"gender"`
	HeightCm       float64    `json:"heightCm"`
	WeightKg       float64    `json:"weightKg"`
	UnitPreference string     `json:"unitPreference"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
