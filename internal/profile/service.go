package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zoonmattau/healthtracker-sub000/internal/db"
	"github.com/zoonmattau/healthtracker-sub000/internal/metrics"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound    = errors.New("profile not found")
	ErrUnavailable = errors.New("profile store unavailable")
	ErrInvalidUnit = errors.New("unit preference must be metric or imperial")
	ErrInvalid     = errors.New("height and weight must not be negative")
)

type Service struct {
	db db.Querier
}

// NewService accepts a nil querier; every call then fails with ErrUnavailable.
func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	if s.db == nil {
		return Profile{}, ErrUnavailable
	}
	row := s.db.QueryRow(ctx, `
		SELECT user_id, email, name, date_of_birth, gender, height_cm, weight_kg, unit_preference, updated_at
		FROM user_profiles WHERE user_id=$1
	`, userID)
	var p Profile
	err := row.Scan(&p.UserID, &p.Email, &p.Name, &p.DateOfBirth, &p.Gender, &p.HeightCm, &p.WeightKg, &p.UnitPreference, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Update overwrites the profile's fields with patch's non-empty ones,
// creating the row when the user has none yet.
func (s *Service) Update(ctx context.Context, userID string, patch Profile) (Profile, error) {
	if patch.UnitPreference != "" && patch.UnitPreference != UnitMetric && patch.UnitPreference != UnitImperial {
		return Profile{}, ErrInvalidUnit
	}
	if patch.HeightCm < 0 || patch.WeightKg < 0 {
		return Profile{}, ErrInvalid
	}

	p, err := s.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		p = Profile{UserID: userID, UnitPreference: UnitMetric}
	case err != nil:
		metrics.IncProfileUpdate(err)
		return Profile{}, err
	}

	if patch.Email != "" {
		p.Email = patch.Email
	}
	if patch.Name != "" {
		p.Name = patch.Name
	}
	if patch.DateOfBirth != nil && !patch.DateOfBirth.IsZero() {
		p.DateOfBirth = patch.DateOfBirth
	}
	if patch.Gender != "" {
		p.Gender = patch.Gender
	}
	if patch.HeightCm != 0 {
		p.HeightCm = patch.HeightCm
	}
	if patch.WeightKg != 0 {
		p.WeightKg = patch.WeightKg
	}
	if patch.UnitPreference != "" {
		p.UnitPreference = patch.UnitPreference
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO user_profiles (user_id, email, name, date_of_birth, gender, height_cm, weight_kg, unit_preference, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
		ON CONFLICT (user_id) DO UPDATE
		SET email=$2, name=$3, date_of_birth=$4, gender=$5, height_cm=$6, weight_kg=$7, unit_preference=$8, updated_at=now()
		RETURNING updated_at
	`, p.UserID, p.Email, p.Name, p.DateOfBirth, p.Gender, p.HeightCm, p.WeightKg, p.UnitPreference)
	err = row.Scan(&p.UpdatedAt)
	metrics.IncProfileUpdate(err)
	if err != nil {
		return Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

// UpdateWeight sets only the weight column.
func (s *Service) UpdateWeight(ctx context.Context, userID string, weightKg float64) error {
	if s.db == nil {
		return ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.db.Exec(ctx, `
		INSERT INTO user_profiles (user_id, weight_kg, unit_preference, updated_at)
		VALUES ($1,$2,'metric',now())
		ON CONFLICT (user_id) DO UPDATE SET weight_kg=$2, updated_at=now()
	`, userID, weightKg)
	metrics.IncProfileUpdate(err)
	if err != nil {
		return fmt.Errorf("update weight: %w", err)
	}
	return nil
}
