package domain

import (
	"context"
	"time"
)

type Athlete struct {
	ID        string
	CoachID   string
	Name      string
	BirthDate *time.Time
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateAthleteInput struct {
	CoachID   string
	Name      string
	BirthDate *time.Time
	Notes     string
}

type UpdateAthleteInput struct {
	Name      *string
	BirthDate *time.Time
	Notes     *string
}

type AthleteRepository interface {
	FindByID(ctx context.Context, id string) (*Athlete, error)
	FindByCoachID(ctx context.Context, coachID string, limit, offset int) ([]Athlete, int, error)
	Create(ctx context.Context, input CreateAthleteInput) (*Athlete, error)
	Update(ctx context.Context, id string, input UpdateAthleteInput) (*Athlete, error)
	Delete(ctx context.Context, id string) error
}
