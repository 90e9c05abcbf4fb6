package domain

import (
	"context"
	"time"
)

type Workout struct {
	ID          string
	AthleteID   string
	CoachID     string
	Title       string
	Description string
	ScheduledAt time.Time
	CreatedAt   time.Time
}

type CreateWorkoutInput struct {
	AthleteID   string
	CoachID     string
	Title       string
	Description string
	ScheduledAt time.Time
}

type WorkoutRepository interface {
	FindByID(ctx context.Context, id string) (*Workout, error)
	FindByAthleteID(ctx context.Context, athleteID string, limit, offset int) ([]Workout, int, error)
	FindByCoachID(ctx context.Context, coachID string, limit, offset int) ([]Workout, int, error)
	Create(ctx context.Context, input CreateWorkoutInput) (*Workout, error)
	Delete(ctx context.Context, id string) error
}
