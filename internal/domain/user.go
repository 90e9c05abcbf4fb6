package domain

import (
	"context"
	"time"
)

type User struct {
	ID           string
	Username     string
	PasswordHash string
	IsCoach      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateUserInput struct {
	Username     string
	PasswordHash string
	IsCoach      bool
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, input CreateUserInput) (*User, error)
	SetPassword(ctx context.Context, userID string, passwordHash string) (*User, error)
}
