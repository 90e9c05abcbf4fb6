package domain

import (
	"context"
	"time"
)

// Session is one active login. TokenHash is the SHA-256 digest of the raw
// token handed to the client; the raw token is never persisted.
type Session struct {
	TokenHash  string
	UserID     string
	CreatedAt  time.Time
	LastUsedAt time.Time
}

type CreateSessionInput struct {
	TokenHash  string
	UserID     string
	CreatedAt  time.Time
	LastUsedAt time.Time
}

type SessionRepository interface {
	Create(ctx context.Context, input CreateSessionInput) error

	// CreateEnforcingQuota inserts the session and, in the same
	// transaction, deletes the user's oldest sessions so that at most
	// maxSessions remain. The newly inserted row is always retained.
	CreateEnforcingQuota(ctx context.Context, input CreateSessionInput, maxSessions int) error

	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	CountByUser(ctx context.Context, userID string) (int, error)

	// DeleteOldestForUser deletes all but the keep most recently created
	// sessions for a user, ordered by CreatedAt.
	DeleteOldestForUser(ctx context.Context, userID string, keep int) error

	// TouchIfNewer sets LastUsedAt to usedAt only if usedAt is later than
	// the stored value. The stored timestamp never moves backward.
	TouchIfNewer(ctx context.Context, tokenHash string, usedAt time.Time) error

	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteByUserIDExcept(ctx context.Context, userID string, keepTokenHash string) error
	DeleteExpired(ctx context.Context, createdBefore, lastUsedBefore time.Time) (int64, error)
}
