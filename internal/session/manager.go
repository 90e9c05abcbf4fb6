package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coachbase/backend/internal/clock"
	"github.com/coachbase/backend/internal/crypto"
	"github.com/coachbase/backend/internal/domain"
)

// Policy bounds session issuance and lifetime. It is read-only after
// startup.
type Policy struct {
	TokenByteLength    int
	AbsoluteTTL        time.Duration
	RollingTTL         time.Duration
	MaxSessionsPerUser int
}

// Manager owns the session lifecycle: issuing tokens, validating presented
// ones against the absolute and rolling windows, refreshing the rolling
// window on use, and evicting over-quota sessions.
type Manager struct {
	sessions domain.SessionRepository
	users    domain.UserRepository
	tokens   *crypto.TokenSource
	policy   Policy
	clock    clock.Clock
	logger   *slog.Logger
}

type ManagerConfig struct {
	Sessions domain.SessionRepository
	Users    domain.UserRepository
	Tokens   *crypto.TokenSource
	Policy   Policy
	Clock    clock.Clock
	Logger   *slog.Logger
}

func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		sessions: cfg.Sessions,
		users:    cfg.Users,
		tokens:   cfg.Tokens,
		policy:   cfg.Policy,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
	}
}

// Create issues a new session for the user and returns the raw token. The
// insert and the quota trim happen in one store transaction, so concurrent
// logins for the same user cannot leave more than MaxSessionsPerUser live
// sessions behind, and the session created here is never evicted by its
// own insert.
func (m *Manager) Create(ctx context.Context, userID string) (string, error) {
	raw, digest, err := m.tokens.Issue()
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}

	now := m.clock.Now()
	err = m.sessions.CreateEnforcingQuota(ctx, domain.CreateSessionInput{
		TokenHash:  digest,
		UserID:     userID,
		CreatedAt:  now,
		LastUsedAt: now,
	}, m.policy.MaxSessionsPerUser)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return raw, nil
}

// Validate checks a presented raw token and, when it names a live session,
// refreshes the rolling window and returns the authenticated principal.
// A dead token (unknown, absolutely expired, or idle past the rolling
// window) yields domain.ErrUnauthorized; any other error is a store
// failure and must not be treated as an authentication verdict.
func (m *Manager) Validate(ctx context.Context, rawToken string) (*domain.Principal, error) {
	digest := crypto.HashSessionToken(rawToken)

	sess, err := m.sessions.FindByTokenHash(ctx, digest)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}

	now := m.clock.Now()
	if now.Sub(sess.CreatedAt) > m.policy.AbsoluteTTL {
		m.logger.Debug("session past absolute ttl", "user_id", sess.UserID)
		return nil, domain.ErrUnauthorized
	}
	if now.Sub(sess.LastUsedAt) > m.policy.RollingTTL {
		m.logger.Debug("session past rolling ttl", "user_id", sess.UserID)
		return nil, domain.ErrUnauthorized
	}

	// Conditional write: concurrent validations of the same token may
	// complete out of order, and the stored timestamp must never move
	// backward.
	if err := m.sessions.TouchIfNewer(ctx, digest, now); err != nil {
		return nil, fmt.Errorf("session refresh failed: %w", err)
	}

	user, err := m.users.FindByID(ctx, sess.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		m.logger.Error("user missing for live session", "user_id", sess.UserID)
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	return &domain.Principal{User: user, RawToken: rawToken}, nil
}

// Revoke deletes the session named by the raw token. Revoking a session
// that is already gone is not an error.
func (m *Manager) Revoke(ctx context.Context, rawToken string) error {
	digest := crypto.HashSessionToken(rawToken)
	if err := m.sessions.DeleteByTokenHash(ctx, digest); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RevokeOthers deletes every session of the principal's user except the one
// backing the principal itself. Used after a password change.
func (m *Manager) RevokeOthers(ctx context.Context, p *domain.Principal) error {
	digest := crypto.HashSessionToken(p.RawToken)
	if err := m.sessions.DeleteByUserIDExcept(ctx, p.User.ID, digest); err != nil {
		return fmt.Errorf("failed to revoke other sessions: %w", err)
	}
	return nil
}

// RevokeAll deletes every session of a user.
func (m *Manager) RevokeAll(ctx context.Context, userID string) error {
	if err := m.sessions.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// SweepExpired deletes rows that can no longer validate under the current
// policy. Expiry is lazy: an expired row already fails Validate, so this
// only reclaims storage.
func (m *Manager) SweepExpired(ctx context.Context) (int64, error) {
	now := m.clock.Now()
	return m.sessions.DeleteExpired(ctx, now.Add(-m.policy.AbsoluteTTL), now.Add(-m.policy.RollingTTL))
}
