package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/coachbase/backend/internal/domain"
)

type PostgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) Create(ctx context.Context, input domain.CreateSessionInput) error {
	query := `
		INSERT INTO sessions (token_hash, user_id, created_at, last_used_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		input.TokenHash,
		input.UserID,
		input.CreatedAt,
		input.LastUsedAt,
	)
	return err
}

// CreateEnforcingQuota runs the insert and the quota trim in one
// transaction. The trim keeps the maxSessions-1 most recently created
// sessions besides the new row, so the new row itself is never deleted and
// at most maxSessions rows remain. maxSessions <= 0 disables the quota.
func (r *PostgresSessionRepository) CreateEnforcingQuota(ctx context.Context, input domain.CreateSessionInput, maxSessions int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO sessions (token_hash, user_id, created_at, last_used_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, insert,
		input.TokenHash,
		input.UserID,
		input.CreatedAt,
		input.LastUsedAt,
	); err != nil {
		return err
	}

	if maxSessions > 0 {
		trim := `
			DELETE FROM sessions
			WHERE user_id = $1
			  AND token_hash <> $2
			  AND token_hash NOT IN (
				SELECT token_hash FROM sessions
				WHERE user_id = $1 AND token_hash <> $2
				ORDER BY created_at DESC
				LIMIT $3
			  )
		`
		if _, err := tx.ExecContext(ctx, trim, input.UserID, input.TokenHash, maxSessions-1); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresSessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	query := `
		SELECT token_hash, user_id, created_at, last_used_at
		FROM sessions
		WHERE token_hash = $1
	`

	var session domain.Session
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&session.TokenHash,
		&session.UserID,
		&session.CreatedAt,
		&session.LastUsedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *PostgresSessionRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM sessions WHERE user_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresSessionRepository) DeleteOldestForUser(ctx context.Context, userID string, keep int) error {
	query := `
		DELETE FROM sessions
		WHERE user_id = $1
		  AND token_hash NOT IN (
			SELECT token_hash FROM sessions
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		  )
	`

	_, err := r.db.ExecContext(ctx, query, userID, keep)
	return err
}

func (r *PostgresSessionRepository) TouchIfNewer(ctx context.Context, tokenHash string, usedAt time.Time) error {
	// The guard keeps last_used_at monotonic under concurrent refreshes of
	// the same token. Zero rows affected means a newer refresh already won.
	query := `
		UPDATE sessions
		SET last_used_at = $2
		WHERE token_hash = $1 AND last_used_at < $2
	`

	_, err := r.db.ExecContext(ctx, query, tokenHash, usedAt)
	return err
}

func (r *PostgresSessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	query := `DELETE FROM sessions WHERE token_hash = $1`

	result, err := r.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *PostgresSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	query := `DELETE FROM sessions WHERE user_id = $1`

	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *PostgresSessionRepository) DeleteByUserIDExcept(ctx context.Context, userID string, keepTokenHash string) error {
	query := `DELETE FROM sessions WHERE user_id = $1 AND token_hash <> $2`

	_, err := r.db.ExecContext(ctx, query, userID, keepTokenHash)
	return err
}

func (r *PostgresSessionRepository) DeleteExpired(ctx context.Context, createdBefore, lastUsedBefore time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE created_at <= $1 OR last_used_at <= $2`

	result, err := r.db.ExecContext(ctx, query, createdBefore, lastUsedBefore)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

var _ domain.SessionRepository = (*PostgresSessionRepository)(nil)
