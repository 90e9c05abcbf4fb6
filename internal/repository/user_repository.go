package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/coachbase/backend/internal/domain"
)

const uniqueViolationCode = "23505"

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, username, password_hash, is_coach, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT id, username, password_hash, is_coach, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
	query := `
		INSERT INTO users (username, password_hash, is_coach)
		VALUES ($1, $2, $3)
		RETURNING id, username, password_hash, is_coach, created_at, updated_at
	`

	user, err := r.scanUser(r.db.QueryRowContext(ctx, query,
		input.Username,
		input.PasswordHash,
		input.IsCoach,
	))
	if isUniqueViolation(err) {
		return nil, domain.ErrAlreadyExists
	}
	return user, err
}

func (r *PostgresUserRepository) SetPassword(ctx context.Context, userID string, passwordHash string) (*domain.User, error) {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, username, password_hash, is_coach, created_at, updated_at
	`

	return r.scanUser(r.db.QueryRowContext(ctx, query, userID, passwordHash))
}

func (r *PostgresUserRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.IsCoach,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

var _ domain.UserRepository = (*PostgresUserRepository)(nil)
