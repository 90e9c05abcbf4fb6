package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coachbase/backend/internal/domain"
)

type PostgresAthleteRepository struct {
	db *sql.DB
}

func NewPostgresAthleteRepository(db *sql.DB) *PostgresAthleteRepository {
	return &PostgresAthleteRepository{db: db}
}

func (r *PostgresAthleteRepository) FindByID(ctx context.Context, id string) (*domain.Athlete, error) {
	query := `
		SELECT id, coach_id, name, birth_date, notes, created_at, updated_at
		FROM athletes
		WHERE id = $1
	`

	var athlete domain.Athlete
	var birthDate sql.NullTime
	var notes sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&athlete.ID,
		&athlete.CoachID,
		&athlete.Name,
		&birthDate,
		&notes,
		&athlete.CreatedAt,
		&athlete.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	athlete.BirthDate = fromNullTime(birthDate)
	athlete.Notes = notes.String

	return &athlete, nil
}

func (r *PostgresAthleteRepository) FindByCoachID(ctx context.Context, coachID string, limit, offset int) ([]domain.Athlete, int, error) {
	countQuery := `SELECT COUNT(*) FROM athletes WHERE coach_id = $1`

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, coachID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, coach_id, name, birth_date, notes, created_at, updated_at
		FROM athletes
		WHERE coach_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, coachID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var athletes []domain.Athlete
	for rows.Next() {
		var athlete domain.Athlete
		var birthDate sql.NullTime
		var notes sql.NullString

		err := rows.Scan(
			&athlete.ID,
			&athlete.CoachID,
			&athlete.Name,
			&birthDate,
			&notes,
			&athlete.CreatedAt,
			&athlete.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}

		athlete.BirthDate = fromNullTime(birthDate)
		athlete.Notes = notes.String
		athletes = append(athletes, athlete)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return athletes, total, nil
}

func (r *PostgresAthleteRepository) Create(ctx context.Context, input domain.CreateAthleteInput) (*domain.Athlete, error) {
	query := `
		INSERT INTO athletes (coach_id, name, birth_date, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, coach_id, name, birth_date, notes, created_at, updated_at
	`

	var athlete domain.Athlete
	var birthDate sql.NullTime
	var notes sql.NullString

	err := r.db.QueryRowContext(ctx, query,
		input.CoachID,
		input.Name,
		toNullTime(input.BirthDate),
		toNullStringValue(input.Notes),
	).Scan(
		&athlete.ID,
		&athlete.CoachID,
		&athlete.Name,
		&birthDate,
		&notes,
		&athlete.CreatedAt,
		&athlete.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	athlete.BirthDate = fromNullTime(birthDate)
	athlete.Notes = notes.String

	return &athlete, nil
}

func (r *PostgresAthleteRepository) Update(ctx context.Context, id string, input domain.UpdateAthleteInput) (*domain.Athlete, error) {
	query := `
		UPDATE athletes
		SET name = COALESCE($2, name),
		    birth_date = COALESCE($3, birth_date),
		    notes = COALESCE($4, notes),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, coach_id, name, birth_date, notes, created_at, updated_at
	`

	var athlete domain.Athlete
	var birthDate sql.NullTime
	var notes sql.NullString

	err := r.db.QueryRowContext(ctx, query,
		id,
		toNullString(input.Name),
		toNullTime(input.BirthDate),
		toNullString(input.Notes),
	).Scan(
		&athlete.ID,
		&athlete.CoachID,
		&athlete.Name,
		&birthDate,
		&notes,
		&athlete.CreatedAt,
		&athlete.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	athlete.BirthDate = fromNullTime(birthDate)
	athlete.Notes = notes.String

	return &athlete, nil
}

func (r *PostgresAthleteRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM athletes WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
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

var _ domain.AthleteRepository = (*PostgresAthleteRepository)(nil)
