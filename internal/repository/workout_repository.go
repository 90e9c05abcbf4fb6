package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coachbase/backend/internal/domain"
)

type PostgresWorkoutRepository struct {
	db *sql.DB
}

func NewPostgresWorkoutRepository(db *sql.DB) *PostgresWorkoutRepository {
	return &PostgresWorkoutRepository{db: db}
}

func (r *PostgresWorkoutRepository) FindByID(ctx context.Context, id string) (*domain.Workout, error) {
	query := `
		SELECT id, athlete_id, coach_id, title, description, scheduled_at, created_at
		FROM workouts
		WHERE id = $1
	`

	var workout domain.Workout
	var description sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&workout.ID,
		&workout.AthleteID,
		&workout.CoachID,
		&workout.Title,
		&description,
		&workout.ScheduledAt,
		&workout.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	workout.Description = description.String

	return &workout, nil
}

func (r *PostgresWorkoutRepository) FindByAthleteID(ctx context.Context, athleteID string, limit, offset int) ([]domain.Workout, int, error) {
	return r.findByColumn(ctx, "athlete_id", athleteID, limit, offset)
}

func (r *PostgresWorkoutRepository) FindByCoachID(ctx context.Context, coachID string, limit, offset int) ([]domain.Workout, int, error) {
	return r.findByColumn(ctx, "coach_id", coachID, limit, offset)
}

func (r *PostgresWorkoutRepository) findByColumn(ctx context.Context, column, value string, limit, offset int) ([]domain.Workout, int, error) {
	countQuery := `SELECT COUNT(*) FROM workouts WHERE ` + column + ` = $1`

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, value).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, athlete_id, coach_id, title, description, scheduled_at, created_at
		FROM workouts
		WHERE ` + column + ` = $1
		ORDER BY scheduled_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, value, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var workouts []domain.Workout
	for rows.Next() {
		var workout domain.Workout
		var description sql.NullString

		err := rows.Scan(
			&workout.ID,
			&workout.AthleteID,
			&workout.CoachID,
			&workout.Title,
			&description,
			&workout.ScheduledAt,
			&workout.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}

		workout.Description = description.String
		workouts = append(workouts, workout)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return workouts, total, nil
}

func (r *PostgresWorkoutRepository) Create(ctx context.Context, input domain.CreateWorkoutInput) (*domain.Workout, error) {
	query := `
		INSERT INTO workouts (athlete_id, coach_id, title, description, scheduled_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, athlete_id, coach_id, title, description, scheduled_at, created_at
	`

	var workout domain.Workout
	var description sql.NullString

	err := r.db.QueryRowContext(ctx, query,
		input.AthleteID,
		input.CoachID,
		input.Title,
		toNullStringValue(input.Description),
		input.ScheduledAt,
	).Scan(
		&workout.ID,
		&workout.AthleteID,
		&workout.CoachID,
		&workout.Title,
		&description,
		&workout.ScheduledAt,
		&workout.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	workout.Description = description.String

	return &workout, nil
}

func (r *PostgresWorkoutRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM workouts WHERE id = $1`

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

var _ domain.WorkoutRepository = (*PostgresWorkoutRepository)(nil)
