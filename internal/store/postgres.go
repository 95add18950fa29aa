package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xeze-org/exercise-tracker/internal/models"
)

const pgUniqueViolation = "23505"

// PostgresStore keeps users and exercises in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users and exercises tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			username   TEXT UNIQUE NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS exercises (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			description TEXT NOT NULL,
			duration    DOUBLE PRECISION NOT NULL,
			date        DATE NOT NULL,
			created_at  TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS exercises_user_date_idx ON exercises (user_id, date);
	`)
	return err
}

func (s *PostgresStore) InsertUser(ctx context.Context, username string) (*models.User, error) {
	u := models.User{ID: uuid.NewString(), Username: username}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username) VALUES ($1, $2)`,
		u.ID, u.Username,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, models.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) FindUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, username FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		var u models.User
		err := row.Scan(&u.ID, &u.Username)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) InsertExercise(ctx context.Context, ex *models.Exercise) error {
	ex.ID = uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO exercises (id, user_id, description, duration, date)
		 VALUES ($1, $2, $3, $4, $5)`,
		ex.ID, ex.UserID, ex.Description, ex.Duration, ex.Date,
	)
	if err != nil {
		return fmt.Errorf("create exercise: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindExercises(ctx context.Context, filter models.ExerciseFilter) ([]models.Exercise, error) {
	query, args := exerciseSQL(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Exercise, error) {
		var ex models.Exercise
		err := row.Scan(&ex.ID, &ex.UserID, &ex.Description, &ex.Duration, &ex.Date)
		ex.Date = ex.Date.UTC()
		return ex, err
	})
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return out, nil
}

func exerciseSQL(filter models.ExerciseFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT id, user_id, description, duration, date FROM exercises WHERE user_id = $1`)
	args := []any{filter.UserID}

	if filter.From != nil {
		args = append(args, *filter.From)
		fmt.Fprintf(&b, " AND date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		fmt.Fprintf(&b, " AND date <= $%d", len(args))
	}
	b.WriteString(" ORDER BY date, id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}
