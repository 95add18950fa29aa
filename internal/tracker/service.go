// Package tracker registers users, records their exercises and answers
// exercise log queries.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xeze-org/exercise-tracker/internal/models"
	"github.com/xeze-org/exercise-tracker/internal/observability"
)

// RecordStore is the persistence the service needs for users and exercises.
type RecordStore interface {
	InsertUser(ctx context.Context, username string) (*models.User, error)
	FindUsers(ctx context.Context) ([]models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	InsertExercise(ctx context.Context, ex *models.Exercise) error
	FindExercises(ctx context.Context, filter models.ExerciseFilter) ([]models.Exercise, error)
}

// UserCache fronts user lookups. Get returns nil, nil on a miss.
type UserCache interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Set(ctx context.Context, u models.User) error
}

// Service implements user registration, exercise logging and log queries.
type Service struct {
	store  RecordStore
	cache  UserCache
	logger *slog.Logger
	now    func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithUserCache puts a cache in front of user lookups.
func WithUserCache(c UserCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source used for default exercise dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store RecordStore, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers a new username.
func (s *Service) CreateUser(ctx context.Context, username string) (*UserView, error) {
	if username == "" {
		return nil, invalid("Username is required")
	}
	u, err := s.store.InsertUser(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	observability.RecordUserCreated()
	s.remember(ctx, *u)
	return &UserView{ID: u.ID, Username: u.Username}, nil
}

// ListUsers returns every user; never nil.
func (s *Service) ListUsers(ctx context.Context) ([]UserView, error) {
	users, err := s.store.FindUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, UserView{ID: u.ID, Username: u.Username})
	}
	return out, nil
}

// ResolveUser looks a user up by id, returning ErrUserNotFound when absent.
func (s *Service) ResolveUser(ctx context.Context, id string) (*models.User, error) {
	if s.cache != nil {
		u, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("user cache read failed", "user_id", id, "error", err)
		} else if u != nil {
			return u, nil
		}
	}

	u, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	s.remember(ctx, *u)
	return u, nil
}

func (s *Service) remember(ctx context.Context, u models.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, u); err != nil {
		s.logger.Warn("user cache write failed", "user_id", u.ID, "error", err)
	}
}

// ExerciseInput carries the raw form values of a new exercise.
type ExerciseInput struct {
	UserID      string
	Description string
	Duration    string
	Date        string
}

// AddExercise validates and stores an exercise for an existing user.
func (s *Service) AddExercise(ctx context.Context, in ExerciseInput) (*ExerciseView, error) {
	if in.Description == "" || strings.TrimSpace(in.Duration) == "" {
		return nil, invalid("Description and duration are required.")
	}
	duration, ok := parseDuration(in.Duration)
	if !ok {
		return nil, invalid("Duration must be a number.")
	}

	user, err := s.ResolveUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	date := truncateDay(s.now())
	if strings.TrimSpace(in.Date) != "" {
		if date, ok = ParseDate(in.Date); !ok {
			return nil, invalid("Invalid date")
		}
	}

	ex := &models.Exercise{
		UserID:      user.ID,
		Description: in.Description,
		Duration:    duration,
		Date:        date,
	}
	if err := s.store.InsertExercise(ctx, ex); err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}
	observability.RecordExerciseLogged(duration)

	return &ExerciseView{
		ID:          user.ID,
		Username:    user.Username,
		Description: ex.Description,
		Duration:    ex.Duration,
		Date:        FormatDate(ex.Date),
	}, nil
}

// LogQuery carries the raw query parameters of a log request.
type LogQuery struct {
	UserID string
	From   string
	To     string
	Limit  string
}

// GetLogs returns the user's exercises within [From, To], capped at Limit.
// Entries come back in date order and a cap keeps the earliest ones.
func (s *Service) GetLogs(ctx context.Context, q LogQuery) (*LogView, error) {
	user, err := s.ResolveUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	filter := models.ExerciseFilter{UserID: user.ID, Limit: parseLimit(q.Limit)}
	if q.From != "" {
		from, ok := ParseDate(q.From)
		if !ok {
			return nil, invalid("Invalid from date")
		}
		filter.From = &from
	}
	if q.To != "" {
		to, ok := ParseDate(q.To)
		if !ok {
			return nil, invalid("Invalid to date")
		}
		filter.To = &to
	}

	exercises, err := s.store.FindExercises(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find exercises: %w", err)
	}
	if filter.Limit > 0 && len(exercises) > filter.Limit {
		exercises = exercises[:filter.Limit]
	}

	entries := make([]LogEntry, 0, len(exercises))
	for _, ex := range exercises {
		entries = append(entries, LogEntry{
			Description: ex.Description,
			Duration:    ex.Duration,
			Date:        FormatDate(ex.Date),
		})
	}
	observability.RecordLogQuery(len(entries))

	return &LogView{
		Username: user.Username,
		Count:    len(entries),
		ID:       user.ID,
		Log:      entries,
	}, nil
}
