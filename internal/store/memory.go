package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/xeze-org/exercise-tracker/internal/models"
)

// MemoryStore keeps records in process memory for local development and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	users     []models.User
	byID      map[string]int
	usernames map[string]struct{}
	exercises []models.Exercise
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[string]int),
		usernames: make(map[string]struct{}),
	}
}

func (s *MemoryStore) InsertUser(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[username]; taken {
		return nil, models.ErrDuplicateUsername
	}
	u := models.User{ID: uuid.NewString(), Username: username}
	s.byID[u.ID] = len(s.users)
	s.users = append(s.users, u)
	s.usernames[username] = struct{}{}
	return &u, nil
}

func (s *MemoryStore) FindUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *MemoryStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	u := s.users[i]
	return &u, nil
}

func (s *MemoryStore) InsertExercise(ctx context.Context, ex *models.Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ex.ID = uuid.NewString()
	s.exercises = append(s.exercises, *ex)
	return nil
}

func (s *MemoryStore) FindExercises(ctx context.Context, filter models.ExerciseFilter) ([]models.Exercise, error) {
	s.mu.RLock()
	out := make([]models.Exercise, 0)
	for _, ex := range s.exercises {
		if ex.UserID != filter.UserID {
			continue
		}
		if filter.From != nil && ex.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && ex.Date.After(*filter.To) {
			continue
		}
		out = append(out, ex)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
