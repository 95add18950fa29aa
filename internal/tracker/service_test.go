package tracker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xeze-org/exercise-tracker/internal/models"
	"github.com/xeze-org/exercise-tracker/internal/store"
)

var fixedNow = time.Date(2024, time.January, 1, 18, 30, 0, 0, time.UTC)

func newTestService(opts ...Option) (*Service, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(mem, opts...), mem
}

type failingStore struct {
	*store.MemoryStore
	err error
}

func (f failingStore) FindUsers(ctx context.Context) ([]models.User, error) { return nil, f.err }

func (f failingStore) InsertUser(ctx context.Context, username string) (*models.User, error) {
	return nil, f.err
}

func (f failingStore) FindExercises(ctx context.Context, filter models.ExerciseFilter) ([]models.Exercise, error) {
	return nil, f.err
}

type mapCache struct {
	users map[string]models.User
	gets  int
	err   error
}

func (c *mapCache) Get(ctx context.Context, id string) (*models.User, error) {
	c.gets++
	if c.err != nil {
		return nil, c.err
	}
	u, ok := c.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (c *mapCache) Set(ctx context.Context, u models.User) error {
	c.users[u.ID] = u
	return nil
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	u, err := svc.CreateUser(ctx, "fcc_test")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "fcc_test", u.Username)

	_, err = svc.CreateUser(ctx, "fcc_test")
	require.ErrorIs(t, err, ErrUsernameTaken)

	var verr *ValidationError
	_, err = svc.CreateUser(ctx, "")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Username is required", verr.Message)

	blank, err := svc.CreateUser(ctx, "  ")
	require.NoError(t, err)
	require.Equal(t, "  ", blank.Username)

	other, err := svc.CreateUser(ctx, "someone_else")
	require.NoError(t, err)
	require.NotEqual(t, u.ID, other.ID)

	resolved, err := svc.ResolveUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, resolved.ID)
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.NotNil(t, users)
	require.Empty(t, users)

	a, err := svc.CreateUser(ctx, "a")
	require.NoError(t, err)
	b, err := svc.CreateUser(ctx, "b")
	require.NoError(t, err)

	users, err = svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, []UserView{*a, *b}, users)
}

func TestStoreFailuresAreWrapped(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")
	svc := NewService(failingStore{MemoryStore: store.NewMemoryStore(), err: boom})

	_, err := svc.ListUsers(ctx)
	require.ErrorIs(t, err, boom)

	_, err = svc.CreateUser(ctx, "x")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrUsernameTaken)
}

func TestAddExercise(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	u, err := svc.CreateUser(ctx, "fcc_test")
	require.NoError(t, err)

	got, err := svc.AddExercise(ctx, ExerciseInput{UserID: u.ID, Description: "test run", Duration: "30", Date: "2023-05-15"})
	require.NoError(t, err)
	require.Equal(t, ExerciseView{
		ID:          u.ID,
		Username:    "fcc_test",
		Description: "test run",
		Duration:    30,
		Date:        "Mon May 15 2023",
	}, *got)

	got, err = svc.AddExercise(ctx, ExerciseInput{UserID: u.ID, Description: "swim", Duration: "12.5"})
	require.NoError(t, err)
	require.Equal(t, FormatDate(fixedNow), got.Date)
	require.Equal(t, 12.5, got.Duration)
}

func TestAddExerciseValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	u, err := svc.CreateUser(ctx, "fcc_test")
	require.NoError(t, err)

	cases := []struct {
		in  ExerciseInput
		msg string
	}{
		{ExerciseInput{UserID: u.ID, Duration: "30"}, "Description and duration are required."},
		{ExerciseInput{UserID: u.ID, Description: "run"}, "Description and duration are required."},
		{ExerciseInput{UserID: u.ID, Description: "run", Duration: "thirty"}, "Duration must be a number."},
		{ExerciseInput{UserID: u.ID, Description: "run", Duration: "30", Date: "someday"}, "Invalid date"},
	}
	for _, tc := range cases {
		var verr *ValidationError
		_, err := svc.AddExercise(ctx, tc.in)
		require.ErrorAs(t, err, &verr)
		require.Equal(t, tc.msg, verr.Message)
	}
}

func TestAddExerciseUnknownUser(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.AddExercise(context.Background(), ExerciseInput{UserID: "nobody", Description: "run", Duration: "30"})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func seedLog(t *testing.T, svc *Service, userID string, dates ...string) {
	t.Helper()
	for i, d := range dates {
		_, err := svc.AddExercise(context.Background(), ExerciseInput{
			UserID:      userID,
			Description: fmt.Sprintf("entry %d", i),
			Duration:    fmt.Sprint(10 + i),
			Date:        d,
		})
		require.NoError(t, err)
	}
}

func TestGetLogsNoFilters(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	u, err := svc.CreateUser(ctx, "fcc_test")
	require.NoError(t, err)

	_, err = svc.AddExercise(ctx, ExerciseInput{UserID: u.ID, Description: "test run", Duration: "30", Date: "2023-05-15"})
	require.NoError(t, err)

	logs, err := svc.GetLogs(ctx, LogQuery{UserID: u.ID})
	require.NoError(t, err)
	require.Equal(t, LogView{
		Username: "fcc_test",
		Count:    1,
		ID:       u.ID,
		Log:      []LogEntry{{Description: "test run", Duration: 30, Date: "Mon May 15 2023"}},
	}, *logs)
}

func TestGetLogsDateRange(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	u, err := svc.CreateUser(ctx, "ranger")
	require.NoError(t, err)
	seedLog(t, svc, u.ID, "2023-01-01", "2023-01-15", "2023-02-01", "2023-03-01")

	cases := []struct {
		name     string
		from, to string
		want     []string
	}{
		{"from only", "2023-01-15", "", []string{"Sun Jan 15 2023", "Wed Feb 01 2023", "Wed Mar 01 2023"}},
		{"to only", "", "2023-01-15", []string{"Sun Jan 01 2023", "Sun Jan 15 2023"}},
		{"both inclusive", "2023-01-15", "2023-02-01", []string{"Sun Jan 15 2023", "Wed Feb 01 2023"}},
		{"empty intersection", "2024-01-01", "2024-12-31", []string{}},
		{"inverted", "2023-03-01", "2023-01-01", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logs, err := svc.GetLogs(ctx, LogQuery{UserID: u.ID, From: tc.from, To: tc.to})
			require.NoError(t, err)
			dates := make([]string, 0, len(logs.Log))
			for _, e := range logs.Log {
				dates = append(dates, e.Date)
			}
			require.Equal(t, tc.want, dates)
			require.Equal(t, len(tc.want), logs.Count)
			require.NotNil(t, logs.Log)
		})
	}
}

func TestGetLogsLimit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	u, err := svc.CreateUser(ctx, "limiter")
	require.NoError(t, err)
	seedLog(t, svc, u.ID, "2023-01-03", "2023-01-01", "2023-01-02", "2023-01-04")

	for _, limit := range []string{"", "0", "-2", "abc"} {
		logs, err := svc.GetLogs(ctx, LogQuery{UserID: u.ID, Limit: limit})
		require.NoError(t, err)
		require.Equal(t, 4, logs.Count, "limit %q", limit)
	}

	logs, err := svc.GetLogs(ctx, LogQuery{UserID: u.ID, Limit: "2"})
	require.NoError(t, err)
	require.Equal(t, 2, logs.Count)
	require.Len(t, logs.Log, 2)
	require.Equal(t, "Sun Jan 01 2023", logs.Log[0].Date)
	require.Equal(t, "Mon Jan 02 2023", logs.Log[1].Date)

	again, err := svc.GetLogs(ctx, LogQuery{UserID: u.ID, Limit: "2"})
	require.NoError(t, err)
	require.Equal(t, logs, again)

	logs, err = svc.GetLogs(ctx, LogQuery{UserID: u.ID, Limit: "10"})
	require.NoError(t, err)
	require.Equal(t, 4, logs.Count)
}

func TestGetLogsErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.GetLogs(ctx, LogQuery{UserID: "missing"})
	require.ErrorIs(t, err, ErrUserNotFound)

	u, err := svc.CreateUser(ctx, "fcc_test")
	require.NoError(t, err)

	var verr *ValidationError
	_, err = svc.GetLogs(ctx, LogQuery{UserID: u.ID, From: "not a date"})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Invalid from date", verr.Message)

	_, err = svc.GetLogs(ctx, LogQuery{UserID: u.ID, To: "not a date"})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Invalid to date", verr.Message)

	boom := errors.New("cursor killed")
	fs := failingStore{MemoryStore: store.NewMemoryStore(), err: boom}
	bu, err := fs.MemoryStore.InsertUser(ctx, "x")
	require.NoError(t, err)
	_, err = NewService(fs).GetLogs(ctx, LogQuery{UserID: bu.ID})
	require.ErrorIs(t, err, boom)
}

func TestResolveUserUsesCache(t *testing.T) {
	ctx := context.Background()
	cache := &mapCache{users: map[string]models.User{}}
	svc, mem := newTestService(WithUserCache(cache))

	u, err := svc.CreateUser(ctx, "cached")
	require.NoError(t, err)
	require.Contains(t, cache.users, u.ID)

	cache.users["ghost"] = models.User{ID: "ghost", Username: "only-in-cache"}
	got, err := svc.ResolveUser(ctx, "ghost")
	require.NoError(t, err)
	require.Equal(t, "only-in-cache", got.Username)

	direct, err := mem.InsertUser(ctx, "uncached")
	require.NoError(t, err)
	_, err = svc.ResolveUser(ctx, direct.ID)
	require.NoError(t, err)
	require.Contains(t, cache.users, direct.ID)

	cache.err = errors.New("redis down")
	got, err = svc.ResolveUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "cached", got.Username)
}
