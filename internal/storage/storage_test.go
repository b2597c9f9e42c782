package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/discipline-bot/internal/models"
	"go.uber.org/zap/zaptest"
)

type storeFactory func(t *testing.T) Storage

func backends() map[string]storeFactory {
	b := map[string]storeFactory{
		"memory": func(t *testing.T) Storage {
			return NewMemoryStorage()
		},
		"sqlite": func(t *testing.T) Storage {
			s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "schedule.db"), zaptest.NewLogger(t))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
	if dsn := os.Getenv("TASKBOT_TEST_POSTGRES_DSN"); dsn != "" {
		b["postgres"] = func(t *testing.T) Storage {
			s, err := OpenPostgres(dsn, zaptest.NewLogger(t))
			require.NoError(t, err)
			_, err = s.db.Exec(`TRUNCATE users, tasks RESTART IDENTITY`)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		}
	}
	return b
}

func TestStorageContract(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Run("RegisterUserIsIdempotent", func(t *testing.T) {
				testRegisterUserIsIdempotent(t, newStore(t))
			})
			t.Run("TasksRoundTripVerbatim", func(t *testing.T) {
				testTasksRoundTripVerbatim(t, newStore(t))
			})
			t.Run("DeleteIsScoped", func(t *testing.T) {
				testDeleteIsScoped(t, newStore(t))
			})
			t.Run("DeleteTwice", func(t *testing.T) {
				testDeleteTwice(t, newStore(t))
			})
			t.Run("ConcurrentWrites", func(t *testing.T) {
				testConcurrentWrites(t, newStore(t))
			})
		})
	}
}

func testRegisterUserIsIdempotent(t *testing.T, s Storage) {
	ctx := context.Background()
	require.NoError(t, s.RegisterUser(ctx, 42))
	require.NoError(t, s.RegisterUser(ctx, 42))
	require.NoError(t, s.RegisterUser(ctx, 7))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.UserID{42, 7}, users)
}

func testTasksRoundTripVerbatim(t *testing.T, s Storage) {
	ctx := context.Background()
	first, err := s.AddTask(ctx, 1, models.CategorySchool, "  Clean room ", "18:00")
	require.NoError(t, err)
	second, err := s.AddTask(ctx, 1, models.CategorySchool, "Homework", "tomorrow-ish")
	require.NoError(t, err)
	_, err = s.AddTask(ctx, 1, models.CategoryHobby, "Guitar", "20:00")
	require.NoError(t, err)
	_, err = s.AddTask(ctx, 2, models.CategorySchool, "Other user", "09:00")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	tasks, err := s.ListTasks(ctx, 1, models.CategorySchool)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, models.Task{ID: first, Owner: 1, Category: models.CategorySchool, Description: "  Clean room ", ScheduledTime: "18:00"}, tasks[0])
	assert.Equal(t, models.Task{ID: second, Owner: 1, Category: models.CategorySchool, Description: "Homework", ScheduledTime: "tomorrow-ish"}, tasks[1])

	empty, err := s.ListTasks(ctx, 1, models.CategoryFreeTime)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testDeleteIsScoped(t *testing.T, s Storage) {
	ctx := context.Background()
	id, err := s.AddTask(ctx, 1, models.CategorySchool, "Clean room", "18:00")
	require.NoError(t, err)

	deleted, err := s.DeleteTask(ctx, id, 2, models.CategorySchool)
	require.NoError(t, err)
	assert.False(t, deleted, "other owner must not delete")

	deleted, err = s.DeleteTask(ctx, id, 1, models.CategoryHobby)
	require.NoError(t, err)
	assert.False(t, deleted, "other category must not delete")

	tasks, err := s.ListTasks(ctx, 1, models.CategorySchool)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].ID)
}

func testDeleteTwice(t *testing.T, s Storage) {
	ctx := context.Background()
	id, err := s.AddTask(ctx, 1, models.CategoryHobby, "Paint", "weekend")
	require.NoError(t, err)

	deleted, err := s.DeleteTask(ctx, id, 1, models.CategoryHobby)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteTask(ctx, id, 1, models.CategoryHobby)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func testConcurrentWrites(t *testing.T, s Storage) {
	ctx := context.Background()
	const workers = 8
	const perWorker = 10

	var wg sync.WaitGroup
	ids := make(chan int64, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(owner models.UserID) {
			defer wg.Done()
			assert.NoError(t, s.RegisterUser(ctx, owner))
			for i := 0; i < perWorker; i++ {
				id, err := s.AddTask(ctx, owner, models.CategoryFreeTime, "walk", "later")
				assert.NoError(t, err)
				ids <- id
			}
		}(models.UserID(w + 1))
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, workers)
}

func TestSQLiteMigratesLegacyTasksTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.db")

	legacy, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = legacy.Exec(`
		CREATE TABLE tasks (user_id INTEGER, category TEXT, task TEXT, time TEXT);
		CREATE TABLE users (user_id INTEGER PRIMARY KEY);
		INSERT INTO tasks (user_id, category, task, time) VALUES (5, 'school', 'Essay', '10:00');
		INSERT INTO tasks (user_id, category, task, time) VALUES (5, 'school', 'Lab', '12:00');
		INSERT INTO users (user_id) VALUES (5);`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	s, err := NewSQLiteStorage(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx := context.Background()
	tasks, err := s.ListTasks(ctx, 5, models.CategorySchool)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Essay", tasks[0].Description)
	assert.Equal(t, "Lab", tasks[1].Description)
	assert.NotEqual(t, tasks[0].ID, tasks[1].ID)

	id, err := s.AddTask(ctx, 5, models.CategorySchool, "Exam", "14:00")
	require.NoError(t, err)
	assert.Greater(t, id, tasks[1].ID)
	require.NoError(t, s.Close())

	// Reopening runs the migration again as a no-op.
	s, err = NewSQLiteStorage(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer s.Close()

	tasks, err = s.ListTasks(ctx, 5, models.CategorySchool)
	require.NoError(t, err)
	assert.Len(t, tasks, 3)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.UserID{5}, users)
}

func TestSQLiteErrorsAreUnavailable(t *testing.T) {
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "schedule.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.AddTask(context.Background(), 1, models.CategorySchool, "x", "y")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = s.ListUsers(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
