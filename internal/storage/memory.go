package storage

import (
	"context"
	"sync"

	"github.com/xaenox/discipline-bot/internal/models"
)

type MemoryStorage struct {
	mu     sync.RWMutex
	users  map[models.UserID]struct{}
	order  []models.UserID
	tasks  []models.Task
	nextID int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:  make(map[models.UserID]struct{}),
		nextID: 1,
	}
}

func (s *MemoryStorage) RegisterUser(ctx context.Context, user models.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user]; exists {
		return nil
	}
	s.users[user] = struct{}{}
	s.order = append(s.order, user)
	return nil
}

func (s *MemoryStorage) ListUsers(ctx context.Context) ([]models.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.UserID, len(s.order))
	copy(users, s.order)
	return users, nil
}

func (s *MemoryStorage) AddTask(ctx context.Context, owner models.UserID, category models.Category, description, scheduledTime string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := models.Task{
		ID:            s.nextID,
		Owner:         owner,
		Category:      category,
		Description:   description,
		ScheduledTime: scheduledTime,
	}
	s.nextID++
	s.tasks = append(s.tasks, task)
	return task.ID, nil
}

func (s *MemoryStorage) ListTasks(ctx context.Context, owner models.UserID, category models.Category) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := []models.Task{}
	for _, t := range s.tasks {
		if t.Owner == owner && t.Category == category {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (s *MemoryStorage) DeleteTask(ctx context.Context, id int64, owner models.UserID, category models.Category) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tasks {
		if t.ID == id && t.Owner == owner && t.Category == category {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
