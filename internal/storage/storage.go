package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/xaenox/discipline-bot/internal/models"
)

// ErrUnavailable is wrapped by every error caused by the underlying store.
var ErrUnavailable = errors.New("storage unavailable")

type Storage interface {
	UserStorage
	TaskStorage
	Ping(ctx context.Context) error
	Close() error
}

type UserStorage interface {
	// RegisterUser is idempotent.
	RegisterUser(ctx context.Context, user models.UserID) error
	ListUsers(ctx context.Context) ([]models.UserID, error)
}

type TaskStorage interface {
	AddTask(ctx context.Context, owner models.UserID, category models.Category, description, scheduledTime string) (int64, error)
	// ListTasks returns the owner's tasks in the category in insertion order.
	ListTasks(ctx context.Context, owner models.UserID, category models.Category) ([]models.Task, error)
	// DeleteTask removes the task only when id, owner and category all match.
	DeleteTask(ctx context.Context, id int64, owner models.UserID, category models.Category) (bool, error)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
