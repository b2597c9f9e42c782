// Package conversation drives the multi-step dialogue for adding,
// listing and deleting tasks.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xaenox/discipline-bot/internal/models"
	"github.com/xaenox/discipline-bot/internal/storage"
	"go.uber.org/zap"
)

var ErrInvalidTaskID = errors.New("task id must be an integer")

type Store interface {
	storage.UserStorage
	storage.TaskStorage
}

// Machine handles inbound events. Events of one user must be delivered
// sequentially; different users may be served concurrently.
type Machine struct {
	store    Store
	sessions *Sessions
	logger   *zap.Logger
}

func NewMachine(store Store, sessions *Sessions, logger *zap.Logger) *Machine {
	return &Machine{
		store:    store,
		sessions: sessions,
		logger:   logger,
	}
}

// State reports the current dialogue state of the user.
func (m *Machine) State(user models.UserID) State {
	return m.sessions.Get(user).State
}

func (m *Machine) HandleAction(ctx context.Context, user models.UserID, action Action) Reply {
	sess := m.sessions.Get(user)

	switch action.Kind {
	case ActionStart:
		if err := m.store.RegisterUser(ctx, user); err != nil {
			return m.storageFailure(user, "register user", err)
		}
		sess.State = AwaitingCategory{}
		m.sessions.Put(user, sess)
		return Reply{Text: textChooseCategory, Menu: categoryMenu()}

	case ActionShowMenu:
		sess.State = AwaitingCategory{}
		m.sessions.Put(user, sess)
		return Reply{Text: textChooseCategory, Menu: categoryMenu()}

	case ActionSelectCategory:
		sess.Category = action.Category
		sess.State = Idle{}
		m.sessions.Put(user, sess)
		return Reply{Text: categorySelectedText(action.Category), Menu: categoryActionsMenu(action.Category)}

	case ActionAddTask:
		sess.Category = action.Category
		sess.State = AwaitingDescription{Category: action.Category}
		m.sessions.Put(user, sess)
		return withMenuButton(textEnterDescription)

	case ActionViewTasks:
		tasks, err := m.store.ListTasks(ctx, user, action.Category)
		if err != nil {
			return m.storageFailure(user, "list tasks", err)
		}
		return withMenuButton(taskListText(action.Category, tasks))

	case ActionDeleteTask:
		sess.Category = action.Category
		sess.State = AwaitingDeleteID{Category: action.Category}
		m.sessions.Put(user, sess)
		return withMenuButton(textEnterDeleteID)
	}

	m.logger.Warn("Unhandled action",
		zap.Int64("user_id", user),
		zap.String("action", action.Tag()))
	return withMenuButton(textUseMenu)
}

func (m *Machine) HandleText(ctx context.Context, user models.UserID, text string) Reply {
	sess := m.sessions.Get(user)

	switch st := sess.State.(type) {
	case AwaitingDescription:
		if strings.TrimSpace(text) == "" {
			return withMenuButton(textEnterDescription)
		}
		sess.State = AwaitingTime{Category: st.Category, Description: text}
		m.sessions.Put(user, sess)
		return withMenuButton(textEnterTime)

	case AwaitingTime:
		if strings.TrimSpace(text) == "" {
			return withMenuButton(textEnterTime)
		}
		id, err := m.store.AddTask(ctx, user, st.Category, st.Description, text)
		if err != nil {
			return m.storageFailure(user, "add task", err)
		}
		m.logger.Info("Task added",
			zap.Int64("user_id", user),
			zap.Int64("task_id", id),
			zap.String("category", st.Category.String()))
		sess.State = Idle{}
		m.sessions.Put(user, sess)
		return withMenuButton(taskAddedText(st.Description, st.Category, text))

	case AwaitingDeleteID:
		id, err := parseTaskID(text)
		if err != nil {
			return withMenuButton(textInvalidID)
		}
		deleted, err := m.store.DeleteTask(ctx, id, user, st.Category)
		if err != nil {
			return m.storageFailure(user, "delete task", err)
		}
		sess.State = Idle{}
		m.sessions.Put(user, sess)
		if !deleted {
			return withMenuButton(taskNotFoundText(id, st.Category))
		}
		m.logger.Info("Task deleted",
			zap.Int64("user_id", user),
			zap.Int64("task_id", id),
			zap.String("category", st.Category.String()))
		return withMenuButton(taskDeletedText(id))
	}

	return withMenuButton(textUseMenu)
}

// storageFailure leaves the session untouched so the user can resend the same input.
func (m *Machine) storageFailure(user models.UserID, op string, err error) Reply {
	m.logger.Error("Storage failure during conversation step",
		zap.Error(err),
		zap.String("op", op),
		zap.Bool("unavailable", errors.Is(err, storage.ErrUnavailable)),
		zap.Int64("user_id", user))
	return withMenuButton(textTryAgain)
}

func parseTaskID(text string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTaskID, text)
	}
	return id, nil
}
