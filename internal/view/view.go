// Package view keeps the per-session UI state of the task and user pages and
// drives its transitions: filters, modals, row menus, completion toggles and
// delete confirmation. Mutations go to the backend through a Gateway and, on
// success, invalidate the shared query cache.
package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/protomem/taskdesk/internal/gateway"
	"github.com/protomem/taskdesk/internal/model"
)

var ErrToggleInFlight = errors.New("completion change already in flight")

type Modal string

const (
	ModalNone   Modal = ""
	ModalCreate Modal = "create"
	ModalEdit   Modal = "edit"
)

// Query cache prefixes touched by mutations.
const (
	KeyTasks     = "tasks"
	KeyUsers     = "users"
	KeyAnalytics = "analytics"
)

type TaskGateway interface {
	CreateTask(ctx context.Context, token string, in gateway.TaskInput) (model.Task, error)
	UpdateTaskDetails(ctx context.Context, token string, id model.ID, in gateway.TaskInput) (model.Task, error)
	SetTaskCompleted(ctx context.Context, token string, id model.ID, completed bool) (model.Task, error)
	DeleteTask(ctx context.Context, token string, id model.ID) error
}

type UserGateway interface {
	RegisterUser(ctx context.Context, token string, in model.User) (model.User, error)
	UpdateUser(ctx context.Context, token string, id model.ID, in model.User) (model.User, error)
	DeleteUser(ctx context.Context, token string, id model.ID) error
}

type Gateway interface {
	TaskGateway
	UserGateway
}

type Invalidator interface {
	Invalidate(prefix string)
}

func mutationError(entity string, err error) error {
	return model.NewError(entity, fmt.Errorf("%w: %w", model.ErrMutation, err))
}

// notice is the user-facing text for a failed mutation.
func notice(action string, err error) string {
	switch {
	case errors.Is(err, gateway.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "The server did not answer in time while trying to " + action + ". Please try again."
	case errors.Is(err, model.ErrUnauthorized):
		return "You are not allowed to " + action + "."
	case errors.Is(err, model.ErrNotFound):
		return "Failed to " + action + ": it no longer exists."
	default:
		return "Failed to " + action + ". Please try again."
	}
}

func invalidate(c Invalidator, prefixes ...string) {
	for _, prefix := range prefixes {
		c.Invalidate(prefix)
	}
}
