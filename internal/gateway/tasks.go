package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/protomem/taskdesk/internal/model"
)

// TaskScope selects which task listing endpoint is queried.
type TaskScope string

const (
	ScopeDashboard TaskScope = "dashboard"
	ScopeAll       TaskScope = "all"
	ScopeMine      TaskScope = "my"
)

func (s TaskScope) path() string {
	switch s {
	case ScopeDashboard:
		return "/api/tasks"
	case ScopeAll:
		return "/api/tasks/all"
	default:
		return "/api/tasks/my"
	}
}

type TaskInput struct {
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Priority         model.Priority `json:"priority"`
	DueDate          string         `json:"dueDate"`
	AssignedToUserID model.ID       `json:"assignedToUserId"`
}

func (c *Client) ListTasks(ctx context.Context, token string, scope TaskScope) ([]model.Task, error) {
	tasks := make([]model.Task, 0)
	if err := c.do(ctx, http.MethodGet, scope.path(), token, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, token string, in TaskInput) (model.Task, error) {
	var task model.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks/create", token, in, &task)
	return task, err
}

func (c *Client) UpdateTaskDetails(ctx context.Context, token string, id model.ID, in TaskInput) (model.Task, error) {
	var task model.Task
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/tasks/%d/details", id), token, in, &task)
	return task, err
}

func (c *Client) SetTaskCompleted(ctx context.Context, token string, id model.ID, completed bool) (model.Task, error) {
	var task model.Task
	in := struct {
		Completed bool `json:"completed"`
	}{Completed: completed}
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/tasks/%d/update", id), token, in, &task)
	return task, err
}

func (c *Client) DeleteTask(ctx context.Context, token string, id model.ID) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), token, nil, nil)
}
