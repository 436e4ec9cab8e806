package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/agalitsyn/secret"

	"github.com/protomem/taskdesk/internal/model"
	"github.com/protomem/taskdesk/internal/tasklist"
)

// TaskBoardState is a point-in-time copy of a task board for rendering.
type TaskBoardState struct {
	Selector tasklist.Selector

	Modal       Modal
	Form        TaskForm
	FieldErrors map[string]string
	Viewing     *model.Task

	ExpandedRow   model.ID
	PendingDelete model.ID

	// Toggling maps tasks with an in-flight completion change to the requested value.
	Toggling map[model.ID]bool

	Notice string
}

// Completed is the value to render for task, the requested one while a change is in flight.
func (s TaskBoardState) Completed(task model.Task) bool {
	if target, ok := s.Toggling[task.ID]; ok {
		return target
	}
	return task.Completed
}

func (s TaskBoardState) Busy(id model.ID) bool {
	_, ok := s.Toggling[id]
	return ok
}

type TaskBoard struct {
	logger *slog.Logger
	gw     TaskGateway
	cache  Invalidator
	token  secret.String

	mu    sync.Mutex
	epoch uint64
	state TaskBoardState
}

func NewTaskBoard(logger *slog.Logger, gw TaskGateway, cache Invalidator, token secret.String) *TaskBoard {
	return &TaskBoard{
		logger: logger,
		gw:     gw,
		cache:  cache,
		token:  token,
		state: TaskBoardState{
			Selector: tasklist.DefaultSelector(),
			Toggling: make(map[model.ID]bool),
		},
	}
}

func (b *TaskBoard) Snapshot() TaskBoardState {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.state
	s.Toggling = make(map[model.ID]bool, len(b.state.Toggling))
	for id, target := range b.state.Toggling {
		s.Toggling[id] = target
	}
	if b.state.FieldErrors != nil {
		s.FieldErrors = make(map[string]string, len(b.state.FieldErrors))
		for field, msg := range b.state.FieldErrors {
			s.FieldErrors[field] = msg
		}
	}
	if b.state.Viewing != nil {
		viewing := *b.state.Viewing
		s.Viewing = &viewing
	}
	return s
}

func (b *TaskBoard) mount() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.epoch++
}

// SetFilters replaces the selector. Unknown values leave the board untouched.
func (b *TaskBoard) SetFilters(status, priority string) error {
	sel, err := tasklist.ParseSelector(status, priority)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Selector = sel
	return nil
}

func (b *TaskBoard) OpenCreate() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.Modal = ModalCreate
	b.state.Form = TaskForm{Priority: string(model.PriorityMedium)}
	b.state.FieldErrors = nil
	b.state.ExpandedRow = 0
}

func (b *TaskBoard) OpenEdit(task model.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.Modal = ModalEdit
	b.state.Form = TaskFormFrom(task)
	b.state.FieldErrors = nil
	b.state.ExpandedRow = 0
}

// OpenView shows task read-only. It is independent of the edit/create modal.
func (b *TaskBoard) OpenView(task model.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.Viewing = &task
	b.state.ExpandedRow = 0
}

// CloseModal dismisses whichever dialog is open without touching data.
func (b *TaskBoard) CloseModal() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.Modal = ModalNone
	b.state.Form = TaskForm{}
	b.state.FieldErrors = nil
	b.state.Viewing = nil
}

func (b *TaskBoard) ExpandRow(id model.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state.ExpandedRow == id {
		b.state.ExpandedRow = 0
		return
	}
	b.state.ExpandedRow = id
}

func (b *TaskBoard) CollapseRows() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.ExpandedRow = 0
}

func (b *TaskBoard) DismissNotice() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Notice = ""
}

// Submit validates form and creates or updates the task. Invalid forms never reach the backend.
func (b *TaskBoard) Submit(ctx context.Context, form TaskForm) error {
	in, v := form.validate()

	b.mu.Lock()
	epoch := b.epoch
	b.state.Form = form
	if v.HasErrors() {
		b.state.Modal = modalFor(form.ID)
		b.state.FieldErrors = v.FieldErrors
		b.mu.Unlock()
		return v.Err()
	}
	b.state.FieldErrors = nil
	b.mu.Unlock()

	var err error
	action := "create the task"
	if form.ID == 0 {
		_, err = b.gw.CreateTask(ctx, b.token.Unmask(), in)
	} else {
		action = "update the task"
		_, err = b.gw.UpdateTaskDetails(ctx, b.token.Unmask(), form.ID, in)
	}
	if err != nil {
		b.logger.Warn("task submit failed", "taskId", form.ID, "error", err)
		b.apply(epoch, func(s *TaskBoardState) { s.Notice = notice(action, err) })
		return mutationError("task", err)
	}

	invalidate(b.cache, KeyTasks, KeyAnalytics)
	b.apply(epoch, func(s *TaskBoardState) {
		s.Modal = ModalNone
		s.Form = TaskForm{}
		s.Notice = ""
	})
	return nil
}

// ToggleComplete flips the completion of task id whose settled value is completed.
// A second toggle of the same task while the first is in flight is rejected.
func (b *TaskBoard) ToggleComplete(ctx context.Context, id model.ID, completed bool) error {
	target := !completed

	b.mu.Lock()
	if _, busy := b.state.Toggling[id]; busy {
		b.mu.Unlock()
		return ErrToggleInFlight
	}
	b.state.Toggling[id] = target
	epoch := b.epoch
	b.mu.Unlock()

	_, err := b.gw.SetTaskCompleted(ctx, b.token.Unmask(), id, target)

	b.mu.Lock()
	delete(b.state.Toggling, id)
	if err != nil && epoch == b.epoch {
		b.state.Notice = notice("update the task status", err)
	}
	b.mu.Unlock()

	if err != nil {
		b.logger.Warn("task toggle failed", "taskId", id, "error", err)
		return mutationError("task", err)
	}

	invalidate(b.cache, KeyTasks, KeyAnalytics)
	return nil
}

func (b *TaskBoard) RequestDelete(id model.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.PendingDelete = id
}

func (b *TaskBoard) CancelDelete() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.PendingDelete = 0
}

// ConfirmDelete deletes the task awaiting confirmation, if any.
func (b *TaskBoard) ConfirmDelete(ctx context.Context) error {
	b.mu.Lock()
	id := b.state.PendingDelete
	epoch := b.epoch
	b.state.PendingDelete = 0
	b.mu.Unlock()

	if id == 0 {
		return nil
	}

	if err := b.gw.DeleteTask(ctx, b.token.Unmask(), id); err != nil {
		b.logger.Warn("task delete failed", "taskId", id, "error", err)
		b.apply(epoch, func(s *TaskBoardState) { s.Notice = notice("delete the task", err) })
		return mutationError("task", err)
	}

	invalidate(b.cache, KeyTasks, KeyAnalytics)
	b.apply(epoch, func(s *TaskBoardState) {
		if s.ExpandedRow == id {
			s.ExpandedRow = 0
		}
		if s.Viewing != nil && s.Viewing.ID == id {
			s.Viewing = nil
		}
	})
	return nil
}

// apply runs fn only if the board has not been remounted since epoch.
func (b *TaskBoard) apply(epoch uint64, fn func(s *TaskBoardState)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.epoch != epoch {
		return
	}
	fn(&b.state)
}

func modalFor(id model.ID) Modal {
	if id == 0 {
		return ModalCreate
	}
	return ModalEdit
}
