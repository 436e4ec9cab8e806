package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/agalitsyn/secret"

	"github.com/protomem/taskdesk/internal/model"
)

type UserBoardState struct {
	Modal       Modal
	Form        UserForm
	FieldErrors map[string]string

	ExpandedRow   model.ID
	PendingDelete model.ID

	Notice string
}

type UserBoard struct {
	logger *slog.Logger
	gw     UserGateway
	cache  Invalidator
	token  secret.String

	mu    sync.Mutex
	epoch uint64
	state UserBoardState
}

func NewUserBoard(logger *slog.Logger, gw UserGateway, cache Invalidator, token secret.String) *UserBoard {
	return &UserBoard{
		logger: logger,
		gw:     gw,
		cache:  cache,
		token:  token,
	}
}

func (b *UserBoard) Snapshot() UserBoardState {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.state
	if b.state.FieldErrors != nil {
		s.FieldErrors = make(map[string]string, len(b.state.FieldErrors))
		for field, msg := range b.state.FieldErrors {
			s.FieldErrors[field] = msg
		}
	}
	return s
}

func (b *UserBoard) mount() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.epoch++
}

func (b *UserBoard) OpenCreate() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.Modal = ModalCreate
	b.state.Form = UserForm{Role: string(model.RoleUser)}
	b.state.FieldErrors = nil
	b.state.ExpandedRow = 0
}

func (b *UserBoard) OpenEdit(user model.User) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.Modal = ModalEdit
	b.state.Form = UserFormFrom(user)
	b.state.FieldErrors = nil
	b.state.ExpandedRow = 0
}

func (b *UserBoard) CloseModal() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.Modal = ModalNone
	b.state.Form = UserForm{}
	b.state.FieldErrors = nil
}

func (b *UserBoard) ExpandRow(id model.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state.ExpandedRow == id {
		b.state.ExpandedRow = 0
		return
	}
	b.state.ExpandedRow = id
}

func (b *UserBoard) CollapseRows() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.ExpandedRow = 0
}

func (b *UserBoard) DismissNotice() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Notice = ""
}

// Submit validates form and registers or updates the user.
func (b *UserBoard) Submit(ctx context.Context, form UserForm) error {
	in, v := form.validate()

	b.mu.Lock()
	epoch := b.epoch
	// the password is never echoed back into the form
	form.Password = ""
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
	action := "create the user"
	if form.ID == 0 {
		_, err = b.gw.RegisterUser(ctx, b.token.Unmask(), in)
	} else {
		action = "update the user"
		_, err = b.gw.UpdateUser(ctx, b.token.Unmask(), form.ID, in)
	}
	if err != nil {
		b.logger.Warn("user submit failed", "userId", form.ID, "error", err)
		b.apply(epoch, func(s *UserBoardState) { s.Notice = notice(action, err) })
		return mutationError("user", err)
	}

	// task rows show assignee names, analytics show usernames
	invalidate(b.cache, KeyUsers, KeyTasks, KeyAnalytics)
	b.apply(epoch, func(s *UserBoardState) {
		s.Modal = ModalNone
		s.Form = UserForm{}
		s.Notice = ""
	})
	return nil
}

func (b *UserBoard) RequestDelete(id model.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.PendingDelete = id
}

func (b *UserBoard) CancelDelete() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.PendingDelete = 0
}

func (b *UserBoard) ConfirmDelete(ctx context.Context) error {
	b.mu.Lock()
	id := b.state.PendingDelete
	epoch := b.epoch
	b.state.PendingDelete = 0
	b.mu.Unlock()

	if id == 0 {
		return nil
	}

	if err := b.gw.DeleteUser(ctx, b.token.Unmask(), id); err != nil {
		b.logger.Warn("user delete failed", "userId", id, "error", err)
		b.apply(epoch, func(s *UserBoardState) { s.Notice = notice("delete the user", err) })
		return mutationError("user", err)
	}

	invalidate(b.cache, KeyUsers, KeyTasks, KeyAnalytics)
	b.apply(epoch, func(s *UserBoardState) {
		if s.ExpandedRow == id {
			s.ExpandedRow = 0
		}
	})
	return nil
}

func (b *UserBoard) apply(epoch uint64, fn func(s *UserBoardState)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.epoch != epoch {
		return
	}
	fn(&b.state)
}
