package main

import (
	"errors"
	"net/http"

	"github.com/protomem/taskdesk/internal/model"
	"github.com/protomem/taskdesk/internal/view"
)

// Board transitions are form posts answered with a redirect back to the page.

func (app *application) finishTransition(w http.ResponseWriter, r *http.Request, page view.Page, err error) {
	if err != nil && !boardError(err) {
		app.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, pageURL(page), http.StatusSeeOther)
}

// boardError reports errors already recorded on the board for display.
func boardError(err error) bool {
	return errors.Is(err, model.ErrValidation) ||
		errors.Is(err, model.ErrMutation) ||
		errors.Is(err, view.ErrToggleInFlight)
}

func (app *application) taskBoard(w http.ResponseWriter, r *http.Request) (*view.TaskBoard, view.Page, bool) {
	page, err := pageFromRequest(r)
	if err != nil {
		app.notFound(w, r)
		return nil, "", false
	}

	board, ok := app.workspaces.Get(sessionFromRequest(r)).workspace.TaskBoard(page)
	if !ok {
		app.notFound(w, r)
		return nil, "", false
	}

	if err := r.ParseForm(); err != nil {
		app.badRequest(w, r, err)
		return nil, "", false
	}

	return board, page, true
}

func (app *application) userBoard(w http.ResponseWriter, r *http.Request) (*view.UserBoard, view.Page, bool) {
	page, err := pageFromRequest(r)
	if err != nil {
		app.notFound(w, r)
		return nil, "", false
	}

	board, ok := app.workspaces.Get(sessionFromRequest(r)).workspace.UserBoard(page)
	if !ok {
		app.notFound(w, r)
		return nil, "", false
	}

	if err := r.ParseForm(); err != nil {
		app.badRequest(w, r, err)
		return nil, "", false
	}

	return board, page, true
}

// pageTask looks the task up in the listing the page currently shows.
func (app *application) pageTask(w http.ResponseWriter, r *http.Request, page view.Page) (model.Task, bool) {
	id, err := taskIDFromRequest(r)
	if err != nil {
		app.notFound(w, r)
		return model.Task{}, false
	}

	sess := sessionFromRequest(r)
	tasks, err := app.loadTasks(r.Context(), app.workspaces.Get(sess), sess, page)
	if err != nil {
		app.backendError(w, r, err)
		return model.Task{}, false
	}

	task, ok := findTask(tasks, id)
	if !ok {
		app.notFound(w, r)
		return model.Task{}, false
	}
	return task, true
}

func (app *application) handleDashboardTab(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.badRequest(w, r, err)
		return
	}

	ws := app.workspaces.Get(sessionFromRequest(r)).workspace
	if err := ws.SetTab(view.Tab(r.PostFormValue("tab"))); err != nil {
		app.badRequest(w, r, err)
		return
	}
	http.Redirect(w, r, pageURL(view.PageDashboard), http.StatusSeeOther)
}

func (app *application) handleTaskFilters(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.taskBoard(w, r)
	if !ok {
		return
	}
	err := board.SetFilters(r.PostFormValue("status"), r.PostFormValue("priority"))
	app.finishTransition(w, r, page, err)
}

func (app *application) handleTaskNew(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.taskBoard(w, r)
	if !ok {
		return
	}
	board.OpenCreate()
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleTaskEdit(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.taskBoard(w, r)
	if !ok {
		return
	}
	task, ok := app.pageTask(w, r, page)
	if !ok {
		return
	}
	board.OpenEdit(task)
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleTaskView(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.taskBoard(w, r)
	if !ok {
		return
	}
	task, ok := app.pageTask(w, r, page)
	if !ok {
		return
	}
	board.OpenView(task)
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleTaskSave(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.taskBoard(w, r)
	if !ok {
		return
	}
	err := board.Submit(r.Context(), taskFormFromRequest(r))
	app.finishTransition(w, r, page, err)
}

func (app *application) handleTaskToggle(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.taskBoard(w, r)
	if !ok {
		return
	}
	task, ok := app.pageTask(w, r, page)
	if !ok {
		return
	}
	err := board.ToggleComplete(r.Context(), task.ID, task.Completed)
	app.finishTransition(w, r, page, err)
}

func (app *application) handleTaskMenu(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.taskBoard(w, r)
	if !ok {
		return
	}
	id, err := taskIDFromRequest(r)
	if err != nil {
		app.notFound(w, r)
		return
	}
	board.ExpandRow(id)
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleTaskCollapse(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.taskBoard(w, r)
	if !ok {
		return
	}
	board.CollapseRows()
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleTaskClose(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.taskBoard(w, r)
	if !ok {
		return
	}
	board.CloseModal()
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleTaskDismiss(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.taskBoard(w, r)
	if !ok {
		return
	}
	board.DismissNotice()
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.taskBoard(w, r)
	if !ok {
		return
	}
	id, err := taskIDFromRequest(r)
	if err != nil {
		app.notFound(w, r)
		return
	}
	board.RequestDelete(id)
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleTaskConfirmDelete(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.taskBoard(w, r)
	if !ok {
		return
	}
	err := board.ConfirmDelete(r.Context())
	app.finishTransition(w, r, page, err)
}

func (app *application) handleTaskCancelDelete(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.taskBoard(w, r)
	if !ok {
		return
	}
	board.CancelDelete()
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleUserNew(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.userBoard(w, r)
	if !ok {
		return
	}
	board.OpenCreate()
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleUserEdit(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.userBoard(w, r)
	if !ok {
		return
	}

	id, err := userIDFromRequest(r)
	if err != nil {
		app.notFound(w, r)
		return
	}

	sess := sessionFromRequest(r)
	users, err := app.loadUsers(r.Context(), app.workspaces.Get(sess), sess)
	if err != nil {
		app.backendError(w, r, err)
		return
	}

	user, ok := findUser(users, id)
	if !ok {
		app.notFound(w, r)
		return
	}

	board.OpenEdit(user)
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleUserSave(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.userBoard(w, r)
	if !ok {
		return
	}
	err := board.Submit(r.Context(), userFormFromRequest(r))
	app.finishTransition(w, r, page, err)
}

func (app *application) handleUserMenu(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.userBoard(w, r)
	if !ok {
		return
	}
	id, err := userIDFromRequest(r)
	if err != nil {
		app.notFound(w, r)
		return
	}
	board.ExpandRow(id)
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleUserCollapse(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.userBoard(w, r)
	if !ok {
		return
	}
	board.CollapseRows()
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleUserClose(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.userBoard(w, r)
	if !ok {
		return
	}
	board.CloseModal()
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleUserDismiss(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.userBoard(w, r)
	if !ok {
		return
	}
	board.DismissNotice()
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.userBoard(w, r)
	if !ok {
		return
	}
	id, err := userIDFromRequest(r)
	if err != nil {
		app.notFound(w, r)
		return
	}
	board.RequestDelete(id)
	app.finishTransition(w, r, page, nil)
}

func (app *application) handleUserConfirmDelete(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.userBoard(w, r)
	if !ok {
		return
	}
	err := board.ConfirmDelete(r.Context())
	app.finishTransition(w, r, page, err)
}

func (app *application) handleUserCancelDelete(w http.ResponseWriter, r *http.Request) {
	board, page, ok := app.userBoard(w, r)
	if !ok {
		return
	}
	board.CancelDelete()
	app.finishTransition(w, r, page, nil)
}
