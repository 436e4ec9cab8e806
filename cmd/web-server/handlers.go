package main

import (
	"errors"
	"net/http"

	"github.com/protomem/taskdesk/internal/gateway"
	"github.com/protomem/taskdesk/internal/model"
	"github.com/protomem/taskdesk/internal/response"
	"github.com/protomem/taskdesk/internal/tasklist"
	"github.com/protomem/taskdesk/internal/validator"
	"github.com/protomem/taskdesk/internal/version"
	"github.com/protomem/taskdesk/internal/view"
)

const (
	_msgInvalidCredentials = "Invalid credentials. Please try again."
	_msgBackendUnavailable = "The task server is unavailable. Please try again later."
	_msgMalformedTasks     = "Some tasks could not be displayed because the server sent malformed data."
)

func (app *application) handleStatus(w http.ResponseWriter, r *http.Request) {
	if err := response.JSON(w, http.StatusOK, response.JSONObject{"status": "OK", "version": version.Get()}); err != nil {
		app.serverError(w, r, err)
	}
}

func (app *application) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sessionFromRequest(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := app.newPageData(r)
	data.Title = "Login"
	app.render(w, r, http.StatusOK, "login.html", data)
}

func (app *application) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.badRequest(w, r, err)
		return
	}

	creds := gateway.Credentials{
		Username: formValue(r, "username"),
		Password: r.PostFormValue("password"),
	}

	data := app.newPageData(r)
	data.Title = "Login"
	data.LoginUsername = creds.Username

	var v validator.Validator
	v.CheckField(validator.NotBlank(creds.Username), "username", "Username is required")
	v.CheckField(validator.NotBlank(creds.Password), "password", "Password is required")

	if v.HasErrors() {
		data.FieldErrors = v.FieldErrors
		app.render(w, r, http.StatusUnprocessableEntity, "login.html", data)
		return
	}

	sess, err := app.sessions.Establish(r.Context(), creds)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUnauthorized):
			data.LoginError = _msgInvalidCredentials
			app.render(w, r, http.StatusUnauthorized, "login.html", data)
		default:
			app.logger.Warn("login failed", "error", err)
			data.LoginError = _msgBackendUnavailable
			app.render(w, r, http.StatusBadGateway, "login.html", data)
		}
		return
	}

	app.setSessionCookie(w, sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromRequest(r)

	if err := app.sessions.Teardown(r.Context(), sess.ID); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.workspaces.Drop(sess.ID)
	app.clearSessionCookie(w)

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (app *application) handleDashboard(w http.ResponseWriter, r *http.Request) {
	app.renderTaskPage(w, r, view.PageDashboard, "dashboard.html", "Dashboard")
}

func (app *application) handleTasks(w http.ResponseWriter, r *http.Request) {
	title := "My Tasks"
	if app.newPageData(r).Admin {
		title = "All Tasks"
	}
	app.renderTaskPage(w, r, view.PageTasks, "tasks.html", title)
}

func (app *application) renderTaskPage(w http.ResponseWriter, r *http.Request, page view.Page, name, title string) {
	ctx := r.Context()
	sess := sessionFromRequest(r)
	st := app.workspaces.Get(sess)
	st.workspace.Mount(page)

	data := app.newPageData(r)
	data.Title = title
	data.Page = page
	data.Tab = st.workspace.Tab(data.Admin)

	if profile, err := app.loadProfile(ctx, st, sess); err == nil && profile.FullName() != "" {
		data.DisplayName = profile.FullName()
	}

	board, _ := st.workspace.TaskBoard(page)
	data.TaskState = board.Snapshot()

	if page == view.PageDashboard && data.Admin {
		users, err := app.loadUsers(ctx, st, sess)
		if err != nil {
			app.backendError(w, r, err)
			return
		}
		data.Users = users
		data.Assignees = users
		data.UserState = st.workspace.DashboardUsers.Snapshot()
	}

	if data.Tab == view.TabTasks {
		tasks, err := app.loadTasks(ctx, st, sess, page)
		if err != nil {
			app.backendError(w, r, err)
			return
		}

		derived, err := tasklist.Derive(tasks, data.TaskState.Selector)
		if err != nil {
			if !errors.Is(err, model.ErrMalformedRecord) {
				app.serverError(w, r, err)
				return
			}
			app.logger.Warn("tasks not derived", "page", page, "error", err)
			data.Error = _msgMalformedTasks
		}
		data.Tasks = derived
	}

	app.render(w, r, http.StatusOK, name, data)
}

func (app *application) handleUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFromRequest(r)
	st := app.workspaces.Get(sess)
	st.workspace.Mount(view.PageUsers)

	users, err := app.loadUsers(ctx, st, sess)
	if err != nil {
		app.backendError(w, r, err)
		return
	}

	data := app.newPageData(r)
	data.Title = "Employees"
	data.Page = view.PageUsers
	data.Users = users
	data.UserState = st.workspace.Users.Snapshot()

	app.render(w, r, http.StatusOK, "users.html", data)
}

func (app *application) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFromRequest(r)
	st := app.workspaces.Get(sess)

	rows, err := app.loadAnalytics(ctx, st, sess)
	if err != nil {
		app.backendError(w, r, err)
		return
	}

	data := app.newPageData(r)
	data.Title = "Task Completion Analytics"
	data.Analytics = rows

	app.render(w, r, http.StatusOK, "analytics.html", data)
}

// backendError renders a failed read. A rejected credential ends the session.
func (app *application) backendError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrUnauthorized):
		sess := sessionFromRequest(r)
		if terr := app.sessions.Teardown(r.Context(), sess.ID); terr != nil {
			app.serverError(w, r, terr)
			return
		}
		app.workspaces.Drop(sess.ID)
		app.clearSessionCookie(w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	default:
		app.logger.Warn("backend read failed", "error", err)
		app.errorPage(w, r, http.StatusBadGateway, _msgBackendUnavailable)
	}
}
