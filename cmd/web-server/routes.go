package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (app *application) routes() http.Handler {
	mux := chi.NewRouter()

	mux.NotFound(app.notFound)
	mux.MethodNotAllowed(app.methodNotAllowed)

	mux.Use(app.traceID)
	mux.Use(app.logAccess)
	mux.Use(app.recoverPanic)

	mux.With(app.CORS).Get("/status", app.handleStatus)

	mux.Group(func(mux chi.Router) {
		mux.Use(app.loadSession)

		mux.Get("/login", app.handleLoginPage)
		mux.Post("/login", app.handleLogin)

		mux.Group(func(mux chi.Router) {
			mux.Use(app.requireSession)

			mux.Post("/logout", app.handleLogout)

			mux.Get("/", app.handleDashboard)
			mux.Get("/tasks", app.handleTasks)

			mux.Post("/{page}/tasks/filter", app.handleTaskFilters)
			mux.Post("/{page}/tasks/close", app.handleTaskClose)
			mux.Post("/{page}/tasks/collapse", app.handleTaskCollapse)
			mux.Post("/{page}/tasks/dismiss", app.handleTaskDismiss)
			mux.Post("/{page}/tasks/{taskId}/toggle", app.handleTaskToggle)

			mux.Group(func(mux chi.Router) {
				mux.Use(app.requireAdmin)

				mux.Get("/users", app.handleUsers)
				mux.Get("/analytics", app.handleAnalytics)

				mux.Post("/dashboard/tab", app.handleDashboardTab)

				mux.Post("/{page}/tasks/new", app.handleTaskNew)
				mux.Post("/{page}/tasks/save", app.handleTaskSave)
				mux.Post("/{page}/tasks/confirm-delete", app.handleTaskConfirmDelete)
				mux.Post("/{page}/tasks/cancel-delete", app.handleTaskCancelDelete)
				mux.Post("/{page}/tasks/{taskId}/edit", app.handleTaskEdit)
				mux.Post("/{page}/tasks/{taskId}/view", app.handleTaskView)
				mux.Post("/{page}/tasks/{taskId}/menu", app.handleTaskMenu)
				mux.Post("/{page}/tasks/{taskId}/delete", app.handleTaskDelete)

				mux.Post("/{page}/users/new", app.handleUserNew)
				mux.Post("/{page}/users/save", app.handleUserSave)
				mux.Post("/{page}/users/close", app.handleUserClose)
				mux.Post("/{page}/users/collapse", app.handleUserCollapse)
				mux.Post("/{page}/users/dismiss", app.handleUserDismiss)
				mux.Post("/{page}/users/confirm-delete", app.handleUserConfirmDelete)
				mux.Post("/{page}/users/cancel-delete", app.handleUserCancelDelete)
				mux.Post("/{page}/users/{userId}/edit", app.handleUserEdit)
				mux.Post("/{page}/users/{userId}/menu", app.handleUserMenu)
				mux.Post("/{page}/users/{userId}/delete", app.handleUserDelete)
			})
		})
	})

	app.logger.Debug("routes configured", "routes", chiRoutesToStrings(mux.Routes()))

	return mux
}

func chiRoutesToStrings(routes []chi.Route) []string {
	parsedRoutes := make([]string, 0, len(routes))
	for _, route := range routes {
		parsedRoutes = append(parsedRoutes, route.Pattern)
	}
	return parsedRoutes
}
