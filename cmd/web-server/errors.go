package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/protomem/taskdesk/internal/ctxstore"
)

func (app *application) reportServerError(r *http.Request, err error) {
	var (
		message = err.Error()
		method  = r.Method
		url     = r.URL.String()
		tid     = ctxstore.FromOr(r.Context(), _traceIDKey, "")
		trace   = string(debug.Stack())
	)

	requestAttrs := slog.Group("request", "method", method, "url", url, _traceIDKey.String(), tid)
	app.serverLogger().Error(message, requestAttrs, "trace", trace)
}

func (app *application) errorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := app.newPageData(r)
	data.Title = http.StatusText(status)
	data.Error = message

	app.render(w, r, status, "error.html", data)
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.reportServerError(r, err)

	message := "The server encountered a problem and could not process your request"
	app.errorPage(w, r, http.StatusInternalServerError, message)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	message := "The requested resource could not be found"
	app.errorPage(w, r, http.StatusNotFound, message)
}

func (app *application) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("The %s method is not supported for this resource", r.Method)
	app.errorPage(w, r, http.StatusMethodNotAllowed, message)
}

func (app *application) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	app.errorPage(w, r, http.StatusBadRequest, err.Error())
}
