package main

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/protomem/taskdesk/assets"
	"github.com/protomem/taskdesk/internal/model"
	"github.com/protomem/taskdesk/internal/session"
	"github.com/protomem/taskdesk/internal/tasklist"
	"github.com/protomem/taskdesk/internal/version"
	"github.com/protomem/taskdesk/internal/view"
)

type pageData struct {
	Title   string
	Page    view.Page
	Version string

	Session     *model.Session
	Admin       bool
	DisplayName string

	// Error replaces the page body with a banner.
	Error string

	Tab       view.Tab
	Tasks     []model.Task
	TaskState view.TaskBoardState
	Assignees []model.User
	Users     []model.User
	UserState view.UserBoardState
	Analytics []model.Analytics

	LoginUsername string
	LoginError    string
	FieldErrors   map[string]string
}

func (app *application) newPageData(r *http.Request) pageData {
	sess := sessionFromRequest(r)

	data := pageData{
		Version: version.Get(),
		Session: sess,
		Admin:   session.CanSeeAdminViews(sess),
	}
	if sess != nil {
		data.DisplayName = sess.Username
	}
	return data
}

func newTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"title": func(s string) string {
			return cases.Title(language.English).String(s)
		},
		"priorityLabel": func(p model.Priority) string {
			if !p.Valid() {
				return string(p)
			}
			return cases.Title(language.English).String(string(p))
		},
		"dueDate": func(s string) string {
			date, err := tasklist.ParseDueDate(s)
			if err != nil {
				return s
			}
			return date.Human()
		},
		"dict": func(values ...any) map[string]any {
			d := make(map[string]any, len(values)/2)
			for i := 0; i+1 < len(values); i += 2 {
				key, _ := values[i].(string)
				d[key] = values[i+1]
			}
			return d
		},
		"markdown": func(s string) template.HTML {
			var buf bytes.Buffer
			if err := goldmark.Convert([]byte(s), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(s))
			}
			return template.HTML(buf.String())
		},
	}

	return template.New("").Funcs(funcs).ParseFS(assets.EmbeddedFiles, "templates/*.html")
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := app.templates.ExecuteTemplate(&buf, name, data); err != nil {
		app.reportServerError(r, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
