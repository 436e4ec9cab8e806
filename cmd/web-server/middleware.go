package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/tomasen/realip"

	"github.com/protomem/taskdesk/internal/ctxstore"
	"github.com/protomem/taskdesk/internal/model"
	"github.com/protomem/taskdesk/internal/response"
	"github.com/protomem/taskdesk/internal/session"
)

const (
	_traceIDKey = ctxstore.Key("traceId")
	_sessionKey = ctxstore.Key("session")

	_sessionCookie = "taskdesk_session"
)

func (app *application) traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := genTraceID()
		ctx := ctxstore.With(r.Context(), _traceIDKey, tid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *application) logAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw := response.NewMetricsResponseWriter(w)
		next.ServeHTTP(mw, r)

		var (
			ip     = realip.FromRequest(r)
			method = r.Method
			url    = r.URL.String()
			proto  = r.Proto
			tid    = ctxstore.FromOr(r.Context(), _traceIDKey, "")
		)

		userAttrs := slog.Group("user", "ip", ip)
		requestAttrs := slog.Group("request", "method", method, "url", url, "proto", proto, _traceIDKey.String(), tid)
		responseAttrs := slog.Group("response", "status", mw.StatusCode, "size", mw.BytesCount)

		app.serverLogger().Info("access", userAttrs, requestAttrs, responseAttrs)
	})
}

func (app *application) CORS(next http.Handler) http.Handler {
	return cors.AllowAll().Handler(next)
}

// loadSession resolves the session cookie. Unknown or expired sessions clear the cookie.
func (app *application) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(_sessionCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := app.sessions.Hydrate(r.Context(), cookie.Value)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				app.workspaces.Drop(cookie.Value)
				app.clearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			app.serverError(w, r, err)
			return
		}

		ctx := ctxstore.With(r.Context(), _sessionKey, &sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.Authenticated(sessionFromRequest(r)) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		w.Header().Add("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// requireAdmin sends everybody who may not see admin views back to the dashboard.
func (app *application) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.CanSeeAdminViews(sessionFromRequest(r)) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *application) setSessionCookie(w http.ResponseWriter, sess model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     _sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   app.config.session.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (app *application) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     _sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   app.config.session.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionFromRequest(r *http.Request) *model.Session {
	return ctxstore.FromOr[*model.Session](r.Context(), _sessionKey, nil)
}

func genTraceID() string {
	id, _ := uuid.NewRandom()
	return id.String()
}
