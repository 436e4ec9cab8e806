package main

import (
	"context"

	"github.com/protomem/taskdesk/internal/gateway"
	"github.com/protomem/taskdesk/internal/model"
	"github.com/protomem/taskdesk/internal/querycache"
	"github.com/protomem/taskdesk/internal/session"
	"github.com/protomem/taskdesk/internal/view"
)

// taskQuery picks the listing a page shows. Admins see every task, others only their own.
func taskQuery(page view.Page, sess *model.Session) (string, gateway.TaskScope) {
	if !session.CanSeeAdminViews(sess) {
		return querycache.Key(view.KeyTasks, string(gateway.ScopeMine)), gateway.ScopeMine
	}
	if page == view.PageDashboard {
		return querycache.Key(view.KeyTasks, string(gateway.ScopeDashboard), string(model.RoleAdmin)), gateway.ScopeDashboard
	}
	return querycache.Key(view.KeyTasks, string(gateway.ScopeAll)), gateway.ScopeAll
}

func (app *application) loadTasks(ctx context.Context, st *sessionState, sess *model.Session, page view.Page) ([]model.Task, error) {
	key, scope := taskQuery(page, sess)
	return querycache.Get(ctx, st.cache, key, func(ctx context.Context) ([]model.Task, error) {
		return app.backend.ListTasks(ctx, sess.AccessToken.Unmask(), scope)
	})
}

func (app *application) loadUsers(ctx context.Context, st *sessionState, sess *model.Session) ([]model.User, error) {
	return querycache.Get(ctx, st.cache, view.KeyUsers, func(ctx context.Context) ([]model.User, error) {
		return app.backend.ListUsers(ctx, sess.AccessToken.Unmask())
	})
}

func (app *application) loadAnalytics(ctx context.Context, st *sessionState, sess *model.Session) ([]model.Analytics, error) {
	return querycache.Get(ctx, st.cache, view.KeyAnalytics, func(ctx context.Context) ([]model.Analytics, error) {
		return app.backend.Analytics(ctx, sess.AccessToken.Unmask())
	})
}

func (app *application) loadProfile(ctx context.Context, st *sessionState, sess *model.Session) (model.User, error) {
	return querycache.Get(ctx, st.cache, "me", func(ctx context.Context) (model.User, error) {
		return app.backend.Me(ctx, sess.AccessToken.Unmask())
	})
}

func findTask(tasks []model.Task, id model.ID) (model.Task, bool) {
	for _, task := range tasks {
		if task.ID == id {
			return task, true
		}
	}
	return model.Task{}, false
}

func findUser(users []model.User, id model.ID) (model.User, bool) {
	for _, user := range users {
		if user.ID == id {
			return user, true
		}
	}
	return model.User{}, false
}
