package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/protomem/taskdesk/internal/model"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := New(logger, srv.URL, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthorized","statusCode":401}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok"}`))
	})
	c := newTestClient(t, mux)

	token, err := c.Login(context.Background(), Credentials{Username: "ann", Password: "secret"})
	if err != nil || token != "tok" {
		t.Fatalf("Login = %q, %v", token, err)
	}

	_, err = c.Login(context.Background(), Credentials{Username: "ann", Password: "nope"})
	if !errors.Is(err, model.ErrUnauthorized) {
		t.Fatalf("bad login err = %v", err)
	}
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Message != "Unauthorized" {
		t.Fatalf("status error = %#v", err)
	}
}

func TestListTasks_ScopeAndBearer(t *testing.T) {
	var gotPath, gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotAuth = r.URL.Path, r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[{"id":3,"title":"t","priority":"high","dueDate":"2024-01-05","completed":false,"assignedTo":{"id":9,"username":"bob"}}]`))
	}))

	tests := []struct {
		scope TaskScope
		path  string
	}{
		{ScopeDashboard, "/api/tasks"},
		{ScopeAll, "/api/tasks/all"},
		{ScopeMine, "/api/tasks/my"},
	}
	for _, tt := range tests {
		tasks, err := c.ListTasks(context.Background(), "tok", tt.scope)
		if err != nil {
			t.Fatal(err)
		}
		if gotPath != tt.path {
			t.Errorf("scope %s hit %s, want %s", tt.scope, gotPath, tt.path)
		}
		if gotAuth != "Bearer tok" {
			t.Errorf("Authorization = %q", gotAuth)
		}
		if len(tasks) != 1 || tasks[0].AssignedTo == nil || tasks[0].AssignedTo.Username != "bob" {
			t.Errorf("tasks = %+v", tasks)
		}
	}
}

func TestMutations(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]any
	}
	var calls []call

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, call{r.Method, r.URL.Path, body})
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	ctx := context.Background()

	in := TaskInput{Title: "a", Description: "b", Priority: model.PriorityLow, DueDate: "2024-01-01", AssignedToUserID: 4}
	if _, err := c.CreateTask(ctx, "tok", in); err != nil {
		t.Fatal(err)
	}
	if _, err := c.UpdateTaskDetails(ctx, "tok", 7, in); err != nil {
		t.Fatal(err)
	}
	if _, err := c.SetTaskCompleted(ctx, "tok", 7, true); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteTask(ctx, "tok", 7); err != nil {
		t.Fatal(err)
	}
	if _, err := c.RegisterUser(ctx, "tok", model.User{Username: "u", Password: "p"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.UpdateUser(ctx, "tok", 5, model.User{Username: "u"}); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteUser(ctx, "tok", 5); err != nil {
		t.Fatal(err)
	}

	want := []struct{ method, path string }{
		{http.MethodPost, "/api/tasks/create"},
		{http.MethodPut, "/api/tasks/7/details"},
		{http.MethodPut, "/api/tasks/7/update"},
		{http.MethodDelete, "/api/tasks/7"},
		{http.MethodPost, "/api/auth/register"},
		{http.MethodPut, "/api/users/5"},
		{http.MethodDelete, "/api/users/5"},
	}
	if len(calls) != len(want) {
		t.Fatalf("got %d calls, want %d", len(calls), len(want))
	}
	for i, w := range want {
		if calls[i].method != w.method || calls[i].path != w.path {
			t.Errorf("call %d = %s %s, want %s %s", i, calls[i].method, calls[i].path, w.method, w.path)
		}
	}

	if got := calls[0].body["assignedToUserId"]; got != float64(4) {
		t.Errorf("assignedToUserId = %v", got)
	}
	if got := calls[2].body["completed"]; got != true {
		t.Errorf("completed = %v", got)
	}
	if _, ok := calls[5].body["password"]; ok {
		t.Error("empty password must not be sent on update")
	}
}

func TestStatusErrorMapping(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":["task not found"]}`))
	}))

	err := c.DeleteTask(context.Background(), "tok", 1)
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if errors.Is(err, model.ErrUnauthorized) {
		t.Fatal("404 must not look like 401")
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer close(release)
	c.timeout = 50 * time.Millisecond

	_, err := c.ListUsers(context.Background(), "tok")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := New(logger, "ftp://backend", 0); err == nil {
		t.Fatal("expected error for ftp scheme")
	}
}
