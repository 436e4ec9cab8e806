package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/agalitsyn/secret"
	"github.com/golang-jwt/jwt/v5"

	"github.com/protomem/taskdesk/internal/gateway"
	"github.com/protomem/taskdesk/internal/model"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

type memStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]model.Session{}}
}

func (s *memStore) Insert(_ context.Context, sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *memStore) Get(_ context.Context, id string) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return model.Session{}, model.NewError("session", model.ErrNotFound)
	}
	return sess, nil
}

func (s *memStore) UpdateRole(_ context.Context, id string, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[id]
	sess.Role = role
	s.sessions[id] = sess
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

type fakeBackend struct {
	token   string
	profile model.User
	meErr   error
}

func (b *fakeBackend) Login(_ context.Context, creds gateway.Credentials) (string, error) {
	if creds.Password != "secret" {
		return "", model.ErrUnauthorized
	}
	return b.token, nil
}

func (b *fakeBackend) Me(context.Context, string) (model.User, error) {
	return b.profile, b.meErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecodeClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	claims, err := DecodeClaims(signToken(t, jwt.MapClaims{
		"sub": 12, "username": "ann", "role": "admin", "exp": exp.Unix(),
	}))
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 12 || claims.Username != "ann" || claims.Role != model.RoleAdmin {
		t.Errorf("claims = %+v", claims)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Errorf("exp = %v, want %v", claims.ExpiresAt, exp)
	}

	claims, err = DecodeClaims(signToken(t, jwt.MapClaims{"sub": "7", "role": "root"}))
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 7 || claims.Role != model.RoleUnknown {
		t.Errorf("string sub claims = %+v", claims)
	}

	if _, err := DecodeClaims(signToken(t, jwt.MapClaims{"username": "x"})); err == nil {
		t.Error("missing subject accepted")
	}
	if _, err := DecodeClaims("not-a-token"); err == nil {
		t.Error("garbage accepted")
	}
}

func TestCanSeeAdminViews(t *testing.T) {
	tok := secret.NewString("tok")
	tests := []struct {
		name string
		sess *model.Session
		want bool
	}{
		{"nil", nil, false},
		{"no token", &model.Session{ID: "a", Role: model.RoleAdmin}, false},
		{"unresolved", &model.Session{ID: "a", ClaimedRole: model.RoleAdmin, AccessToken: tok}, false},
		{"user", &model.Session{ID: "a", Role: model.RoleUser, AccessToken: tok}, false},
		{"admin", &model.Session{ID: "a", Role: model.RoleAdmin, AccessToken: tok}, true},
	}
	for _, tt := range tests {
		if got := CanSeeAdminViews(tt.sess); got != tt.want {
			t.Errorf("%s: CanSeeAdminViews = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestManager_Lifecycle(t *testing.T) {
	store := newMemStore()
	backend := &fakeBackend{
		token:   signToken(t, jwt.MapClaims{"sub": 3, "username": "ann", "role": "admin"}),
		profile: model.User{ID: 3, Username: "ann", Role: model.RoleAdmin},
	}
	m := NewManager(discardLogger(), store, backend, time.Hour)
	ctx := context.Background()

	if _, err := m.Establish(ctx, gateway.Credentials{Username: "ann", Password: "bad"}); !errors.Is(err, model.ErrUnauthorized) {
		t.Fatalf("bad login err = %v", err)
	}
	if len(store.sessions) != 0 {
		t.Fatal("rejected login stored a session")
	}

	sess, err := m.Establish(ctx, gateway.Credentials{Username: "ann", Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if !CanSeeAdminViews(&sess) || sess.UserID != 3 {
		t.Fatalf("session = %+v", sess)
	}

	got, err := m.Hydrate(ctx, sess.ID)
	if err != nil || got.AccessToken.Unmask() != backend.token {
		t.Fatalf("Hydrate = %+v, %v", got, err)
	}

	if err := m.Teardown(ctx, sess.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Hydrate(ctx, sess.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("after teardown err = %v", err)
	}
}

func TestManager_UnresolvedRoleIsLeastPrivileged(t *testing.T) {
	store := newMemStore()
	backend := &fakeBackend{
		token: signToken(t, jwt.MapClaims{"sub": 3, "username": "ann", "role": "admin"}),
		meErr: errors.New("backend down"),
	}
	m := NewManager(discardLogger(), store, backend, time.Hour)
	ctx := context.Background()

	sess, err := m.Establish(ctx, gateway.Credentials{Username: "ann", Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if sess.Role != model.RoleUnknown || sess.ClaimedRole != model.RoleAdmin {
		t.Fatalf("roles = %q / %q", sess.Role, sess.ClaimedRole)
	}
	if CanSeeAdminViews(&sess) {
		t.Fatal("unresolved role granted admin views")
	}

	// Profile comes back: next hydration resolves and persists the role.
	backend.meErr = nil
	backend.profile = model.User{ID: 3, Role: model.RoleAdmin}

	sess, err = m.Hydrate(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Role != model.RoleAdmin || store.sessions[sess.ID].Role != model.RoleAdmin {
		t.Fatalf("role not resolved: %+v", sess)
	}
}

func TestManager_ExpiredSession(t *testing.T) {
	store := newMemStore()
	backend := &fakeBackend{
		token:   signToken(t, jwt.MapClaims{"sub": 1, "role": "user"}),
		profile: model.User{ID: 1, Role: model.RoleUser},
	}
	m := NewManager(discardLogger(), store, backend, time.Minute)
	ctx := context.Background()

	sess, err := m.Establish(ctx, gateway.Credentials{Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := m.Hydrate(ctx, sess.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expired err = %v", err)
	}
	if _, ok := store.sessions[sess.ID]; ok {
		t.Fatal("expired session not removed")
	}
}
