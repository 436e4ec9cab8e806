// Package session owns the lifecycle of authenticated browser sessions:
// establishment at login, hydration on every request and teardown at logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/agalitsyn/secret"
	"github.com/google/uuid"

	"github.com/protomem/taskdesk/internal/gateway"
	"github.com/protomem/taskdesk/internal/model"
)

// Authenticated reports whether s carries a usable credential.
func Authenticated(s *model.Session) bool {
	return s != nil && s.ID != "" && s.AccessToken.Unmask() != ""
}

// CanSeeAdminViews is the single capability check behind every admin-only route and control.
// An unresolved role never grants it.
func CanSeeAdminViews(s *model.Session) bool {
	return Authenticated(s) && s.Role == model.RoleAdmin
}

type Store interface {
	Insert(ctx context.Context, s model.Session) error
	Get(ctx context.Context, id string) (model.Session, error)
	UpdateRole(ctx context.Context, id string, role model.Role) error
	Delete(ctx context.Context, id string) error
}

type Backend interface {
	Login(ctx context.Context, creds gateway.Credentials) (string, error)
	Me(ctx context.Context, token string) (model.User, error)
}

type Manager struct {
	logger  *slog.Logger
	store   Store
	backend Backend
	ttl     time.Duration
	now     func() time.Time
}

func NewManager(logger *slog.Logger, store Store, backend Backend, ttl time.Duration) *Manager {
	return &Manager{
		logger:  logger.With("module", "session"),
		store:   store,
		backend: backend,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Establish logs in against the backend and persists the resulting session.
func (m *Manager) Establish(ctx context.Context, creds gateway.Credentials) (model.Session, error) {
	token, err := m.backend.Login(ctx, creds)
	if err != nil {
		return model.Session{}, err
	}

	claims, err := DecodeClaims(token)
	if err != nil {
		return model.Session{}, fmt.Errorf("%w: %w", model.ErrUnauthorized, err)
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	if !claims.ExpiresAt.IsZero() && claims.ExpiresAt.Before(expiresAt) {
		expiresAt = claims.ExpiresAt
	}

	sess := model.Session{
		ID:          uuid.NewString(),
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
		UserID:      claims.UserID,
		Username:    claims.Username,
		ClaimedRole: claims.Role,
		AccessToken: secret.NewString(token),
	}
	sess.Role = m.resolveRole(ctx, &sess)

	if err := m.store.Insert(ctx, sess); err != nil {
		return model.Session{}, err
	}

	m.logger.Info("session established", "userId", sess.UserID, "username", sess.Username, "role", sess.Role)

	return sess, nil
}

// Hydrate loads a persisted session. Expired or unknown ids yield model.ErrNotFound.
func (m *Manager) Hydrate(ctx context.Context, id string) (model.Session, error) {
	if id == "" {
		return model.Session{}, model.NewError("session", model.ErrNotFound)
	}

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return model.Session{}, err
	}

	if sess.Expired(m.now()) {
		if err := m.store.Delete(ctx, id); err != nil {
			m.logger.Warn("failed to drop expired session", "error", err)
		}
		return model.Session{}, model.NewError("session", model.ErrNotFound)
	}

	if sess.Role == model.RoleUnknown {
		if role := m.resolveRole(ctx, &sess); role != model.RoleUnknown {
			sess.Role = role
			if err := m.store.UpdateRole(ctx, id, role); err != nil {
				m.logger.Warn("failed to store resolved role", "error", err)
			}
		}
	}

	return sess, nil
}

// Teardown removes the session; the credential and its summary go together.
func (m *Manager) Teardown(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, model.ErrNotFound) {
		return err
	}
	m.logger.Info("session closed")
	return nil
}

// resolveRole asks the backend for the profile; any failure leaves the role unknown.
func (m *Manager) resolveRole(ctx context.Context, sess *model.Session) model.Role {
	profile, err := m.backend.Me(ctx, sess.AccessToken.Unmask())
	if err != nil {
		m.logger.Warn("profile not resolved", "userId", sess.UserID, "error", err)
		return model.RoleUnknown
	}

	if !profile.Role.Valid() {
		return model.RoleUnknown
	}
	if sess.ClaimedRole != model.RoleUnknown && profile.Role != sess.ClaimedRole {
		m.logger.Warn("credential role differs from profile",
			"userId", sess.UserID, "claimed", sess.ClaimedRole, "profile", profile.Role)
	}
	return profile.Role
}
