package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/agalitsyn/secret"
	"github.com/protomem/taskdesk/internal/model"
)

type SessionDAO struct {
	Logger *slog.Logger
	*DB
}

func NewSessionDAO(logger *slog.Logger, db *DB) *SessionDAO {
	return &SessionDAO{
		Logger: logger.With("dao", "session"),
		DB:     db,
	}
}

type sessionRow struct {
	ID          string `db:"id"`
	CreatedAt   int64  `db:"created_at"`
	ExpiresAt   int64  `db:"expires_at"`
	UserID      int64  `db:"user_id"`
	Username    string `db:"username"`
	Role        string `db:"role"`
	ClaimedRole string `db:"claimed_role"`
	AccessToken string `db:"access_token"`
}

func (row sessionRow) toModel() model.Session {
	return model.Session{
		ID:          row.ID,
		CreatedAt:   time.Unix(row.CreatedAt, 0),
		ExpiresAt:   time.Unix(row.ExpiresAt, 0),
		UserID:      model.ID(row.UserID),
		Username:    row.Username,
		Role:        model.Role(row.Role),
		ClaimedRole: model.Role(row.ClaimedRole),
		AccessToken: secret.NewString(row.AccessToken),
	}
}

func (dao *SessionDAO) Get(ctx context.Context, id string) (model.Session, error) {
	logger := dao.Logger.With("query", "get")

	query, args, err := dao.Builder.
		Select("id", "created_at", "expires_at", "user_id", "username", "role", "claimed_role", "access_token").
		From("sessions").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Session{}, err
	}

	logger.Debug("build query", "sql", query)

	var row sessionRow
	if err := dao.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if IsNoRows(err) {
			return model.Session{}, model.NewError("session", model.ErrNotFound)
		}

		logger.Warn("failed query execute", "error", err)

		return model.Session{}, err
	}

	logger.Debug("success query execute", "userId", row.UserID)

	return row.toModel(), nil
}

func (dao *SessionDAO) Insert(ctx context.Context, s model.Session) error {
	logger := dao.Logger.With("query", "insert")

	query, args, err := dao.Builder.
		Insert("sessions").
		Columns("id", "created_at", "expires_at", "user_id", "username", "role", "claimed_role", "access_token").
		Values(
			s.ID, s.CreatedAt.Unix(), s.ExpiresAt.Unix(),
			int64(s.UserID), s.Username, string(s.Role), string(s.ClaimedRole),
			s.AccessToken.Unmask(),
		).
		ToSql()
	if err != nil {
		return err
	}

	// args carry the credential, keep them out of logs
	logger.Debug("build query", "sql", query)

	if _, err := dao.ExecContext(ctx, query, args...); err != nil {
		logger.Warn("failed query execute", "error", err)

		if IsUniqueViolation(err) {
			return model.NewError("session", model.ErrExists)
		}

		return err
	}

	logger.Debug("success query execute", "userId", s.UserID)

	return nil
}

func (dao *SessionDAO) UpdateRole(ctx context.Context, id string, role model.Role) error {
	logger := dao.Logger.With("query", "updateRole")

	query, args, err := dao.Builder.
		Update("sessions").
		Set("role", string(role)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	logger.Debug("build query", "sql", query, "args", args)

	res, err := dao.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Warn("failed query execute", "error", err)
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.NewError("session", model.ErrNotFound)
	}

	return nil
}

func (dao *SessionDAO) Delete(ctx context.Context, id string) error {
	logger := dao.Logger.With("query", "delete")

	query, args, err := dao.Builder.
		Delete("sessions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	logger.Debug("build query", "sql", query)

	if _, err = dao.ExecContext(ctx, query, args...); err != nil {
		logger.Warn("failed query execute", "error", err)

		return err
	}

	logger.Debug("success query execute")

	return nil
}

// DeleteExpired removes sessions that expired at or before now and returns how many went.
func (dao *SessionDAO) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	logger := dao.Logger.With("query", "deleteExpired")

	query, args, err := dao.Builder.
		Delete("sessions").
		Where(squirrel.LtOrEq{"expires_at": now.Unix()}).
		ToSql()
	if err != nil {
		return 0, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	res, err := dao.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Warn("failed query execute", "error", err)
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	logger.Debug("success query execute", "deleted", n)

	return n, nil
}
