package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/protomem/taskdesk/assets"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const _defaultTimeout = 3 * time.Second

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

type DB struct {
	*sqlx.DB
	Dialect Dialect
	Builder squirrel.StatementBuilderType
}

// New connects to a "postgres://..." or "sqlite://<path>" DSN and optionally migrates it.
func New(dsn string, automigrate bool) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), _defaultTimeout)
	defer cancel()

	dialect, driverName, driverDSN, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, driverName, driverDSN)
	if err != nil {
		return nil, fmt.Errorf("database: connect %s: %w", dialect, err)
	}

	switch dialect {
	case DialectSQLite:
		// one writer at a time, otherwise modernc reports SQLITE_BUSY under load
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxIdleTime(5 * time.Minute)
		db.SetConnMaxLifetime(2 * time.Hour)
	}

	if automigrate {
		if err := migrateUp(dialect, dsn); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &DB{
		DB:      db,
		Dialect: dialect,
		Builder: squirrel.StatementBuilder.PlaceholderFormat(placeholderFor(dialect)),
	}, nil
}

func parseDSN(dsn string) (dialect Dialect, driverName, driverDSN string, err error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres, "pgx", dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return "", "", "", errors.New("database: empty sqlite path")
		}
		return DialectSQLite, "sqlite", path, nil
	default:
		return "", "", "", fmt.Errorf("database: unsupported dsn scheme in %q", redactDSN(dsn))
	}
}

func placeholderFor(dialect Dialect) squirrel.PlaceholderFormat {
	if dialect == DialectSQLite {
		return squirrel.Question
	}
	return squirrel.Dollar
}

func migrateUp(dialect Dialect, dsn string) error {
	iofsDriver, err := iofs.New(assets.EmbeddedFiles, "migrations/"+string(dialect))
	if err != nil {
		return err
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", iofsDriver, dsn)
	if err != nil {
		return fmt.Errorf("database: migrator: %w", err)
	}
	defer migrator.Close()

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		return nil
	case err != nil:
		return fmt.Errorf("database: migrate up: %w", err)
	}
	return nil
}

func redactDSN(dsn string) string {
	if at := strings.LastIndex(dsn, "@"); at != -1 {
		if scheme := strings.Index(dsn, "://"); scheme != -1 && scheme < at {
			return dsn[:scheme+3] + "***" + dsn[at:]
		}
	}
	return dsn
}
