package main

import (
	"flag"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/protomem/taskdesk/internal/database"
	"github.com/protomem/taskdesk/internal/env"
	"github.com/protomem/taskdesk/internal/gateway"
	"github.com/protomem/taskdesk/internal/session"
	"github.com/protomem/taskdesk/internal/version"
)

var (
	_cfgFile     = flag.String("cfg", "", "path to config file")
	_showVersion = flag.Bool("version", false, "display version and exit")
)

func main() {
	flag.Parse()

	if *_showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return
	}

	if *_cfgFile != "" {
		if err := env.Load(*_cfgFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(env.GetString("LOG_LEVEL", "info")),
	}))

	err := run(logger)
	if err != nil {
		trace := string(debug.Stack())
		logger.Error(err.Error(), "trace", trace)
		os.Exit(1)
	}
}

type config struct {
	httpHost string
	httpPort int
	backend  struct {
		url     string
		timeout time.Duration
	}
	db struct {
		dsn         string
		automigrate bool
	}
	session struct {
		ttl          time.Duration
		cookieSecure bool
		cacheSize    int
	}
}

type application struct {
	config     config
	db         *database.DB
	backend    *gateway.Client
	sessions   *session.Manager
	workspaces *workspaceRegistry
	templates  *template.Template
	logger     *slog.Logger
	wg         sync.WaitGroup
}

func run(logger *slog.Logger) error {
	var cfg config

	cfg.httpHost = env.GetString("HTTP_HOST", "localhost")
	cfg.httpPort = env.GetInt("HTTP_PORT", 8080)
	cfg.backend.url = env.GetString("BACKEND_URL", "http://localhost:3000")
	cfg.backend.timeout = env.GetDuration("BACKEND_TIMEOUT", 10*time.Second)
	cfg.db.dsn = env.GetString("DB_DSN", "sqlite://taskdesk.db")
	cfg.db.automigrate = env.GetBool("DB_AUTOMIGRATE", true)
	cfg.session.ttl = env.GetDuration("SESSION_TTL", 24*time.Hour)
	cfg.session.cookieSecure = env.GetBool("SESSION_COOKIE_SECURE", false)
	cfg.session.cacheSize = env.GetInt("CACHE_SESSIONS", 1024)

	db, err := database.New(cfg.db.dsn, cfg.db.automigrate)
	if err != nil {
		return err
	}
	defer db.Close()

	backend, err := gateway.New(logger, cfg.backend.url, cfg.backend.timeout)
	if err != nil {
		return err
	}

	templates, err := newTemplates()
	if err != nil {
		return err
	}

	app := &application{
		config:     cfg,
		db:         db,
		backend:    backend,
		sessions:   session.NewManager(logger, database.NewSessionDAO(logger, db), backend, cfg.session.ttl),
		workspaces: newWorkspaceRegistry(logger, backend, cfg.session.cacheSize, cfg.session.ttl),
		templates:  templates,
		logger:     logger,
	}

	return app.serveHTTP()
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
