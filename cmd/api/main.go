package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/rafatrikUOC/soloprogress/internal/envstruct"
	"github.com/rafatrikUOC/soloprogress/internal/errors"
	"github.com/rafatrikUOC/soloprogress/internal/flightrecorder"
	"github.com/rafatrikUOC/soloprogress/internal/logging"
	"github.com/rafatrikUOC/soloprogress/internal/pprofserver"
	"github.com/rafatrikUOC/soloprogress/internal/sqlite"
	"github.com/rafatrikUOC/soloprogress/internal/training"
)

type application struct {
	logger          *slog.Logger
	db              *sqlite.Database
	sessionManager  *scs.SessionManager
	trainingService *training.Service
	flightRecorder  *flightrecorder.Service
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"SOLOPROGRESS_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"SOLOPROGRESS_SQLITE_URL" envDefault:"./soloprogress.sqlite3"`
	// PProfAddr is the optional address to listen on for the pprof server.
	PProfAddr string `env:"SOLOPROGRESS_PPROF_ADDR" envDefault:""`
	// SessionLifetimeHours controls how long an identified session stays valid.
	SessionLifetimeHours int `env:"SOLOPROGRESS_SESSION_LIFETIME_HOURS" envDefault:"720"`
	// TracesDir enables timeout trace capture when set to a writable directory.
	TracesDir string `env:"SOLOPROGRESS_TRACES_DIR" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PProfAddr != "" {
		pprofserver.Launch(ctx, cfg.PProfAddr, logger)
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	var recorder *flightrecorder.Service
	if cfg.TracesDir != "" {
		if recorder, err = flightrecorder.New(flightrecorder.Config{
			Logger:    logger,
			MinAge:    0,
			MaxBytes:  0,
			TracesDir: cfg.TracesDir,
		}); err != nil {
			return errors.Wrap(err, "initialise flight recorder")
		}
		if err = recorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer recorder.Stop(ctx)
	}

	app := application{
		logger:          logger,
		db:              db,
		sessionManager:  initializeSessionManager(db, cfg.SessionLifetimeHours),
		trainingService: training.NewService(db, logger),
		flightRecorder:  recorder,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(db *sqlite.Database, lifetimeHours int) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(db.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = time.Duration(lifetimeHours) * time.Hour
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
