// Package app wires the application together: it opens the database,
// waits for it to become reachable, runs schema migrations, constructs the
// services, and drives the interactive console loop until the user exits
// or the process receives a termination signal.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/skarpenko/govault/internal/auth"
	"github.com/skarpenko/govault/internal/cli"
	"github.com/skarpenko/govault/internal/config"
	"github.com/skarpenko/govault/internal/cryptox"
	"github.com/skarpenko/govault/internal/logging"
	"github.com/skarpenko/govault/internal/repositories/repomanager"
	"github.com/skarpenko/govault/internal/vault"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	cli    *cli.App
}

// NewApp builds the dependency graph. A database that cannot be reached
// after the ping retries is a fatal startup error.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := openDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	kdf := cryptox.Params(c.Interactive)

	as := auth.NewService(db, rm, kdf)
	vs := vault.NewService(db, rm, kdf)
	console := cli.NewApp(as, vs, logger)

	return &App{config: c, logger: logger, db: db, cli: console}, nil
}

// openDatabase opens the pool and pings it with exponential backoff, so a
// database that is still starting up does not kill the process.
func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run drives the console loop and closes the database on the way out.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	app.cli.Run(ctx)

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err.Error())
	}
}
