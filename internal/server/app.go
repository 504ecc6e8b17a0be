// Package server initializes and runs the AuthKeeper server: it opens the
// database, runs migrations, wires the auth components, and starts the HTTP
// endpoint with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mbazhenov/authkeeper/internal/logging"
	"github.com/mbazhenov/authkeeper/internal/server/auth"
	"github.com/mbazhenov/authkeeper/internal/server/config"
	"github.com/mbazhenov/authkeeper/internal/server/httpapi"
	"github.com/mbazhenov/authkeeper/internal/server/mail"
	"github.com/mbazhenov/authkeeper/internal/server/password"
	"github.com/mbazhenov/authkeeper/internal/server/repositories/repomanager"
	"github.com/mbazhenov/authkeeper/internal/server/services"
)

// App holds the composed components for one server process. Every component
// is constructed exactly once here and passed by reference; there are no
// process-wide singletons.
type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService *services.AuthService
}

// NewApp wires the application from config: database, migrations,
// repositories, token issuer, password hasher, mailer, orchestrator.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	return newApp(ctx, cfg, db, repomanager.NewPostgresRepositoryManager())
}

// newApp finishes the wiring over an already-opened connection. It owns db
// from this point: on any construction error the connection is closed.
func newApp(ctx context.Context, cfg *config.Config, db *sql.DB, repos repomanager.RepositoryManager) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout)

	if err := repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	issuer := auth.NewIssuer(
		[]byte(cfg.AccessTokenSecret), []byte(cfg.RefreshTokenSecret),
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)

	hasher := password.NewHasher(cfg.PasswordHashCost)

	mailer, err := mail.NewSMTPMailer(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	authService := services.NewAuthService(db, repos, issuer, hasher, mailer, cfg.ActivationBaseURL)

	return &App{config: cfg, logger: logger, db: db, authService: authService}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(
		app.config.EndpointAddr,
		app.config.ClientURL,
		app.config.RefreshTokenValidityDuration,
		app.authService,
		app.logger,
	)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run starts the HTTP server and blocks until shutdown completes.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
