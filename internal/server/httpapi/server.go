// Package httpapi exposes the auth operations over HTTP/JSON. The refresh
// token travels in an httpOnly cookie; the access token in the
// Authorization header.
package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/mbazhenov/authkeeper/internal/logging"
	"github.com/mbazhenov/authkeeper/internal/server/models"
	"github.com/mbazhenov/authkeeper/internal/server/services"
)

// AuthService is the orchestrator surface the transport depends on.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*services.AuthResult, error)
	Activate(ctx context.Context, link string) error
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	ListIdentities(ctx context.Context) ([]models.Projection, error)
	VerifyAccess(token string) (models.Projection, error)
}

// Server hosts the fiber application for the auth API.
type Server struct {
	address      string
	clientURL    string
	cookieMaxAge time.Duration
	auth         AuthService
	logger       logging.Logger
	app          *fiber.App
}

// NewServer wires the routes. clientURL is the single trusted browser
// origin; cookieMaxAge should match the refresh token lifetime.
func NewServer(address, clientURL string, cookieMaxAge time.Duration, auth AuthService, logger logging.Logger) *Server {
	s := &Server{
		address:      address,
		clientURL:    clientURL,
		cookieMaxAge: cookieMaxAge,
		auth:         auth,
		logger:       logger.With("module", "http_server"),
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     clientURL,
		AllowCredentials: true,
	}))

	api := app.Group("/api")
	api.Post("/registration", s.handleRegistration)
	api.Post("/login", s.handleLogin)
	api.Post("/logout", s.handleLogout)
	api.Get("/activate/:link", s.handleActivate)
	api.Get("/refresh", s.handleRefresh)
	api.Get("/users", s.accessTokenRequired, s.handleListIdentities)

	s.app = app
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.Shutdown(); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
	return s.app.Listen(s.address)
}
