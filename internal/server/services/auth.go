// Package services contains server-side business logic. This file implements
// AuthService, the orchestrator for registration, activation, login, logout,
// and refresh-token rotation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mbazhenov/authkeeper/internal/common"
	"github.com/mbazhenov/authkeeper/internal/dbx"
	"github.com/mbazhenov/authkeeper/internal/server/auth"
	"github.com/mbazhenov/authkeeper/internal/server/mail"
	"github.com/mbazhenov/authkeeper/internal/server/models"
	"github.com/mbazhenov/authkeeper/internal/server/repositories/repomanager"
)

// AuthResult is what every successful token-issuing operation returns:
// a fresh token pair plus the identity projection it was minted from.
type AuthResult struct {
	Tokens   auth.TokenPair
	Identity models.Projection
}

// Hasher is the credential verifier the orchestrator depends on.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer mints and verifies access/refresh token pairs.
type TokenIssuer interface {
	GeneratePair(p models.Projection) (*auth.TokenPair, error)
	VerifyAccess(token string) (models.Projection, error)
	VerifyRefresh(token string) (models.Projection, error)
}

// AuthService composes the identity store, session store, token issuer,
// credential verifier, and notification gateway. It is the only caller of
// those components; they never call each other.
type AuthService struct {
	db                *sql.DB
	repos             repomanager.RepositoryManager
	issuer            TokenIssuer
	hasher            Hasher
	mailer            mail.Mailer
	activationBaseURL string
}

// NewAuthService constructs an AuthService from explicitly injected
// components. activationBaseURL is the absolute URL prefix activation links
// are mailed under, e.g. "http://localhost:8080".
func NewAuthService(db *sql.DB, repos repomanager.RepositoryManager, issuer TokenIssuer,
	hasher Hasher, mailer mail.Mailer, activationBaseURL string) *AuthService {
	return &AuthService{
		db:                db,
		repos:             repos,
		issuer:            issuer,
		hasher:            hasher,
		mailer:            mailer,
		activationBaseURL: activationBaseURL,
	}
}

// Register creates an inactive identity, mails its activation link, and
// issues the first token pair. The email conflict check runs before any
// hashing or link generation, so a duplicate registration has no side
// effects. If the activation mail fails after the identity was created,
// the error propagates and the identity stays (unactivated, no session):
// an accepted degraded state, not rolled back.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	repo := s.repos.Identities(s.db)

	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return nil, common.ErrAlreadyExists
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	link := uuid.NewString()

	identity, err := repo.Create(ctx, &models.Identity{
		Email:          email,
		PasswordHash:   hash,
		ActivationLink: link,
	})
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendActivation(ctx, email, s.activationURL(link)); err != nil {
		return nil, err
	}

	return s.issueFor(ctx, identity)
}

// Activate flips the identity found by its activation link to activated.
// Re-activating an already active identity is a no-op, not an error.
func (s *AuthService) Activate(ctx context.Context, link string) error {
	repo := s.repos.Identities(s.db)

	identity, err := repo.FindByActivationLink(ctx, link)
	if err != nil {
		return err
	}
	if identity.IsActivated {
		return nil
	}
	identity.IsActivated = true
	return repo.Save(ctx, identity)
}

// Login verifies the credentials and issues a new token pair, overwriting
// any previous session for the identity. Activation state is carried in the
// projection but does not gate login.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	identity, err := s.repos.Identities(s.db).FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(password, identity.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	return s.issueFor(ctx, identity)
}

// Logout deletes the session holding the refresh token. Logging out with
// an unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.repos.Sessions(s.db).DeleteByToken(ctx, refreshToken)
}

// Refresh rotates a refresh token: it verifies the token, requires that a
// session row still holds exactly this token (detecting reuse of a
// rotated-out or logged-out token), re-resolves the identity so state
// changes such as activation are reflected, and issues a brand-new pair.
// Every failure on the way collapses to common.ErrUnauthorized.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, common.ErrUnauthorized
	}

	decoded, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, common.ErrUnauthorized
	}

	if _, err := s.repos.Sessions(s.db).FindByToken(ctx, refreshToken); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, err
	}

	identity, err := s.repos.Identities(s.db).FindByID(ctx, decoded.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, err
	}

	projection := identity.Projection()
	pair, err := s.issuer.GeneratePair(projection)
	if err != nil {
		return nil, fmt.Errorf("signing token pair: %w", err)
	}

	// Rotate atomically: the old token stops resolving the instant the
	// new one is stored.
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Sessions(tx)
		if err := repo.DeleteByToken(ctx, refreshToken); err != nil {
			return err
		}
		return repo.Upsert(ctx, identity.ID, pair.RefreshToken)
	}); err != nil {
		return nil, err
	}

	return &AuthResult{Tokens: *pair, Identity: projection}, nil
}

// ListIdentities returns the projection of every registered identity.
func (s *AuthService) ListIdentities(ctx context.Context) ([]models.Projection, error) {
	all, err := s.repos.Identities(s.db).FindAll(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]models.Projection, 0, len(all))
	for i := range all {
		result = append(result, all[i].Projection())
	}
	return result, nil
}

// VerifyAccess decodes an access token for the transport middleware.
func (s *AuthService) VerifyAccess(token string) (models.Projection, error) {
	return s.issuer.VerifyAccess(token)
}

// issueFor mints a token pair for the identity and overwrites its session
// row. The identity must already exist in the store: a session always
// references a stored identity id.
func (s *AuthService) issueFor(ctx context.Context, identity *models.Identity) (*AuthResult, error) {
	projection := identity.Projection()
	pair, err := s.issuer.GeneratePair(projection)
	if err != nil {
		return nil, fmt.Errorf("signing token pair: %w", err)
	}
	if err := s.repos.Sessions(s.db).Upsert(ctx, identity.ID, pair.RefreshToken); err != nil {
		return nil, err
	}
	return &AuthResult{Tokens: *pair, Identity: projection}, nil
}

func (s *AuthService) activationURL(link string) string {
	return fmt.Sprintf("%s/api/activate/%s", strings.TrimSuffix(s.activationBaseURL, "/"), link)
}
