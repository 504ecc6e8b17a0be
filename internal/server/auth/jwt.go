// Package auth implements the token issuer: it signs paired access/refresh
// JWTs carrying an identity projection and verifies/decodes them.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mbazhenov/authkeeper/internal/common"
	"github.com/mbazhenov/authkeeper/internal/server/models"
)

// Claims is the payload carried by both tokens: the identity projection
// plus the standard issued-at/expiry claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"id"`
	Email       string `json:"email"`
	IsActivated bool   `json:"isActivated"`
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer signs the same claim payload twice, with separate secrets and
// lifetimes for the access and refresh tokens. It holds no state beyond
// its configuration and performs no persistence.
type Issuer struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
}

// NewIssuer constructs an Issuer from the configured secrets and lifetimes.
func NewIssuer(accessSecret, refreshSecret []byte, accessValidity, refreshValidity time.Duration) *Issuer {
	return &Issuer{
		accessSecret:    accessSecret,
		refreshSecret:   refreshSecret,
		accessValidity:  accessValidity,
		refreshValidity: refreshValidity,
	}
}

// GeneratePair signs the projection into a fresh access/refresh token pair.
func (i *Issuer) GeneratePair(p models.Projection) (*TokenPair, error) {
	access, err := sign(p, i.accessSecret, i.accessValidity)
	if err != nil {
		return nil, err
	}
	refresh, err := sign(p, i.refreshSecret, i.refreshValidity)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess checks the signature and expiry of an access token and
// returns the projection it carries.
func (i *Issuer) VerifyAccess(token string) (models.Projection, error) {
	return verify(token, i.accessSecret)
}

// VerifyRefresh checks the signature and expiry of a refresh token and
// returns the projection it carries.
func (i *Issuer) VerifyRefresh(token string) (models.Projection, error) {
	return verify(token, i.refreshSecret)
}

func sign(p models.Projection, secret []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// The jti makes every mint unique. Without it, two tokens
			// signed for the same projection within the same second are
			// identical strings, and rotation stops invalidating anything.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID:      p.ID,
		Email:       p.Email,
		IsActivated: p.IsActivated,
	})
	return token.SignedString(secret)
}

// verify collapses every failure mode (malformed, wrong signature, expired)
// into common.ErrInvalidToken so callers cannot distinguish why a token
// was rejected.
func verify(tokenString string, secret []byte) (models.Projection, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return models.Projection{}, common.ErrInvalidToken
	}
	return models.Projection{
		ID:          claims.UserID,
		Email:       claims.Email,
		IsActivated: claims.IsActivated,
	}, nil
}
