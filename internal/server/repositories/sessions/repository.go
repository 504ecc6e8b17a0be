// Package sessions provides the session store: the single currently-valid
// refresh token per identity.
package sessions

import (
	"context"

	"github.com/mbazhenov/authkeeper/internal/server/models"
)

// Repository is keyed by identity for writes and by token for reads and
// deletes. Absence of a row is reported as common.ErrNotFound.
type Repository interface {
	// Upsert replaces-or-inserts the session row for identityID, so the
	// previous refresh token for that identity stops resolving.
	Upsert(ctx context.Context, identityID string, refreshToken string) error
	FindByToken(ctx context.Context, refreshToken string) (*models.Session, error)
	// DeleteByToken is a no-op when no row holds the token.
	DeleteByToken(ctx context.Context, refreshToken string) error
}
