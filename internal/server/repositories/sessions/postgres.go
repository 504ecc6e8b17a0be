package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mbazhenov/authkeeper/internal/common"
	"github.com/mbazhenov/authkeeper/internal/dbx"
	"github.com/mbazhenov/authkeeper/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert writes the session row for identityID, overwriting any previous
// refresh token in place. identity_id is the primary key, so exactly one
// row per identity survives; last write wins.
func (r *PostgresRepository) Upsert(ctx context.Context, identityID string, refreshToken string) error {
	query := `
		INSERT INTO sessions (identity_id, refresh_token, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (identity_id)
		DO UPDATE SET refresh_token = EXCLUDED.refresh_token, updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, identityID, refreshToken); err != nil {
		return fmt.Errorf("%w: upsert session: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

// FindByToken returns the session row holding exactly this refresh token.
// Rotated-out and logged-out tokens are absent and yield common.ErrNotFound.
func (r *PostgresRepository) FindByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	query := `
		SELECT identity_id, refresh_token, updated_at
		FROM sessions
		WHERE refresh_token = $1
	`
	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, refreshToken).Scan(
		&session.IdentityID, &session.RefreshToken, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: select session: %v", common.ErrStoreUnavailable, err)
	}
	return session, nil
}

// DeleteByToken removes the session holding the token; deleting an absent
// token is not an error.
func (r *PostgresRepository) DeleteByToken(ctx context.Context, refreshToken string) error {
	query := `
		DELETE FROM sessions
		WHERE refresh_token = $1
	`
	if _, err := r.db.ExecContext(ctx, query, refreshToken); err != nil {
		return fmt.Errorf("%w: delete session: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}
