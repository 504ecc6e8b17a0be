package identities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mbazhenov/authkeeper/internal/common"
	"github.com/mbazhenov/authkeeper/internal/dbx"
	"github.com/mbazhenov/authkeeper/internal/server/models"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new identity and fills in its server-generated id.
// A duplicate email surfaces as common.ErrAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	query := `
		INSERT INTO identities (email, password_hash, activation_link)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		identity.Email, identity.PasswordHash, identity.ActivationLink).Scan(&identity.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("%w: insert identity: %v", common.ErrStoreUnavailable, err)
	}
	return identity, nil
}

// FindByEmail returns the identity registered under email, or common.ErrNotFound.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return r.findBy(ctx, "email", email)
}

// FindByID returns the identity with the given id, or common.ErrNotFound.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	return r.findBy(ctx, "id", id)
}

// FindByActivationLink returns the identity holding the given activation
// link, or common.ErrNotFound.
func (r *PostgresRepository) FindByActivationLink(ctx context.Context, link string) (*models.Identity, error) {
	return r.findBy(ctx, "activation_link", link)
}

func (r *PostgresRepository) findBy(ctx context.Context, column, value string) (*models.Identity, error) {
	query := fmt.Sprintf(`
		SELECT id, email, password_hash, is_activated, activation_link, created_at
		FROM identities
		WHERE %s = $1
	`, column)

	identity := &models.Identity{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&identity.ID, &identity.Email, &identity.PasswordHash,
		&identity.IsActivated, &identity.ActivationLink, &identity.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: select identity: %v", common.ErrStoreUnavailable, err)
	}
	return identity, nil
}

// Save persists the mutable state of an existing identity. Today the only
// mutable field is the activation flag.
func (r *PostgresRepository) Save(ctx context.Context, identity *models.Identity) error {
	query := `
		UPDATE identities
		SET is_activated = $2
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, identity.ID, identity.IsActivated); err != nil {
		return fmt.Errorf("%w: update identity: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

// FindAll returns every identity, ordered by creation time.
func (r *PostgresRepository) FindAll(ctx context.Context) ([]models.Identity, error) {
	query := `
		SELECT id, email, password_hash, is_activated, activation_link, created_at
		FROM identities
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: select identities: %v", common.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var result []models.Identity
	for rows.Next() {
		var identity models.Identity
		if err := rows.Scan(&identity.ID, &identity.Email, &identity.PasswordHash,
			&identity.IsActivated, &identity.ActivationLink, &identity.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan identity: %v", common.ErrStoreUnavailable, err)
		}
		result = append(result, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate identities: %v", common.ErrStoreUnavailable, err)
	}
	return result, nil
}
