// Package identities provides the identity store gateway: the repository
// holding registered identities and their activation state.
package identities

import (
	"context"

	"github.com/mbazhenov/authkeeper/internal/server/models"
)

// Repository is the contract the orchestrator depends on. Absence of a row
// is reported as common.ErrNotFound; infrastructure faults wrap
// common.ErrStoreUnavailable.
type Repository interface {
	Create(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindByID(ctx context.Context, id string) (*models.Identity, error)
	FindByActivationLink(ctx context.Context, link string) (*models.Identity, error)
	Save(ctx context.Context, identity *models.Identity) error
	FindAll(ctx context.Context) ([]models.Identity, error)
}
