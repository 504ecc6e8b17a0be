package models

import "time"

// Identity is one registered account. PasswordHash never leaves the
// identities repository boundary; outward-facing code works with Projection.
type Identity struct {
	ID             string
	Email          string
	PasswordHash   string
	IsActivated    bool
	ActivationLink string
	CreatedAt      time.Time
}

// Projection is the read-only subset of an Identity that is safe to embed
// in tokens and API responses.
type Projection struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	IsActivated bool   `json:"isActivated"`
}

// Projection derives the safe view of the identity.
func (i *Identity) Projection() Projection {
	return Projection{
		ID:          i.ID,
		Email:       i.Email,
		IsActivated: i.IsActivated,
	}
}
