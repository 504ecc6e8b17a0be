package models

import "time"

// Session is the single currently-valid refresh token for an identity.
// There is at most one row per identity: logging in or refreshing overwrites
// it in place, logging out deletes it.
type Session struct {
	IdentityID   string
	RefreshToken string
	UpdatedAt    time.Time
}
