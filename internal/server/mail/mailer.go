// Package mail implements the notification gateway: it delivers the
// activation message for a freshly registered identity.
package mail

import "context"

// Mailer sends an activation message containing the absolute activation URL
// to the given address. A send failure propagates to the caller; the
// orchestrator never swallows it.
type Mailer interface {
	SendActivation(ctx context.Context, to string, activationURL string) error
}
