// Package revocations stores refresh token IDs that were rotated out or
// logged out, so they are refused before their natural expiry.
package revocations

import (
	"context"
	"time"
)

// Repository defines the revocation list. It satisfies auth.RevocationStore.
type Repository interface {
	// Revoke records jti until expiresAt and reports whether this call added
	// it. A second Revoke of the same jti returns false with a nil error.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error)

	// IsRevoked reports whether jti is on the list and not yet expired.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
