package auth

import (
	"context"
	"time"
)

// RevocationStore remembers refresh token IDs that must no longer be
// accepted. Entries only need to live until expiresAt; after that the token
// is rejected on expiry anyway.
//
// Revoke is a one-time claim: it reports true only for the call that
// actually added jti. Concurrent rotations of the same refresh token rely on
// this so that exactly one of them wins.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
