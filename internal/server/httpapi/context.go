package httpapi

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
)

type (
	userIDKey  struct{}
	rotatedKey struct{}
)

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the id stored by Protect.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}

// WithRotated stores the pair Protect minted for this request.
func WithRotated(ctx context.Context, pair *auth.TokenPair) context.Context {
	return context.WithValue(ctx, rotatedKey{}, pair)
}

// RotatedFromContext returns the pair minted by Protect, if it rotated.
func RotatedFromContext(ctx context.Context) (*auth.TokenPair, bool) {
	pair, ok := ctx.Value(rotatedKey{}).(*auth.TokenPair)
	return pair, ok && pair != nil
}
