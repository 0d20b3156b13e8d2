package revocations

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "revoked_refresh:"

	// minClaimTTL keeps the key of an already-expired token long enough for
	// concurrent claims to see it.
	minClaimTTL = time.Minute
)

// RedisRepository keeps one key per revoked token ID. Keys expire together
// with the token, so the set never needs cleaning.
type RedisRepository struct {
	client *goredis.Client
	now    func() time.Time
}

func NewRedisRepository(client *goredis.Client) *RedisRepository {
	return &RedisRepository{client: client, now: time.Now}
}

// NewClient builds a go-redis client for the revocation list.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Revoke claims jti with SET NX, so only one caller gets true.
func (r *RedisRepository) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	ttl := expiresAt.Sub(r.now())
	if ttl < minClaimTTL {
		ttl = minClaimTTL
	}

	claimed, err := r.client.SetNX(ctx, key(jti), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}
	return claimed, nil
}

func (r *RedisRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	n, err := r.client.Exists(ctx, key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked refresh token: %w", err)
	}
	return n > 0, nil
}

func key(jti string) string {
	return keyPrefix + jti
}
