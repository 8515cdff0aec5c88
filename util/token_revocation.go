package util

import (
	"context"
	"fmt"
	"time"

	"github.com/ariebrainware/aba-tracker/config"
	"github.com/redis/go-redis/v9"
)

func revokedKey(jti string) string {
	return fmt.Sprintf("revoked_token:%s", jti)
}

// RevokeToken marks the token id as revoked until expiresAt. Without Redis it
// is a no-op and tokens stay valid until they expire.
func RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	rdb := config.GetRedisClient()
	if rdb == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, revokedKey(jti), "1", ttl).Err()
}

// IsTokenRevoked reports whether the token id was revoked.
func IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	rdb := config.GetRedisClient()
	if rdb == nil || jti == "" {
		return false, nil
	}
	n, err := rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil && err != redis.Nil {
		return false, err
	}
	return n > 0, nil
}
