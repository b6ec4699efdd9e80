package cache

import (
	"context"
	"time"
)

const blacklistKeyPrefix = "blacklist:"

// RevokeToken blacklists a JWT until it would have expired anyway.
// A non-positive ttl means the token is already expired and nothing is stored.
func RevokeToken(ctx context.Context, token string, ttl time.Duration) error {
	if client == nil || ttl <= 0 {
		return nil
	}
	return client.Set(ctx, blacklistKeyPrefix+token, "1", ttl).Err()
}

// IsTokenRevoked reports whether the token has been blacklisted. When Redis
// is unavailable tokens are treated as valid so that an outage does not lock
// every user out.
func IsTokenRevoked(ctx context.Context, token string) bool {
	if client == nil {
		return false
	}
	n, err := client.Exists(ctx, blacklistKeyPrefix+token).Result()
	if err != nil {
		return false
	}
	return n > 0
}
