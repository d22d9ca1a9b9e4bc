// Package redis holds shared-cache collaborators: the revoked-token
// blacklist.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/embedpro/pids-licensing/pkg/constants"
)

// TokenBlacklist tracks revoked tokens in Redis. Entries carry a TTL equal
// to the token's remaining validity, so the blacklist never outgrows the set
// of tokens that could still verify.
type TokenBlacklist struct {
	client *goredis.Client
}

// NewTokenBlacklist creates a Redis-backed token blacklist.
func NewTokenBlacklist(client *goredis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return constants.BlacklistKeyPrefix + hex.EncodeToString(sum[:])
}

// Revoke marks a token revoked until it expires on its own. Tokens already
// past expiry are ignored.
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, blacklistKey(token), "1", ttl).Err()
}

// IsRevoked reports whether the token has been revoked.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
