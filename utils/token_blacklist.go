package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "wellbeing:jwt:revoked:"

// TokenBlacklist remembers revoked tokens until they would have expired.
// With a nil Redis client it keeps entries in memory.
type TokenBlacklist struct {
	rc      *redis.Client
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewTokenBlacklist(rc *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rc: rc, entries: map[string]time.Time{}}
}

func (b *TokenBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := b.rc.Set(ctx, blacklistKeyPrefix+token, "1", ttl).Err()
		if err == nil {
			return
		}
		Sugar.Warnf("token revoke via redis failed, keeping it in memory: %v", err)
	}
	b.mu.Lock()
	b.entries[token] = expiresAt
	b.mu.Unlock()
}

// IsRevoked fails open on Redis errors to avoid locking every user out.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) bool {
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if n, err := b.rc.Exists(ctx, blacklistKeyPrefix+token).Result(); err == nil && n > 0 {
			return true
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	expiresAt, ok := b.entries[token]
	if !ok {
		return false
	}
	if time.Now().After(expiresAt) {
		delete(b.entries, token)
		return false
	}
	return true
}
