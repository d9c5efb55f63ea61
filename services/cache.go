package services

import (
	"context"
	"fmt"
	"time"
)

// Cache is the JSON cache the dashboard reads through. utils.RedisCache and
// utils.MemoryCache implement it.
type Cache interface {
	GetJSON(ctx context.Context, key string, v any) bool
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration)
	DeleteByPrefix(ctx context.Context, prefix string)
}

func dashboardKeyPrefix(userID uint) string {
	return fmt.Sprintf("wellbeing:dashboard:%d:", userID)
}

// invalidateDashboard drops every cached dashboard of the user. A nil cache
// is allowed.
func invalidateDashboard(ctx context.Context, cache Cache, userID uint) {
	if cache == nil {
		return
	}
	cache.DeleteByPrefix(ctx, dashboardKeyPrefix(userID))
}
