// onboarding/seen.go
package onboarding

import (
	"context"

	"github.com/controlroom-hq/control-room/api/db"
)

// RedisSeenStore keeps the seen flag in Redis with the configured multi-month
// expiry, mirroring the long-lived client cookie the dashboard reads.
type RedisSeenStore struct{}

func NewRedisSeenStore() *RedisSeenStore {
	return &RedisSeenStore{}
}

func (r *RedisSeenStore) MarkSeen(ctx context.Context, userID string) error {
	return db.SetOnboardingSeen(ctx, userID)
}

func (r *RedisSeenStore) Seen(ctx context.Context, userID string) (bool, error) {
	return db.GetOnboardingSeen(ctx, userID)
}
