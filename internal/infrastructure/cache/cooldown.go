package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CooldownStore tracks faucet cooldown windows in Redis. Entries expire on
// their own; the remaining TTL is the remaining cooldown.
type CooldownStore struct {
	client *redis.Client
}

// NewCooldownStore creates a cooldown store over an existing Redis client
func NewCooldownStore(client *redis.Client) *CooldownStore {
	return &CooldownStore{client: client}
}

// Remaining returns how long the given key stays on cooldown; zero means the
// key is eligible.
func (s *CooldownStore) Remaining(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, cooldownKey(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read cooldown: %w", err)
	}
	// Redis reports -2 for a missing key and -1 for a key without TTL.
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Mark starts a cooldown window for the given key
func (s *CooldownStore) Mark(ctx context.Context, key string, window time.Duration) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.client.Set(ctx, cooldownKey(key), now, window).Err(); err != nil {
		return fmt.Errorf("failed to mark cooldown: %w", err)
	}
	return nil
}

func cooldownKey(key string) string {
	return "cooldown:" + key
}
