package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/walletledger/internal/domain"
)

// DefaultSummaryTTL bounds how long a cached summary can be served.
const DefaultSummaryTTL = 5 * time.Minute

// SummaryCache implements usecase.SummaryCache using Redis.
type SummaryCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSummaryCache creates a new SummaryCache. A non-positive ttl uses
// DefaultSummaryTTL.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &SummaryCache{
		client: client,
		prefix: "summary:",
		ttl:    ttl,
	}
}

// GetSummary returns the cached summary for a user. The bool is false on a miss.
func (c *SummaryCache) GetSummary(ctx context.Context, userID string) (*domain.WalletSummary, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var summary domain.WalletSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false, fmt.Errorf("decode cached summary: %w", err)
	}

	return &summary, true, nil
}

// SetSummary stores a summary with the cache TTL.
func (c *SummaryCache) SetSummary(ctx context.Context, userID string, summary *domain.WalletSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return c.client.Set(ctx, c.prefix+userID, raw, c.ttl).Err()
}

// Invalidate drops the cached summaries of the given users.
func (c *SummaryCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = c.prefix + id
	}
	return c.client.Del(ctx, keys...).Err()
}
