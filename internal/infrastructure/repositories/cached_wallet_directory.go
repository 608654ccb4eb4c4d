package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
	domainRepos "github.com/tekiplanet/safejet-processing-deposit/internal/domain/repositories"
	"github.com/tekiplanet/safejet-processing-deposit/pkg/redis"
)

const invalidatePattern = "wallets:invalidate:*"

// CachedWalletDirectory decorates a WalletRepository with a short-TTL Redis
// cache of each target's wallet list, so every block a monitor ingests
// doesn't hit Postgres to rebuild its address lookup map. The cache is
// invalidated early by a "wallets:invalidate:{chain}:{network}" pub/sub
// message; absent one, entries simply expire.
type CachedWalletDirectory struct {
	inner domainRepos.WalletRepository
	ttl   time.Duration
}

func NewCachedWalletDirectory(inner domainRepos.WalletRepository, ttl time.Duration) *CachedWalletDirectory {
	return &CachedWalletDirectory{inner: inner, ttl: ttl}
}

func cacheKey(target entities.Target) string {
	return fmt.Sprintf("wallets:%s:%s", target.Chain, target.Network)
}

func invalidateChannel(target entities.Target) string {
	return fmt.Sprintf("wallets:invalidate:%s:%s", target.Chain, target.Network)
}

func (c *CachedWalletDirectory) ListByTarget(ctx context.Context, target entities.Target) ([]entities.Wallet, error) {
	key := cacheKey(target)

	if cached, err := redis.Get(ctx, key); err == nil {
		var wallets []entities.Wallet
		if json.Unmarshal([]byte(cached), &wallets) == nil {
			return wallets, nil
		}
	}

	wallets, err := c.inner.ListByTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(wallets); err == nil {
		_ = redis.Set(ctx, key, encoded, c.ttl)
	}

	return wallets, nil
}

// Invalidate drops the cached entry for a target ahead of its TTL.
func (c *CachedWalletDirectory) Invalidate(ctx context.Context, target entities.Target) error {
	return redis.Del(ctx, cacheKey(target))
}

// PublishInvalidate is called by the (out-of-scope) wallet-registry side
// whenever it wants every running process's cache to drop a target early.
func (c *CachedWalletDirectory) PublishInvalidate(ctx context.Context, target entities.Target) error {
	client := redis.GetClient()
	if client == nil {
		return fmt.Errorf("cached wallet directory: redis client not initialized")
	}
	return client.Publish(ctx, invalidateChannel(target), "1").Err()
}

// WatchInvalidations subscribes to invalidation messages and drops the
// matching cache entry as they arrive. It blocks until ctx is cancelled or
// the subscription channel closes, so callers run it in its own goroutine.
func (c *CachedWalletDirectory) WatchInvalidations(ctx context.Context) error {
	client := redis.GetClient()
	if client == nil {
		return fmt.Errorf("cached wallet directory: redis client not initialized")
	}

	sub := client.PSubscribe(ctx, invalidatePattern)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if target, ok := parseInvalidateChannel(msg.Channel); ok {
				_ = c.Invalidate(ctx, target)
			}
		}
	}
}

func parseInvalidateChannel(channel string) (entities.Target, bool) {
	parts := strings.Split(channel, ":")
	if len(parts) != 4 || parts[0] != "wallets" || parts[1] != "invalidate" {
		return entities.Target{}, false
	}
	return entities.Target{Chain: entities.ChainKey(parts[2]), Network: entities.Network(parts[3])}, true
}
