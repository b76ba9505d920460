package gifts

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// Cache stores gift ideas per ordered (giver, receiver) pair. Lookups that
// fail for any reason report a miss.
type Cache interface {
	Get(ctx context.Context, giverID, receiverID string) ([]string, bool)
	Set(ctx context.Context, giverID, receiverID string, ideas []string)
}

type pairKey struct{ giver, receiver string }

type MemoryCache struct {
	mu    sync.RWMutex
	ideas map[pairKey][]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{ideas: make(map[pairKey][]string)}
}

func (c *MemoryCache) Get(_ context.Context, giverID, receiverID string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ideas, ok := c.ideas[pairKey{giverID, receiverID}]
	return slices.Clone(ideas), ok
}

func (c *MemoryCache) Set(_ context.Context, giverID, receiverID string, ideas []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ideas[pairKey{giverID, receiverID}] = slices.Clone(ideas)
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ideas)
}

const redisKeyPrefix = "forcematch:gifts:"

// RedisCache shares gift ideas between instances. Entries expire after ttl;
// a zero ttl keeps them forever.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *log.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

var encodeIdeas = func(ideas []string) ([]byte, error) { return json.Marshal(ideas) }

func redisKey(giverID, receiverID string) string {
	return redisKeyPrefix + giverID + "|" + receiverID
}

func (c *RedisCache) Get(ctx context.Context, giverID, receiverID string) ([]string, bool) {
	raw, err := c.client.Get(ctx, redisKey(giverID, receiverID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("gift cache read failed", "giver", giverID, "receiver", receiverID, "err", err)
		return nil, false
	}

	var ideas []string
	if err := json.Unmarshal(raw, &ideas); err != nil {
		c.logger.Warn("gift cache entry corrupt", "key", redisKey(giverID, receiverID), "err", err)
		return nil, false
	}
	return ideas, true
}

func (c *RedisCache) Set(ctx context.Context, giverID, receiverID string, ideas []string) {
	raw, err := encodeIdeas(ideas)
	if err != nil {
		c.logger.Warn("gift cache encode failed", "giver", giverID, "receiver", receiverID, "err", err)
		return
	}
	if err := c.client.Set(ctx, redisKey(giverID, receiverID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("gift cache write failed", "giver", giverID, "receiver", receiverID, "err", err)
	}
}
