package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"cara-compliance-be/pkg/store"
	"cara-compliance-be/pkg/utils"
)

// IReplyCache short-circuits repeated identical questions. Only grounded
// knowledge replies are cached; wizard turns and fallbacks never are.
type IReplyCache interface {
	Get(ctx context.Context, key string) (*store.CachedReply, bool)
	Set(ctx context.Context, key string, reply *store.CachedReply)
}

// ReplyCacheKey hashes the identity of a question so the cache never
// leaks one user's replies to another.
func ReplyCacheKey(userId uuid.UUID, module string, message string) string {
	sum := sha256.Sum256([]byte(userId.String() + "|" + module + "|" + utils.NormalizeQuery(message)))
	return "reply:" + hex.EncodeToString(sum[:])
}

type redisReplyCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReplyCache(client *redis.Client, ttl time.Duration) IReplyCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &redisReplyCache{client: client, ttl: ttl}
}

func (c *redisReplyCache) Get(ctx context.Context, key string) (*store.CachedReply, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and transport errors both degrade to a cache miss
		return nil, false
	}
	var reply store.CachedReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, false
	}
	return &reply, true
}

func (c *redisReplyCache) Set(ctx context.Context, key string, reply *store.CachedReply) {
	raw, err := json.Marshal(reply)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, raw, c.ttl)
}

// noopReplyCache is used when Redis is not configured.
type noopReplyCache struct{}

func NewNoopReplyCache() IReplyCache { return noopReplyCache{} }

func (noopReplyCache) Get(ctx context.Context, key string) (*store.CachedReply, bool) {
	return nil, false
}

func (noopReplyCache) Set(ctx context.Context, key string, reply *store.CachedReply) {}
