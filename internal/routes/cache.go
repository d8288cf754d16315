package routes

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// ExistCache 路由存在性查询结果缓存
type ExistCache interface {
	Get(ctx context.Context, key string) (exists bool, ok bool)
	Set(ctx context.Context, key string, exists bool)
}

const existKeyPrefix = "console:route-exist:"

// ExistKey 缓存键，按用户区分
func ExistKey(userID, routeName string) string {
	return existKeyPrefix + userID + ":" + routeName
}

// MemoryExistCache 进程内缓存
type MemoryExistCache struct {
	c *gocache.Cache
}

func NewMemoryExistCache(ttl time.Duration) *MemoryExistCache {
	return &MemoryExistCache{c: gocache.New(ttl, 2*ttl)}
}

func (m *MemoryExistCache) Get(_ context.Context, key string) (bool, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return false, false
	}
	exists, ok := v.(bool)
	return exists, ok
}

func (m *MemoryExistCache) Set(_ context.Context, key string, exists bool) {
	m.c.SetDefault(key, exists)
}

// RedisExistCache 多实例共享的缓存，读写失败按未命中处理
type RedisExistCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisExistCache(client *redis.Client, ttl time.Duration) *RedisExistCache {
	return &RedisExistCache{client: client, ttl: ttl}
}

func (r *RedisExistCache) Get(ctx context.Context, key string) (bool, bool) {
	v, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return false, false
	}
	exists, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return exists, true
}

func (r *RedisExistCache) Set(ctx context.Context, key string, exists bool) {
	_ = r.client.Set(ctx, key, strconv.FormatBool(exists), r.ttl).Err()
}
