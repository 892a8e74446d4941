package countcache

import (
	"context"
	stdErrors "errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"pagekit/cache"
	"pagekit/errors"
)

// Store 总数缓存后端
type Store interface {
	Get(ctx context.Context, key string) (count int64, found bool, err error)
	Set(ctx context.Context, key string, count int64, ttl time.Duration) error
}

// MemoryStore 基于进程内 LRU 缓存的后端
type MemoryStore struct {
	c *cache.Cache[string, int64]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore 创建进程内后端，maxSize 为 0 表示不限制条目数。
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{c: cache.New[string, int64](cache.Config{Name: "page_counts", MaxSize: maxSize})}
}

func (s *MemoryStore) Get(_ context.Context, key string) (int64, bool, error) {
	v, ok := s.c.Get(key)
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, count int64, ttl time.Duration) error {
	s.c.SetWithTTL(key, count, ttl)
	return nil
}

// Stats 返回底层缓存统计
func (s *MemoryStore) Stats() cache.Stats { return s.c.Stats() }

// redisClient 后端依赖的 go-redis 命令子集（便于测试替换）
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisConfig Redis 后端配置；Client 为空时按 Addr 等参数自建连接。
type RedisConfig struct {
	Client    redis.UniversalClient
	Addr      string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisStore 基于 Redis GET / SET EX 的后端，多个进程可共享总数缓存。
type RedisStore struct {
	client    redisClient
	ownClient bool
	prefix    string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore 创建 Redis 后端
func NewRedisStore(cfg RedisConfig) *RedisStore {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "pagekit:count:"
	}
	s := &RedisStore{prefix: cfg.KeyPrefix}
	if cfg.Client != nil {
		s.client = cfg.Client
		return s
	}
	s.client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	s.ownClient = true
	return s
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Result()
	if stdErrors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.WrapError(err, errors.ErrCodeCache, "redis get").WithContext("key", key)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, errors.WrapError(err, errors.ErrCodeCache, "malformed cached count").WithContext("key", key)
	}
	return n, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, count int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+key, strconv.FormatInt(count, 10), ttl).Err(); err != nil {
		return errors.WrapError(err, errors.ErrCodeCache, "redis set").WithContext("key", key)
	}
	return nil
}

// Close 仅关闭自建的连接
func (s *RedisStore) Close() error {
	if s.ownClient {
		return s.client.Close()
	}
	return nil
}
