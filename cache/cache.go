// Package cache 进程内泛型 LRU 缓存，条目按写入时间过期。
//
// 过期基于写入时间而不是访问时间，热点条目也不会无限期地返回旧值。
package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// Config 缓存配置
type Config struct {
	// Name 缓存名称（用于日志和统计）
	Name string
	// MaxSize 最大条目数，0 表示不限制
	MaxSize int
	// TTL 默认过期时间，0 表示永不过期
	TTL time.Duration
}

// Stats 缓存统计
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64 // LRU 驱逐次数
	Expires   int64 // 过期删除次数
	Size      int
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time // 零值表示永不过期
	elem      *list.Element
}

// Cache 并发安全的泛型 LRU 缓存
type Cache[K comparable, V any] struct {
	config Config
	now    func() time.Time

	mu    sync.Mutex
	items map[K]*entry[K, V]
	lru   *list.List // 最近使用的在前
	stats Stats
}

// New 创建缓存
func New[K comparable, V any](config Config) *Cache[K, V] {
	if config.Name == "" {
		config.Name = "unnamed"
	}
	return &Cache[K, V]{
		config: config,
		now:    time.Now,
		items:  make(map[K]*entry[K, V]),
		lru:    list.New(),
	}
}

// Name 缓存名称
func (c *Cache[K, V]) Name() string { return c.config.Name }

// Get 获取未过期的值。
//
// Get 会移动 LRU 位置并更新统计，因此使用互斥锁而不是读锁。
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	if c.expired(e) {
		c.remove(e)
		c.stats.Misses++
		c.stats.Expires++
		return zero, false
	}
	c.lru.MoveToFront(e.elem)
	c.stats.Hits++
	return e.value, true
}

// Set 以默认 TTL 写入
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.config.TTL)
}

// SetWithTTL 以指定 TTL 写入，ttl <= 0 表示永不过期；重复写入会重置过期时间。
func (c *Cache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}
	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.lru.MoveToFront(e.elem)
		return
	}
	if c.config.MaxSize > 0 && len(c.items) >= c.config.MaxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.remove(oldest.Value.(*entry[K, V]))
			c.stats.Evictions++
		}
	}
	e := &entry[K, V]{key: key, value: value, expiresAt: expiresAt}
	e.elem = c.lru.PushFront(e)
	c.items[key] = e
}

// Delete 删除条目，返回是否存在
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if ok {
		c.remove(e)
	}
	return ok
}

// Clear 清空缓存，统计保留
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*entry[K, V])
	c.lru.Init()
}

// CleanExpired 删除所有已过期条目，返回删除数量
func (c *Cache[K, V]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cleaned := 0
	for _, e := range c.items {
		if c.expired(e) {
			c.remove(e)
			cleaned++
		}
	}
	c.stats.Expires += int64(cleaned)
	return cleaned
}

// Size 当前条目数（含尚未清理的过期条目）
func (c *Cache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats 统计副本
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = len(c.items)
	return s
}

// HitRate 命中率
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func (c *Cache[K, V]) String() string {
	s := c.Stats()
	return fmt.Sprintf("Cache[%s]: size=%d/%d, hits=%d, misses=%d, hit_rate=%.2f%%, evictions=%d, expires=%d",
		c.config.Name, s.Size, c.config.MaxSize, s.Hits, s.Misses, s.HitRate()*100, s.Evictions, s.Expires)
}

// 以下方法需持锁调用

func (c *Cache[K, V]) expired(e *entry[K, V]) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}

func (c *Cache[K, V]) remove(e *entry[K, V]) {
	c.lru.Remove(e.elem)
	delete(c.items, e.key)
}
