// Package countcache 为 paging.Provider 提供总数缓存。
//
// 分页时计数往往比取页更贵，而总数在短时间内变化不大。装饰后的 Provider
// 对相同过滤条件的基础查询复用缓存的 Count 结果，过期时间由 TTL 决定。
// 含 Func 的条件无法生成稳定的键，直接透传不缓存。
package countcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"pagekit/logging"
	"pagekit/paging"
)

// DefaultTTL 默认缓存时间
const DefaultTTL = 30 * time.Second

type options struct {
	ttl       time.Duration
	namespace string
	logger    logging.Logger
}

// Option 装饰器选项
type Option func(*options)

// WithTTL 缓存时间，<= 0 时使用 DefaultTTL
func WithTTL(ttl time.Duration) Option { return func(o *options) { o.ttl = ttl } }

// WithNamespace 键前缀，同一个 Store 服务多个实体类型时用于区分
func WithNamespace(ns string) Option { return func(o *options) { o.namespace = ns } }

// WithLogger 缓存后端出错时记录警告
func WithLogger(l logging.Logger) Option { return func(o *options) { o.logger = l } }

// Provider 带总数缓存的 Provider 装饰器
type Provider[T any] struct {
	inner paging.Provider[T]
	store Store
	opts  options
}

// New 装饰 inner
func New[T any](inner paging.Provider[T], store Store, opts ...Option) *Provider[T] {
	o := options{ttl: DefaultTTL, logger: logging.GetLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.ttl <= 0 {
		o.ttl = DefaultTTL
	}
	if o.logger == nil {
		o.logger = logging.NewNoopLogger()
	}
	return &Provider[T]{inner: inner, store: store, opts: o}
}

// Key 过滤条件对应的缓存键
func (p *Provider[T]) Key(filter paging.Predicate[T]) string {
	text := "*"
	if filter != nil {
		text = filter.String()
	}
	sum := sha256.Sum256([]byte(text))
	key := hex.EncodeToString(sum[:16])
	if p.opts.namespace != "" {
		key = p.opts.namespace + ":" + key
	}
	return key
}

func (p *Provider[T]) Valid(ctx context.Context, filter paging.Predicate[T]) (paging.Query[T], error) {
	q, err := p.inner.Valid(ctx, filter)
	if err != nil || q == nil || !paging.Translatable(filter) {
		return q, err
	}
	return &cachedQuery[T]{Query: q, key: p.Key(filter), provider: p}, nil
}

// cachedQuery 只覆盖 Count；其余构建方法返回内层查询，派生查询不再走缓存。
type cachedQuery[T any] struct {
	paging.Query[T]
	key      string
	provider *Provider[T]
}

func (q *cachedQuery[T]) Count(ctx context.Context) (int64, error) {
	p := q.provider
	n, found, err := p.store.Get(ctx, q.key)
	if err != nil {
		p.opts.logger.Warn(ctx, "count cache read failed", logging.String("key", q.key), logging.Error(err))
	} else if found {
		return n, nil
	}

	n, err = q.Query.Count(ctx)
	if err != nil {
		return 0, err
	}
	if err := p.store.Set(ctx, q.key, n, p.opts.ttl); err != nil {
		p.opts.logger.Warn(ctx, "count cache write failed", logging.String("key", q.key), logging.Error(err))
	}
	return n, nil
}
