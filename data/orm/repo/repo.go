package repo

import (
	"context"
	"time"

	"pagekit/data/orm"
	"pagekit/logging"
	"pagekit/paging"
	"pagekit/paging/countcache"
	"pagekit/paging/ormsource"
	"pagekit/validation"
)

type options struct {
	maxPageSize int
	counts      countcache.Store
	countTTL    time.Duration
	logger      logging.Logger
	validator   validation.IValidator
}

// Option 仓储选项
type Option func(*options)

// WithMaxPageSize 分页上限，<= 0 表示不限制
func WithMaxPageSize(n int) Option { return func(o *options) { o.maxPageSize = n } }

// WithCountCache 为 ListPage 的总数查询启用缓存
func WithCountCache(store countcache.Store, ttl time.Duration) Option {
	return func(o *options) {
		o.counts = store
		o.countTTL = ttl
	}
}

// WithLogger 设置数据源与缓存使用的日志
func WithLogger(l logging.Logger) Option { return func(o *options) { o.logger = l } }

// WithValidator 写入前的实体校验器，默认使用 validation.Default()
func WithValidator(v validation.IValidator) Option { return func(o *options) { o.validator = v } }

// Repo 基于 data/orm 的通用仓储，列表分页委托给 paging.Engine。
// 读操作只返回未软删除的记录。
type Repo[T any] struct {
	orm       orm.IOrm
	model     orm.IModel
	schema    *paging.Schema[T]
	provider  paging.Provider[T]
	engine    *paging.Engine[T]
	validator validation.IValidator
	softDel   string
}

// New 创建仓储实例。meta.Model 为空时使用 T 的零值推断字段。
func New[T any](o orm.IOrm, schema *paging.Schema[T], meta *orm.ModelMeta, opts ...Option) (*Repo[T], error) {
	cfg := options{maxPageSize: paging.DefaultMaxPageSize, logger: logging.GetLogger(), validator: validation.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	m := orm.ModelMeta{Model: new(T)}
	if meta != nil {
		m = *meta
		if m.Model == nil {
			m.Model = new(T)
		}
	}
	model, err := o.Model(&m)
	if err != nil {
		return nil, err
	}

	var provider paging.Provider[T] = ormsource.NewProvider(schema, model, ormsource.WithLogger(cfg.logger))
	if cfg.counts != nil {
		provider = countcache.New(provider, cfg.counts,
			countcache.WithTTL(cfg.countTTL),
			countcache.WithNamespace(model.Meta().Table),
			countcache.WithLogger(cfg.logger))
	}
	engine, err := paging.NewEngine(schema,
		paging.WithProvider(provider),
		paging.WithMaxPageSize[T](cfg.maxPageSize))
	if err != nil {
		return nil, err
	}

	return &Repo[T]{
		orm:       o,
		model:     model,
		schema:    schema,
		provider:  provider,
		engine:    engine,
		validator: cfg.validator,
		softDel:   softDeleteColumn(model.Meta()),
	}, nil
}

func softDeleteColumn(meta *orm.ModelMeta) string {
	if meta.SoftDeleteColumn != "" {
		return meta.SoftDeleteColumn
	}
	if col, ok := meta.Column("deleted_at"); ok {
		return col
	}
	return ""
}

func (r *Repo[T]) query(ctx context.Context) *queryBuilder {
	q := newQueryBuilder(r.model, ctx)
	if r.softDel != "" {
		q = q.Where(r.softDel + " IS NULL")
	}
	return q
}

// Model 暴露底层模型
func (r *Repo[T]) Model() orm.IModel { return r.model }

// Orm 返回绑定的 ORM 引擎。
func (r *Repo[T]) Orm() orm.IOrm { return r.orm }

// Engine 返回分页引擎
func (r *Repo[T]) Engine() *paging.Engine[T] { return r.engine }
