// Package ormsource 基于 data/orm 模型的 SQL 数据源。
//
// 条件翻译为 orm.WithWhere，排序翻译为 orm.WithOrderBy（列名来自 Schema 并经过白名单校验），
// Skip/Take 翻译为 OFFSET/LIMIT；Count 与 Find 分别对应 IModel.Count 与 IModel.Find。
package ormsource

import (
	"context"
	"slices"
	"time"

	"pagekit/data/orm"
	"pagekit/logging"
	"pagekit/paging"
)

type options struct {
	logger   logging.Logger
	valid    []orm.QueryOption
	validSet bool
}

// Option 数据源选项
type Option func(*options)

// WithLogger 以 Debug 级别记录每次 Count/Find 的耗时
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithValidCondition 覆盖 Provider 的“有效记录”条件；不传 expr 表示不加条件。
func WithValidCondition(expr string, args ...any) Option {
	return func(o *options) {
		o.validSet = true
		o.valid = nil
		if expr != "" {
			o.valid = []orm.QueryOption{orm.WithWhere(expr, args...)}
		}
	}
}

func collect(opts []Option) options {
	o := options{logger: logging.NewNoopLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = logging.NewNoopLogger()
	}
	return o
}

// Query 模型查询，实现 paging.Query。
type Query[T any] struct {
	schema *paging.Schema[T]
	model  orm.IModel
	logger logging.Logger

	where  []orm.QueryOption
	orders []orm.OrderBy
	skip   int
	take   int // < 0 表示不限制
	err    error
}

var (
	_ paging.Query[int]        = (*Query[int])(nil)
	_ paging.OrderedQuery[int] = (*OrderedQuery[int])(nil)
)

// New 创建模型查询
func New[T any](schema *paging.Schema[T], model orm.IModel, opts ...Option) *Query[T] {
	o := collect(opts)
	return &Query[T]{schema: schema, model: model, logger: o.logger, take: -1}
}

func (q *Query[T]) clone() *Query[T] {
	c := *q
	c.where = slices.Clone(q.where)
	c.orders = slices.Clone(q.orders)
	return &c
}

// Where 追加条件；翻译失败的错误延迟到 Count/Find 返回。
func (q *Query[T]) Where(p paging.Predicate[T]) paging.Query[T] {
	if p == nil {
		return q
	}
	c := q.clone()
	expr, args, err := translate(q.schema, q.model.Meta(), p)
	if err != nil {
		if c.err == nil {
			c.err = err
		}
		return c
	}
	c.where = append(c.where, orm.WithWhere(expr, args...))
	return c
}

func (q *Query[T]) OrderBy(field string, dir paging.Direction) (paging.Query[T], error) {
	col, err := columnFor(q.schema, q.model.Meta(), field)
	if err != nil {
		return nil, err
	}
	c := q.clone()
	c.orders = []orm.OrderBy{{Column: col, Desc: dir.Desc()}}
	return &OrderedQuery[T]{c}, nil
}

func (q *Query[T]) Skip(n int) paging.Query[T] { return q.withSkip(n) }

func (q *Query[T]) Take(n int) paging.Query[T] { return q.withTake(n) }

func (q *Query[T]) withSkip(n int) *Query[T] {
	if n <= 0 {
		return q
	}
	c := q.clone()
	c.skip += n
	if c.take >= 0 {
		c.take = max(c.take-n, 0)
	}
	return c
}

func (q *Query[T]) withTake(n int) *Query[T] {
	c := q.clone()
	n = max(n, 0)
	if c.take < 0 || n < c.take {
		c.take = n
	}
	return c
}

// Count 统计条件匹配的条数，再按 Skip/Take 截取。
func (q *Query[T]) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	start := time.Now()
	total, err := q.model.Count(ctx, q.where...)
	if err != nil {
		return 0, err
	}
	q.logger.Debug(ctx, "ormsource count",
		logging.String("table", q.model.Meta().Table),
		logging.Int64("total", total),
		logging.Duration("elapsed", time.Since(start)))

	n := max(total-int64(q.skip), 0)
	if q.take >= 0 {
		n = min(n, int64(q.take))
	}
	return n, nil
}

// Find 查询当前窗口内的记录
func (q *Query[T]) Find(ctx context.Context) ([]T, error) {
	if q.err != nil {
		return nil, q.err
	}
	if q.take == 0 {
		return []T{}, ctx.Err()
	}
	opts := slices.Clone(q.where)
	for _, o := range q.orders {
		opts = append(opts, orm.WithOrderBy(o.Column, o.Desc))
	}
	opts = append(opts, orm.WithOffset(q.skip))
	if q.take > 0 {
		opts = append(opts, orm.WithLimit(q.take))
	}

	start := time.Now()
	var items []T
	if err := q.model.Find(ctx, &items, opts...); err != nil {
		return nil, err
	}
	q.logger.Debug(ctx, "ormsource find",
		logging.String("table", q.model.Meta().Table),
		logging.Int("offset", q.skip),
		logging.Int("limit", q.take),
		logging.Int("rows", len(items)),
		logging.Duration("elapsed", time.Since(start)))
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// OrderedQuery 已排序的模型查询
type OrderedQuery[T any] struct {
	*Query[T]
}

// ThenBy 追加次级排序列
func (q *OrderedQuery[T]) ThenBy(field string, dir paging.Direction) (paging.OrderedQuery[T], error) {
	col, err := columnFor(q.schema, q.model.Meta(), field)
	if err != nil {
		return nil, err
	}
	c := q.clone()
	c.orders = append(c.orders, orm.OrderBy{Column: col, Desc: dir.Desc()})
	return &OrderedQuery[T]{c}, nil
}

func (q *OrderedQuery[T]) Skip(n int) paging.Query[T] { return &OrderedQuery[T]{q.withSkip(n)} }

func (q *OrderedQuery[T]) Take(n int) paging.Query[T] { return &OrderedQuery[T]{q.withTake(n)} }

// Provider 模型数据源提供者。
//
// 默认“有效记录”条件为软删除列 IS NULL：优先取 ModelMeta.SoftDeleteColumn，
// 其次为模型中名为 deleted_at 的列；都没有时不加条件。
type Provider[T any] struct {
	schema *paging.Schema[T]
	model  orm.IModel
	opts   []Option
	valid  []orm.QueryOption
}

// NewProvider 创建提供者
func NewProvider[T any](schema *paging.Schema[T], model orm.IModel, opts ...Option) *Provider[T] {
	o := collect(opts)
	valid := o.valid
	if !o.validSet {
		if col := softDeleteColumn(model.Meta()); col != "" {
			valid = []orm.QueryOption{orm.WithWhere(col + " IS NULL")}
		}
	}
	return &Provider[T]{schema: schema, model: model, opts: opts, valid: valid}
}

func softDeleteColumn(meta *orm.ModelMeta) string {
	if meta == nil {
		return ""
	}
	if meta.SoftDeleteColumn != "" {
		return meta.SoftDeleteColumn
	}
	if col, ok := meta.Column("deleted_at"); ok {
		return col
	}
	return ""
}

func (p *Provider[T]) Valid(_ context.Context, filter paging.Predicate[T]) (paging.Query[T], error) {
	q := New(p.schema, p.model, p.opts...)
	q.where = append(q.where, p.valid...)
	return q.Where(filter), nil
}
