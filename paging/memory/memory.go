// Package memory 基于切片的内存数据源。
package memory

import (
	"context"
	"slices"

	"pagekit/paging"
)

// Loader 在 Count/Find 时加载数据快照
type Loader[T any] func(ctx context.Context) ([]T, error)

// Query 内存查询，实现 paging.Query；排序后返回的 OrderedQuery 实现 ThenBy。
//
// 排序使用 slices.SortStableFunc 与复合比较函数，ThenBy 只在前序键相等时生效。
type Query[T any] struct {
	schema  *paging.Schema[T]
	load    Loader[T]
	filters []paging.Predicate[T]
	orders  []paging.OrderSpec
	skip    int
	take    int // < 0 表示不限制
}

var (
	_ paging.Query[int]        = (*Query[int])(nil)
	_ paging.OrderedQuery[int] = (*OrderedQuery[int])(nil)
)

// New 基于切片创建查询，构造时复制切片，后续修改原切片不影响查询。
func New[T any](schema *paging.Schema[T], items []T) *Query[T] {
	snapshot := slices.Clone(items)
	return FromLoader(schema, func(context.Context) ([]T, error) { return snapshot, nil })
}

// FromLoader 基于加载函数创建查询，每次 Count/Find 调用一次 load。
func FromLoader[T any](schema *paging.Schema[T], load Loader[T]) *Query[T] {
	return &Query[T]{schema: schema, load: load, take: -1}
}

func (q *Query[T]) clone() *Query[T] {
	c := *q
	c.filters = slices.Clone(q.filters)
	c.orders = slices.Clone(q.orders)
	return &c
}

func (q *Query[T]) Where(p paging.Predicate[T]) paging.Query[T] {
	if p == nil {
		return q
	}
	c := q.clone()
	c.filters = append(c.filters, p)
	return c
}

func (q *Query[T]) OrderBy(field string, dir paging.Direction) (paging.Query[T], error) {
	f, err := q.schema.Resolve(field)
	if err != nil {
		return nil, err
	}
	c := q.clone()
	c.orders = []paging.OrderSpec{{Field: f.Name, Direction: dir}}
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

// Count 返回过滤并应用 Skip/Take 后的条数
func (q *Query[T]) Count(ctx context.Context) (int64, error) {
	matched, err := q.filtered(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(q.window(matched))), nil
}

// Find 过滤、排序并截取窗口，返回新切片
func (q *Query[T]) Find(ctx context.Context) ([]T, error) {
	matched, err := q.filtered(ctx)
	if err != nil {
		return nil, err
	}
	if len(q.orders) > 0 {
		compare, err := q.schema.Comparator(q.orders)
		if err != nil {
			return nil, err
		}
		slices.SortStableFunc(matched, compare)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(q.window(matched)), nil
}

func (q *Query[T]) filtered(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := q.load(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]T, 0, len(items))
	for _, item := range items {
		ok, err := q.match(item)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func (q *Query[T]) match(item T) (bool, error) {
	for _, p := range q.filters {
		ok, err := p.Match(q.schema, item)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (q *Query[T]) window(items []T) []T {
	if q.skip >= len(items) {
		return items[:0]
	}
	items = items[q.skip:]
	if q.take >= 0 && q.take < len(items) {
		items = items[:q.take]
	}
	return items
}

// OrderedQuery 已排序的内存查询
type OrderedQuery[T any] struct {
	*Query[T]
}

// ThenBy 追加次级排序
func (q *OrderedQuery[T]) ThenBy(field string, dir paging.Direction) (paging.OrderedQuery[T], error) {
	f, err := q.schema.Resolve(field)
	if err != nil {
		return nil, err
	}
	c := q.clone()
	c.orders = append(c.orders, paging.OrderSpec{Field: f.Name, Direction: dir})
	return &OrderedQuery[T]{c}, nil
}

// Skip/Take 保留有序性，便于在排序后继续链式调用。
func (q *OrderedQuery[T]) Skip(n int) paging.Query[T] { return &OrderedQuery[T]{q.withSkip(n)} }

func (q *OrderedQuery[T]) Take(n int) paging.Query[T] { return &OrderedQuery[T]{q.withTake(n)} }

// Provider 内存数据源提供者，valid 为“有效记录”条件（可为 nil）。
type Provider[T any] struct {
	schema *paging.Schema[T]
	load   Loader[T]
	valid  paging.Predicate[T]
}

// NewProvider 基于切片快照创建提供者
func NewProvider[T any](schema *paging.Schema[T], items []T, valid paging.Predicate[T]) *Provider[T] {
	snapshot := slices.Clone(items)
	return NewLoaderProvider(schema, func(context.Context) ([]T, error) { return snapshot, nil }, valid)
}

// NewLoaderProvider 基于加载函数创建提供者
func NewLoaderProvider[T any](schema *paging.Schema[T], load Loader[T], valid paging.Predicate[T]) *Provider[T] {
	return &Provider[T]{schema: schema, load: load, valid: valid}
}

func (p *Provider[T]) Valid(_ context.Context, filter paging.Predicate[T]) (paging.Query[T], error) {
	return FromLoader(p.schema, p.load).Where(p.valid).Where(filter), nil
}
