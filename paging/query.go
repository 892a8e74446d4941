package paging

import "context"

// Query 可过滤、可排序、可计数的数据源抽象。
//
// 实现应为不可变值：每次构建调用返回新的查询，原查询不受影响。
// Count/Find 是仅有的 I/O 步骤，必须响应 ctx 取消。
type Query[T any] interface {
	Where(p Predicate[T]) Query[T]
	// OrderBy 设置主排序，覆盖之前的排序；返回值应实现 OrderedQuery。
	OrderBy(field string, dir Direction) (Query[T], error)
	Skip(n int) Query[T]
	Take(n int) Query[T]
	Count(ctx context.Context) (int64, error)
	Find(ctx context.Context) ([]T, error)
}

// OrderedQuery 已建立排序的查询，ThenBy 在已有顺序的基础上追加次级排序。
type OrderedQuery[T any] interface {
	Query[T]
	ThenBy(field string, dir Direction) (OrderedQuery[T], error)
}

// Provider 提供“有效”实体（例如未删除）的基础查询，可选地附加过滤条件。
type Provider[T any] interface {
	Valid(ctx context.Context, filter Predicate[T]) (Query[T], error)
}

// ProviderFunc 函数适配器
type ProviderFunc[T any] func(ctx context.Context, filter Predicate[T]) (Query[T], error)

func (f ProviderFunc[T]) Valid(ctx context.Context, filter Predicate[T]) (Query[T], error) {
	return f(ctx, filter)
}
