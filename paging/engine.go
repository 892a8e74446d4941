package paging

import (
	"context"
	stdErrors "errors"
	"fmt"

	"pagekit/errors"
)

// Engine 分页引擎：计数、排序、偏移、取页，生成 PagedResult。
//
// Engine 本身不做 I/O、不持有可变状态，可被多个 goroutine 并发使用。
type Engine[T any] struct {
	schema      *Schema[T]
	provider    Provider[T]
	maxPageSize int
	idTieBreak  bool
}

// Option 引擎选项
type Option[T any] func(*Engine[T])

// WithProvider 未显式传入 Source 时使用的默认数据源提供者。
func WithProvider[T any](p Provider[T]) Option[T] {
	return func(e *Engine[T]) { e.provider = p }
}

// WithMaxPageSize 允许的最大页大小，<= 0 表示不限制。
func WithMaxPageSize[T any](n int) Option[T] {
	return func(e *Engine[T]) { e.maxPageSize = n }
}

// WithIDTieBreak 自定义排序未包含唯一标识时，是否追加一条按标识升序的排序（默认开启）。
func WithIDTieBreak[T any](enabled bool) Option[T] {
	return func(e *Engine[T]) { e.idTieBreak = enabled }
}

// NewEngine 创建分页引擎
func NewEngine[T any](schema *Schema[T], opts ...Option[T]) (*Engine[T], error) {
	if schema == nil {
		return nil, configurationError(ErrInvalidSchema, "schema is required")
	}
	e := &Engine[T]{
		schema:      schema,
		maxPageSize: DefaultMaxPageSize,
		idTieBreak:  true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Schema 返回字段注册表
func (e *Engine[T]) Schema() *Schema[T] { return e.schema }

// MaxPageSize 返回最大页大小
func (e *Engine[T]) MaxPageSize() int { return e.maxPageSize }

// GenerateParams Generate 的输入。
//
// Source 为空时通过 Provider 获取数据源，此时才应用 Filter；
// 调用方自带 Source 时 Filter 被忽略，过滤应已体现在 Source 中。
type GenerateParams[T any] struct {
	Source  Query[T]
	Request *PageRequest
	Filter  Predicate[T]
}

// Generate 生成一页结果。
//
// 步骤：解析数据源 -> 计数（分页前）-> 排序 -> Skip/Take -> 物化。
// 数据源报告的总数小于 Offset+len(items) 时按后者修正。
// ctx 在计数或物化期间被取消时返回 nil 和 ctx.Err()，不会返回部分填充的结果。
func (e *Engine[T]) Generate(ctx context.Context, params GenerateParams[T]) (*PagedResult[T], error) {
	req := params.Request
	if err := req.Validate(e.maxPageSize); err != nil {
		return nil, err
	}
	plan, err := e.plan(req.Orderings)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source, err := e.resolveSource(ctx, params)
	if err != nil {
		return nil, err
	}

	total, err := source.Count(ctx)
	if err != nil {
		return nil, errors.WrapSourceError(ctx, err, "count data source")
	}

	ordered, err := e.applyOrderings(source, plan)
	if err != nil {
		return nil, err
	}

	size := req.Size()
	items, err := ordered.Skip(req.Offset()).Take(size).Find(ctx)
	if err != nil {
		return nil, errors.WrapSourceError(ctx, err, "materialize page")
	}
	if len(items) > size {
		return nil, invariantViolation(ErrPageOverflow, "data source returned %d items for page size %d", len(items), size)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// 计数可能来自缓存而略有滞后，总数不得少于已经看到的行数
	if seen := int64(req.Offset()) + int64(len(items)); len(items) > 0 && total < seen {
		total = seen
	}
	return newPagedResult(req, items, total), nil
}

func (e *Engine[T]) resolveSource(ctx context.Context, params GenerateParams[T]) (Query[T], error) {
	if params.Source != nil {
		return params.Source, nil
	}
	if e.provider == nil {
		return nil, configurationError(ErrNoSource, "no data source given and no provider configured")
	}
	source, err := e.provider.Valid(ctx, params.Filter)
	if err != nil {
		return nil, errors.WrapSourceError(ctx, err, "resolve data source")
	}
	if source == nil {
		return nil, configurationError(ErrNoSource, fmt.Sprintf("provider %T returned no data source", e.provider))
	}
	return source, nil
}

// plan 解析排序计划：字段名规范化，空计划时按唯一标识升序，按需追加标识排序。
func (e *Engine[T]) plan(specs []OrderSpec) ([]OrderSpec, error) {
	id := e.schema.ID().Name
	if len(specs) == 0 {
		return []OrderSpec{Asc(id)}, nil
	}
	plan := make([]OrderSpec, 0, len(specs)+1)
	hasID := false
	for _, spec := range specs {
		if !spec.Direction.IsValid() {
			return nil, invalidRequest(spec.Field, fmt.Sprintf("invalid sort direction %q for field %q", spec.Direction, spec.Field))
		}
		f, err := e.schema.Resolve(spec.Field)
		if err != nil {
			return nil, err
		}
		hasID = hasID || f.Name == id
		plan = append(plan, OrderSpec{Field: f.Name, Direction: spec.Direction})
	}
	if e.idTieBreak && !hasID {
		plan = append(plan, Asc(id))
	}
	return plan, nil
}

// applyOrderings 第一条为主排序，其余在已建立顺序上用 ThenBy 追加。
func (e *Engine[T]) applyOrderings(source Query[T], plan []OrderSpec) (OrderedQuery[T], error) {
	q, err := source.OrderBy(plan[0].Field, plan[0].Direction)
	if err != nil {
		return nil, passThrough(err)
	}
	ordered, ok := q.(OrderedQuery[T])
	if !ok || ordered == nil {
		return nil, invariantViolation(ErrNotOrderable, "query %T returned by OrderBy cannot be ordered further", q)
	}
	for _, spec := range plan[1:] {
		next, err := ordered.ThenBy(spec.Field, spec.Direction)
		if err != nil {
			return nil, passThrough(err)
		}
		if next == nil {
			return nil, invariantViolation(ErrNotOrderable, "ThenBy(%s) on %T returned no query", spec.Field, ordered)
		}
		ordered = next
	}
	return ordered, nil
}

// passThrough 排序阶段的错误多为字段解析错误，保持原样；其他错误按内部错误包装。
func passThrough(err error) error {
	var appErr errors.IError
	if stdErrors.As(err, &appErr) {
		return err
	}
	return errors.WrapError(err, errors.ErrCodeInternal, "apply ordering")
}

// Outcome 异步生成的结果；Err 为 ctx 错误时表示被取消，而非失败。
type Outcome[T any] struct {
	Result *PagedResult[T]
	Err    error
}

// Canceled 是否因取消或超时结束
func (o Outcome[T]) Canceled() bool {
	return stdErrors.Is(o.Err, context.Canceled) || stdErrors.Is(o.Err, context.DeadlineExceeded)
}

// GenerateAsync 在独立 goroutine 中执行 Generate，结果通过容量为 1 的通道恰好投递一次，随后关闭通道。
//
// 计数与物化都把 ctx 传给数据源，取消会中断正在进行的 I/O。
func (e *Engine[T]) GenerateAsync(ctx context.Context, params GenerateParams[T]) <-chan Outcome[T] {
	ch := make(chan Outcome[T], 1)
	go func() {
		defer close(ch)
		result, err := e.Generate(ctx, params)
		ch <- Outcome[T]{Result: result, Err: err}
	}()
	return ch
}
