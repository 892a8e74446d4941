package paging

import "context"

// Paginate 一次调用完成分页：从 provider 获取有效数据并应用 filter。
func Paginate[T any](ctx context.Context, schema *Schema[T], provider Provider[T], req *PageRequest, filter Predicate[T]) (*PagedResult[T], error) {
	engine, err := NewEngine(schema, WithProvider(provider))
	if err != nil {
		return nil, err
	}
	return engine.Generate(ctx, GenerateParams[T]{Request: req, Filter: filter})
}

// PaginateQuery 对调用方提供的查询分页。
func PaginateQuery[T any](ctx context.Context, schema *Schema[T], query Query[T], req *PageRequest) (*PagedResult[T], error) {
	engine, err := NewEngine(schema)
	if err != nil {
		return nil, err
	}
	return engine.Generate(ctx, GenerateParams[T]{Source: query, Request: req})
}

// PaginateSummary 同 Paginate，直接返回简化投影。
func PaginateSummary[T any](ctx context.Context, schema *Schema[T], provider Provider[T], req *PageRequest, filter Predicate[T]) (Page[T], error) {
	result, err := Paginate(ctx, schema, provider, req, filter)
	if err != nil {
		return Page[T]{}, err
	}
	return result.Summary(), nil
}
