package repo

import (
	"context"

	"pagekit/paging"
)

// ListPage 按参数生成一页结果。
//
// Page/Size 为 0 时使用默认值；Order 为空时按主键升序；Skip 非空时覆盖 Page 计算出的偏移。
func (r *Repo[T]) ListPage(ctx context.Context, options *QueryOptions) (paging.Page[T], error) {
	result, err := r.GeneratePage(ctx, options)
	if err != nil {
		return paging.Page[T]{}, err
	}
	return result.Summary(), nil
}

// GeneratePage 同 ListPage，返回完整的分页结果
func (r *Repo[T]) GeneratePage(ctx context.Context, options *QueryOptions) (*paging.PagedResult[T], error) {
	params, err := r.params(options)
	if err != nil {
		return nil, err
	}
	return r.engine.Generate(ctx, params)
}

// GeneratePageAsync 异步生成一页，结果通道只投递一次
func (r *Repo[T]) GeneratePageAsync(ctx context.Context, options *QueryOptions) <-chan paging.Outcome[T] {
	params, err := r.params(options)
	if err != nil {
		ch := make(chan paging.Outcome[T], 1)
		ch <- paging.Outcome[T]{Err: err}
		close(ch)
		return ch
	}
	return r.engine.GenerateAsync(ctx, params)
}

func (r *Repo[T]) params(options *QueryOptions) (paging.GenerateParams[T], error) {
	if options == nil {
		options = &QueryOptions{}
	}
	orderings, err := paging.ParseOrderSpecs(options.Order)
	if err != nil {
		return paging.GenerateParams[T]{}, err
	}
	req := paging.NewPageRequest(options.Page, options.Size)
	req.Orderings = orderings
	if options.Skip != nil {
		req = req.WithSkip(*options.Skip)
	}
	return paging.GenerateParams[T]{
		Request: req,
		Filter:  ParseFilters[T](options.Filters),
	}, nil
}
