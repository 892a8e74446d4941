package paging

// PagedResult 一页已物化的数据与过滤后（分页前）的总条数。
//
// 由 Engine 创建并在一次 Generate 中一次性填充，调用方只读。
type PagedResult[T any] struct {
	request *PageRequest
	items   []T
	total   int64
}

func newPagedResult[T any](request *PageRequest, items []T, total int64) *PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PagedResult[T]{request: request, items: items, total: total}
}

// Request 返回生成本结果的请求（与传入 Generate 的是同一指针）
func (r *PagedResult[T]) Request() *PageRequest { return r.request }

// Items 本页数据，调用方不应修改
func (r *PagedResult[T]) Items() []T { return r.items }

// TotalCount 过滤后、分页前的总条数
func (r *PagedResult[T]) TotalCount() int64 { return r.total }

// CurrentPage 当前页码；使用显式 Skip 时仍报告请求中的页码。
func (r *PagedResult[T]) CurrentPage() int { return r.request.Page() }

// PageSize 生效的页大小
func (r *PagedResult[T]) PageSize() int { return r.request.Size() }

// TotalPages 总页数；本页为空或总数为 0 时返回 -1。
func (r *PagedResult[T]) TotalPages() int {
	if len(r.items) == 0 || r.total <= 0 {
		return -1
	}
	size := int64(r.request.Size())
	return int((r.total + size - 1) / size)
}

// HasNext 本页之后是否还有数据
func (r *PagedResult[T]) HasNext() bool {
	return int64(r.request.Offset()+len(r.items)) < r.total
}

// HasPrevious 本页之前是否有数据
func (r *PagedResult[T]) HasPrevious() bool {
	return r.request.Offset() > 0 && r.total > 0
}

// Page 分页结果的简化投影，用于 JSON 输出。
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalPages int   `json:"total_pages"`
}

// Summary 返回简化投影
func (r *PagedResult[T]) Summary() Page[T] {
	return Page[T]{
		Items:      r.items,
		Total:      r.total,
		Page:       r.CurrentPage(),
		Size:       r.PageSize(),
		TotalPages: r.TotalPages(),
	}
}

// Convert 按元素映射为新的分页结果（立即求值），保留请求与总数。
func Convert[A, B any](r *PagedResult[A], fn func(A) B) *PagedResult[B] {
	items := make([]B, len(r.items))
	for i, item := range r.items {
		items[i] = fn(item)
	}
	return newPagedResult(r.request, items, r.total)
}

// ConvertE 同 Convert，映射函数返回的第一个错误直接返回，不产生结果。
func ConvertE[A, B any](r *PagedResult[A], fn func(A) (B, error)) (*PagedResult[B], error) {
	items := make([]B, len(r.items))
	for i, item := range r.items {
		v, err := fn(item)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return newPagedResult(r.request, items, r.total), nil
}
