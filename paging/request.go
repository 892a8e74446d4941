package paging

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"pagekit/errors"
	"pagekit/validation"
)

const (
	// DefaultPageNumber PageNumber 为 0 时使用的页码
	DefaultPageNumber = 1
	// DefaultPageSize PageSize 为 0 时使用的页大小
	DefaultPageSize = 10
	// DefaultMaxPageSize Engine 默认允许的最大页大小
	DefaultMaxPageSize = 1000
)

// PageRequest 描述调用方期望的一页：页码、页大小、可选的显式偏移和排序计划。
//
// 零值的 PageNumber/PageSize 表示“未设置”，取默认值。
// Skip 存在时覆盖 (PageNumber-1)*PageSize 计算出的偏移，用于不规则分块读取。
// 求值期间引擎只读取请求，不做任何修改。
type PageRequest struct {
	PageNumber int         `json:"page" validate:"gte=0"`
	PageSize   int         `json:"size" validate:"gte=0"`
	Skip       *int        `json:"skip,omitempty" validate:"omitempty,gte=0"`
	Orderings  []OrderSpec `json:"orderings,omitempty" validate:"dive"`
}

// NewPageRequest 创建分页请求
func NewPageRequest(page, size int) *PageRequest {
	return &PageRequest{PageNumber: page, PageSize: size}
}

// WithSkip 设置显式偏移
func (r *PageRequest) WithSkip(n int) *PageRequest {
	r.Skip = &n
	return r
}

// OrderBy 追加一条排序规则，追加顺序即应用顺序。
func (r *PageRequest) OrderBy(field string, dir Direction) *PageRequest {
	r.Orderings = append(r.Orderings, OrderSpec{Field: field, Direction: dir})
	return r
}

// Page 生效的页码
func (r *PageRequest) Page() int {
	if r.PageNumber <= 0 {
		return DefaultPageNumber
	}
	return r.PageNumber
}

// Size 生效的页大小
func (r *PageRequest) Size() int {
	if r.PageSize <= 0 {
		return DefaultPageSize
	}
	return r.PageSize
}

// Offset 本页起始行：显式 Skip 优先，否则为 (Page-1)*Size。
func (r *PageRequest) Offset() int {
	if r.Skip != nil {
		return *r.Skip
	}
	return (r.Page() - 1) * r.Size()
}

// Clone 深拷贝请求
func (r *PageRequest) Clone() *PageRequest {
	c := *r
	if r.Skip != nil {
		skip := *r.Skip
		c.Skip = &skip
	}
	c.Orderings = slices.Clone(r.Orderings)
	return &c
}

// Validate 校验请求参数；maxPageSize <= 0 表示不限制页大小。
func (r *PageRequest) Validate(maxPageSize int) error {
	if r == nil {
		return invalidRequest("request", "page request is nil")
	}
	if err := validation.Default().Validate(r); err != nil {
		field := "request"
		msg := err.Error()
		if appErr, ok := err.(errors.IError); ok {
			msg = appErr.Message()
			if fields, ok := appErr.Details()["fields"].([]string); ok && len(fields) > 0 {
				field = strings.Join(fields, ",")
			}
		}
		return invalidRequest(field, msg)
	}
	if maxPageSize > 0 && r.Size() > maxPageSize {
		return invalidRequest("PageSize", fmt.Sprintf("page size %d exceeds maximum %d", r.Size(), maxPageSize))
	}
	// 偏移必须能用 int 表示
	if r.Skip == nil && r.Page()-1 > math.MaxInt/r.Size() {
		return invalidRequest("PageNumber", fmt.Sprintf("page %d with size %d overflows the row offset", r.Page(), r.Size()))
	}
	return nil
}
