package paging

import (
	stdErrors "errors"
	"fmt"

	"pagekit/errors"
)

// 分页相关的哨兵错误，作为 AppError 的 cause 暴露，可用 errors.Is 判断。
var (
	// ErrNoSource 未提供数据源且未配置 Provider。
	ErrNoSource = stdErrors.New("paging: no data source and no provider configured")
	// ErrInvalidSchema 字段注册表定义不合法。
	ErrInvalidSchema = stdErrors.New("paging: invalid schema")
	// ErrUnknownField 排序或过滤引用了未注册的字段。
	ErrUnknownField = stdErrors.New("paging: unknown field")
	// ErrInvalidRequest 分页请求参数不合法。
	ErrInvalidRequest = stdErrors.New("paging: invalid page request")
	// ErrNotOrderable 数据源在排序后丢失了“有序”能力，无法继续 ThenBy。
	ErrNotOrderable = stdErrors.New("paging: query is not orderable")
	// ErrPageOverflow 数据源返回的条数超过页大小。
	ErrPageOverflow = stdErrors.New("paging: page overflow")
)

func configurationError(cause error, msg string) error {
	return errors.NewErrorWithCause(errors.ErrCodeConfiguration, msg, cause)
}

func invariantViolation(cause error, format string, args ...any) error {
	return errors.NewErrorWithCause(errors.ErrCodeInternal, fmt.Sprintf(format, args...), cause)
}

// UnknownFieldError 返回引用未注册字段时的错误，Details 中 field 为字段名。
// 供各数据源在翻译过滤条件时复用。
func UnknownFieldError(name string) error {
	return errors.NewErrorWithCause(errors.ErrCodeInvalidInput,
		fmt.Sprintf("unknown or unsortable field %q", name), ErrUnknownField).
		WithContext("field", name)
}

func invalidRequest(field, msg string) error {
	return errors.NewErrorWithCause(errors.ErrCodeInvalidInput, msg, ErrInvalidRequest).
		WithContext("field", field)
}
