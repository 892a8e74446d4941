package errors

import (
	stdErrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 预定义错误代码
const (
	// 通用错误代码
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeUnsupported   ErrorCode = "UNSUPPORTED"

	// 业务错误代码
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// 基础设施错误代码
	ErrCodeDatabase ErrorCode = "DATABASE_ERROR"
	ErrCodeCache    ErrorCode = "CACHE_ERROR"
)

// IError 错误接口
type IError interface {
	error

	// 获取错误代码
	Code() ErrorCode

	// 获取错误消息
	Message() string

	// 获取原始错误
	Cause() error

	// 获取错误详情
	Details() map[string]any

	// 获取堆栈信息
	Stack() string

	// 添加上下文
	WithContext(key string, value any) IError
}

// AppError 应用错误实现
type AppError struct {
	code    ErrorCode
	message string
	cause   error
	details map[string]any
	stack   string
}

// NewError 创建新错误
func NewError(code ErrorCode, message string) IError {
	return &AppError{
		code:    code,
		message: message,
		details: make(map[string]any),
		stack:   captureStack(),
	}
}

// NewErrorWithCause 创建带原因的错误
func NewErrorWithCause(code ErrorCode, message string, cause error) IError {
	return &AppError{
		code:    code,
		message: message,
		cause:   cause,
		details: make(map[string]any),
		stack:   captureStack(),
	}
}

// WrapError 包装错误，err 为 nil 时返回 nil
func WrapError(err error, code ErrorCode, message string) IError {
	if err == nil {
		return nil
	}
	return &AppError{
		code:    code,
		message: message,
		cause:   err,
		details: make(map[string]any),
		stack:   captureStack(),
	}
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *AppError) Code() ErrorCode { return e.code }
func (e *AppError) Message() string { return e.message }
func (e *AppError) Cause() error    { return e.cause }
func (e *AppError) Stack() string   { return e.stack }

// Details 获取错误详情
func (e *AppError) Details() map[string]any {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	return e.details
}

// Is 同码 AppError 视为相同；否则沿 cause 链比较。
func (e *AppError) Is(target error) bool {
	if target == nil {
		return false
	}
	if appErr, ok := target.(*AppError); ok {
		return e.code == appErr.code
	}
	if e.cause != nil {
		return stdErrors.Is(e.cause, target)
	}
	return false
}

// Unwrap 解包错误（支持 errors.Unwrap）
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithContext 返回附带一条详情的新错误，原错误不变。
func (e *AppError) WithContext(key string, value any) IError {
	newDetails := copyMap(e.details)
	newDetails[key] = value

	return &AppError{
		code:    e.code,
		message: e.message,
		cause:   e.cause,
		details: newDetails,
		stack:   e.stack,
	}
}

// IsNotFound 检查是否为未找到错误
func IsNotFound(err error) bool {
	return IsErrorCode(err, ErrCodeNotFound)
}

// IsInvalidInput 检查是否为参数错误
func IsInvalidInput(err error) bool {
	return IsErrorCode(err, ErrCodeInvalidInput)
}

// IsConfiguration 检查是否为配置/前置条件错误
func IsConfiguration(err error) bool {
	return IsErrorCode(err, ErrCodeConfiguration)
}

// IsInternal 检查是否为内部不变量错误
func IsInternal(err error) bool {
	return IsErrorCode(err, ErrCodeInternal)
}

// IsErrorCode 检查错误链上第一个 AppError 的错误代码
func IsErrorCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	var appErr *AppError
	if stdErrors.As(err, &appErr) {
		return appErr.code == code
	}
	return false
}

// GetErrorCode 获取错误代码，非 AppError 一律视为内部错误
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stdErrors.As(err, &appErr) {
		return appErr.code
	}
	return ErrCodeInternal
}

// captureStack 捕获堆栈信息
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var builder strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		builder.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		if !more {
			break
		}
	}
	return builder.String()
}

func copyMap(original map[string]any) map[string]any {
	copied := make(map[string]any, len(original)+1)
	for k, v := range original {
		copied[k] = v
	}
	return copied
}
