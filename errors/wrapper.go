package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"runtime"

	"pagekit/logging"
)

// WrapWithLog 包装错误并记录警告日志，供适配层在边界处使用。
func WrapWithLog(ctx context.Context, err error, code ErrorCode, msg string, fields ...logging.Field) error {
	if err == nil {
		return nil
	}

	_, file, line, _ := runtime.Caller(1)
	wrapped := WrapError(err, code, msg)

	allFields := append([]logging.Field{
		logging.Error(err),
		logging.String("error_code", string(code)),
		logging.String("location", fmt.Sprintf("%s:%d", file, line)),
	}, fields...)
	logging.GetLogger().Warn(ctx, msg, allFields...)

	return wrapped
}

// WrapSourceError 包装数据源返回的错误。
//
//   - 上下文已取消/超时：原样返回 ctx.Err()，取消不是错误；
//   - 已经是 IError：原样返回，保留原错误码；
//   - 其他：包装为 ErrCodeDatabase。
func WrapSourceError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if _, ok := err.(IError); ok {
		return err
	}
	return WrapError(err, ErrCodeDatabase, operation)
}
