package errors

import (
	"context"
	stdErrors "errors"

	"pagekit/data/orm"
)

// Normalize 将基础设施层的错误规范化为 AppError。
//
// 注意：
//   - 如果传入的 err 已经是 IError，则原样返回；
//   - context 取消/超时保持原样，调用方据此区分“取消”与“失败”；
//   - 未识别的错误保持原样，不强行包装，交由调用方决定是否 Wrap。
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := err.(IError); ok {
		return err
	}

	if stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if stdErrors.Is(err, orm.ErrNotFound) {
		return WrapError(err, ErrCodeNotFound, "记录未找到")
	}
	if stdErrors.Is(err, orm.ErrUnsupported) {
		return WrapError(err, ErrCodeUnsupported, "适配器不支持该能力")
	}

	return err
}
