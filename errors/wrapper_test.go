package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagekit/data/orm"
)

var errSentinel = errors.New("sentinel")

// TestWrapSourceError 测试数据源错误包装
func TestWrapSourceError(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		err      error
		wantNil  bool
		wantCode ErrorCode
	}{
		{name: "nil错误", err: nil, wantNil: true},
		{name: "普通错误包装为数据库错误", err: errors.New("disk I/O error"), wantCode: ErrCodeDatabase},
		{name: "已是AppError保持原码", err: NewError(ErrCodeInvalidInput, "bad field"), wantCode: ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapSourceError(ctx, tt.err, "count")
			if tt.wantNil {
				assert.Nil(t, wrapped)
				return
			}
			require.Error(t, wrapped)
			assert.Equal(t, tt.wantCode, GetErrorCode(wrapped))
		})
	}
}

// TestWrapSourceError_Canceled 取消不被包装
func TestWrapSourceError_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WrapSourceError(ctx, fmt.Errorf("interrupted: %w", errSentinel), "find")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsErrorCode(err, ErrCodeDatabase))

	err = WrapSourceError(context.Background(), fmt.Errorf("query: %w", context.DeadlineExceeded), "find")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestWrapWithLog 测试包装并记录日志
func TestWrapWithLog(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, WrapWithLog(ctx, nil, ErrCodeDatabase, "消息"))

	wrapped := WrapWithLog(ctx, errSentinel, ErrCodeDatabase, "查询失败")
	require.Error(t, wrapped)
	assert.ErrorIs(t, wrapped, errSentinel)
	assert.Equal(t, ErrCodeDatabase, GetErrorCode(wrapped))
}

// TestAppError_IsAndUnwrap 测试错误链匹配
func TestAppError_IsAndUnwrap(t *testing.T) {
	err := NewErrorWithCause(ErrCodeInvalidInput, "unknown field", errSentinel)

	assert.ErrorIs(t, err, errSentinel)
	assert.True(t, errors.Is(err, NewError(ErrCodeInvalidInput, "other")))
	assert.False(t, errors.Is(err, NewError(ErrCodeInternal, "other")))
	assert.True(t, IsInvalidInput(fmt.Errorf("outer: %w", err)))
}

// TestAppError_WithContext 详情不影响原错误
func TestAppError_WithContext(t *testing.T) {
	base := NewError(ErrCodeInvalidInput, "unknown field")
	withField := base.WithContext("field", "DoesNotExist")

	assert.Equal(t, "DoesNotExist", withField.Details()["field"])
	assert.Empty(t, base.Details())
	assert.Equal(t, base.Code(), withField.Code())
}

// TestNormalize 测试规范化
func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))
	assert.True(t, IsNotFound(Normalize(orm.ErrNotFound)))
	assert.True(t, IsErrorCode(Normalize(orm.ErrUnsupported), ErrCodeUnsupported))
	assert.ErrorIs(t, Normalize(context.Canceled), context.Canceled)

	raw := errors.New("raw")
	assert.Same(t, raw, Normalize(raw))
}
