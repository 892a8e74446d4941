package validation

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"pagekit/errors"
)

// IValidator 定义通用验证器接口
type IValidator interface {
	Validate(value any) error
}

// NoopValidator 默认验证器，实现为空操作
type NoopValidator struct{}

// Validate 实现 IValidator 接口
func (NoopValidator) Validate(value any) error {
	return nil
}

// StructValidator 基于 go-playground/validator 的结构体标签校验器。
// 校验失败返回 ErrCodeValidation，Details 中 "fields" 为失败字段列表。
type StructValidator struct {
	v *validator.Validate
}

// NewStructValidator 创建结构体校验器
func NewStructValidator() *StructValidator {
	return &StructValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

var (
	defaultOnce      sync.Once
	defaultValidator *StructValidator
)

// Default 返回进程内共享的结构体校验器（validator 内部缓存结构体元信息，可并发使用）
func Default() *StructValidator {
	defaultOnce.Do(func() {
		defaultValidator = NewStructValidator()
	})
	return defaultValidator
}

// Validate 实现 IValidator 接口
func (s *StructValidator) Validate(value any) error {
	err := s.v.Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stdErrors.As(err, &fieldErrs) {
		return errors.WrapError(err, errors.ErrCodeValidation, "校验失败")
	}

	msgs := make([]string, 0, len(fieldErrs))
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s (got %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
	}
	return errors.NewErrorWithCause(errors.ErrCodeValidation, strings.Join(msgs, "; "), err).
		WithContext("fields", fields)
}

// ValidateIntRange 验证整数范围，max <= 0 表示不限上限
func ValidateIntRange(value int, fieldName string, min, max int) error {
	if value < min {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s不能小于%d（当前%d）", fieldName, min, value))
	}
	if max > 0 && value > max {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s不能大于%d（当前%d）", fieldName, max, value))
	}
	return nil
}

// ValidateEnum 验证枚举值（大小写不敏感）
func ValidateEnum(value, fieldName string, validValues []string) error {
	for _, valid := range validValues {
		if strings.EqualFold(value, valid) {
			return nil
		}
	}
	return errors.NewError(errors.ErrCodeValidation,
		fmt.Sprintf("%s的值无效，必须是以下之一: %v", fieldName, validValues))
}
