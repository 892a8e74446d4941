package repo

import (
	"context"

	"pagekit/errors"
	"pagekit/logging"
)

// Add 校验后新增
func (r *Repo[T]) Add(ctx context.Context, entity T) error {
	if err := r.validator.Validate(entity); err != nil {
		return err
	}
	if err := r.query(ctx).Create(&entity); err != nil {
		return errors.WrapWithLog(ctx, err, errors.ErrCodeDatabase, "保存记录失败")
	}
	return nil
}

// AddAll 批量新增，任一实体校验失败时不写入
func (r *Repo[T]) AddAll(ctx context.Context, entities []T) error {
	if len(entities) == 0 {
		return nil
	}
	for _, entity := range entities {
		if err := r.validator.Validate(entity); err != nil {
			return err
		}
	}
	items := make([]any, len(entities))
	for i := range entities {
		items[i] = &entities[i]
	}
	if err := r.query(ctx).Create(items...); err != nil {
		return errors.WrapWithLog(ctx, err, errors.ErrCodeDatabase, "批量保存记录失败",
			logging.Int("count", len(entities)))
	}
	return nil
}
