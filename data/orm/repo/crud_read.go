package repo

import (
	"context"

	"pagekit/errors"
	"pagekit/paging"
)

// Get 根据主键获取（未删除）
func (r *Repo[T]) Get(ctx context.Context, id any) (T, error) {
	var entity T
	err := r.query(ctx).
		Where(r.model.Meta().PrimaryKey()+" = ?", id).
		First(&entity)
	var zero T
	if err != nil {
		if nerr := errors.Normalize(err); errors.IsNotFound(nerr) {
			return zero, nerr
		}
		return zero, errors.WrapSourceError(ctx, err, "failed to query record")
	}
	return entity, nil
}

// Exists 判断主键对应的记录是否存在（未删除）
func (r *Repo[T]) Exists(ctx context.Context, id any) (bool, error) {
	count, err := r.query(ctx).
		Where(r.model.Meta().PrimaryKey()+" = ?", id).
		Count()
	if err != nil {
		return false, errors.WrapSourceError(ctx, err, "failed to check record existence")
	}
	return count > 0, nil
}

// List 按主键升序的偏移/限制列表，limit <= 0 表示不限制
func (r *Repo[T]) List(ctx context.Context, offset, limit int) ([]T, error) {
	var entities []T
	q := r.query(ctx).Order(r.model.Meta().PrimaryKey(), false)
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entities); err != nil {
		return nil, errors.WrapSourceError(ctx, err, "failed to list records")
	}
	return entities, nil
}

// Count 统计总数
func (r *Repo[T]) Count(ctx context.Context) (int64, error) {
	count, err := r.query(ctx).Count()
	if err != nil {
		return 0, errors.WrapSourceError(ctx, err, "failed to count records")
	}
	return count, nil
}

// CountWithFilters 按过滤参数统计，过滤参数格式见 ParseFilters。
func (r *Repo[T]) CountWithFilters(ctx context.Context, filters map[string]string) (int64, error) {
	q, err := r.filtered(ctx, filters)
	if err != nil {
		return 0, err
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, errors.WrapSourceError(ctx, err, "failed to count records")
	}
	return count, nil
}

// Find 按过滤参数查询全部匹配记录（主键升序）
func (r *Repo[T]) Find(ctx context.Context, filters map[string]string) ([]T, error) {
	q, err := r.filtered(ctx, filters)
	if err != nil {
		return nil, err
	}
	ordered, err := q.OrderBy(r.schema.ID().Name, paging.Ascending)
	if err != nil {
		return nil, err
	}
	items, err := ordered.Find(ctx)
	if err != nil {
		return nil, errors.WrapSourceError(ctx, err, "failed to find records")
	}
	return items, nil
}
