package repo

import (
	"context"
	"maps"
	"slices"
	"strings"

	"pagekit/paging"
)

// ParseFilters 将查询参数形式的过滤条件转换为条件树，多个键之间为 AND。
//
// 键的后缀决定比较方式：_like、_gt、_gte、_lt、_lte、_ne、_in、_not_in（_in 的值以逗号分隔），
// 无后缀为等值比较。键名必须是 Schema 中的字段，未知字段在查询时报错。
// 键按字典序处理，相同的参数总是得到相同的条件（总数缓存依赖这一点）。
func ParseFilters[T any](filters map[string]string) paging.Predicate[T] {
	if len(filters) == 0 {
		return nil
	}
	terms := make([]paging.Predicate[T], 0, len(filters))
	for _, key := range slices.Sorted(maps.Keys(filters)) {
		terms = append(terms, parseFilter[T](key, filters[key]))
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return paging.And(terms...)
}

func parseFilter[T any](key, value string) paging.Predicate[T] {
	// _not_in 须先于 _in 判断
	switch {
	case strings.HasSuffix(key, "_like"):
		return paging.Like[T](strings.TrimSuffix(key, "_like"), value)
	case strings.HasSuffix(key, "_gte"):
		return paging.Gte[T](strings.TrimSuffix(key, "_gte"), value)
	case strings.HasSuffix(key, "_gt"):
		return paging.Gt[T](strings.TrimSuffix(key, "_gt"), value)
	case strings.HasSuffix(key, "_lte"):
		return paging.Lte[T](strings.TrimSuffix(key, "_lte"), value)
	case strings.HasSuffix(key, "_lt"):
		return paging.Lt[T](strings.TrimSuffix(key, "_lt"), value)
	case strings.HasSuffix(key, "_ne"):
		return paging.Ne[T](strings.TrimSuffix(key, "_ne"), value)
	case strings.HasSuffix(key, "_not_in"):
		return paging.Not(paging.In[T](strings.TrimSuffix(key, "_not_in"), splitValues(value)...))
	case strings.HasSuffix(key, "_in"):
		return paging.In[T](strings.TrimSuffix(key, "_in"), splitValues(value)...)
	default:
		return paging.Eq[T](key, value)
	}
}

func splitValues(value string) []any {
	parts := strings.Split(value, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (r *Repo[T]) filtered(ctx context.Context, filters map[string]string) (paging.Query[T], error) {
	return r.provider.Valid(ctx, ParseFilters[T](filters))
}
