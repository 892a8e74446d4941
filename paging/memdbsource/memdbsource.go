// Package memdbsource 基于 hashicorp/go-memdb 表的数据源。
//
// 每次 Count/Find 在一个只读事务中读取整张表（一致快照），
// 过滤、排序与分页复用 memory 数据源。
package memdbsource

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"

	"pagekit/paging"
	"pagekit/paging/memory"
)

// Table 描述要读取的表
type Table struct {
	Name  string
	Index string // 遍历使用的索引，空时为 "id"
}

// Loader 返回在只读事务中读取整张表的加载函数。
//
// 表中对象可以是 T 或 *T。
func Loader[T any](db *memdb.MemDB, table Table) memory.Loader[T] {
	index := table.Index
	if index == "" {
		index = "id"
	}
	return func(ctx context.Context) ([]T, error) {
		txn := db.Txn(false)
		defer txn.Abort()

		it, err := txn.Get(table.Name, index)
		if err != nil {
			return nil, err
		}
		var items []T
		for obj := it.Next(); obj != nil; obj = it.Next() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			switch v := obj.(type) {
			case T:
				items = append(items, v)
			case *T:
				items = append(items, *v)
			default:
				return nil, fmt.Errorf("memdbsource: table %s holds %T", table.Name, obj)
			}
		}
		return items, nil
	}
}

// New 创建表查询
func New[T any](schema *paging.Schema[T], db *memdb.MemDB, table Table) paging.Query[T] {
	return memory.FromLoader(schema, Loader[T](db, table))
}

// NewProvider 创建表数据源提供者，valid 为“有效记录”条件（可为 nil）。
func NewProvider[T any](schema *paging.Schema[T], db *memdb.MemDB, table Table, valid paging.Predicate[T]) paging.Provider[T] {
	return memory.NewLoaderProvider(schema, Loader[T](db, table), valid)
}
