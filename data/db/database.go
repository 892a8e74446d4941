// Package db 提供通用的数据库抽象接口
//
// 设计目标：
// 1. 隔离具体的 SQL 驱动（sqlite、mysql、postgres 等）
// 2. 提供统一的查询/执行接口，全部方法接收 context 以支持取消
// 3. 便于单元测试（sqlmock / 内存 sqlite）
package db

import (
	"context"
	"database/sql"
)

// IDatabase 通用数据库接口
type IDatabase interface {
	// 查询操作
	Query(ctx context.Context, query string, args ...any) (IRows, error)
	QueryRow(ctx context.Context, query string, args ...any) IRow

	// 执行操作
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)

	// 事务操作
	Begin(ctx context.Context) (ITransaction, error)

	// 连接管理
	Ping(ctx context.Context) error
	Close() error

	// 获取原始连接（用于特殊场景）
	Raw() any
}

// IDialectNameProvider 可选接口：提供底层数据库方言名称
//
// 实现方应返回诸如 "mysql"、"sqlite"、"postgres" 等 driver/dialect 名，
// 供 SQL 构建层推断方言能力（标识符引号、占位符形式等）。
type IDialectNameProvider interface {
	GetDialectName() string
}

// ITransaction 事务接口
type ITransaction interface {
	IDatabase

	Commit() error
	Rollback() error
}

// IRows 查询结果集接口
type IRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
	Columns() ([]string, error)
}

// IRow 单行结果接口
type IRow interface {
	Scan(dest ...any) error
	Err() error
}

// DBConfig 数据库配置
type DBConfig struct {
	Driver   string `mapstructure:"driver"`   // sqlite, mysql, postgres
	Database string `mapstructure:"database"` // DSN，sqlite 下为文件路径或 :memory:

	// 连接池配置
	MaxOpenConns    int `mapstructure:"max_open_conns"`
	MaxIdleConns    int `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime"` // 秒
	ConnMaxIdleTime int `mapstructure:"conn_max_idle_time"` // 秒
}
