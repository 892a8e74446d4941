package basic

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	core "pagekit/data/db"
	"pagekit/data/db/dialect"
)

// DB 基于 database/sql 的最小实现，满足 core.IDatabase 抽象
type DB struct {
	db      *sql.DB
	driver  string
	dialect dialect.Dialect
}

// New 根据 core.DBConfig 创建基础数据库实例
//
// 调用方必须确保所配置的 Driver 已通过空导入注册（例如 `_ "modernc.org/sqlite"`），
// basic 层只负责最小抽象。
func New(config core.DBConfig) (*DB, error) {
	driver := config.Driver
	if driver == "" {
		driver = "sqlite"
	}

	db, err := sql.Open(driver, config.Database)
	if err != nil {
		return nil, err
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(config.ConnMaxLifetime) * time.Second)
	}
	if config.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(time.Duration(config.ConnMaxIdleTime) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return Wrap(db, driver), nil
}

// Wrap 包装已打开的 *sql.DB（例如 sqlmock 创建的连接）
func Wrap(db *sql.DB, driver string) *DB {
	return &DB{db: db, driver: driver, dialect: dialect.New(driver)}
}

func (d *DB) Query(ctx context.Context, query string, args ...any) (core.IRows, error) {
	rows, err := d.db.QueryContext(ctx, d.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return &Rows{rows: rows}, nil
}

func (d *DB) QueryRow(ctx context.Context, query string, args ...any) core.IRow {
	return &Row{row: d.db.QueryRowContext(ctx, d.dialect.Rebind(query), args...)}
}

func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, d.dialect.Rebind(query), args...)
}

func (d *DB) Begin(ctx context.Context) (core.ITransaction, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{db: d.db, tx: tx, dialect: d.dialect}, nil
}

func (d *DB) Ping(ctx context.Context) error { return d.db.PingContext(ctx) }
func (d *DB) Close() error                   { return d.db.Close() }
func (d *DB) Raw() any                       { return d.db }

// GetDialectName 实现 core.IDialectNameProvider 接口，返回底层 driver 名
func (d *DB) GetDialectName() string {
	return d.driver
}

// ExecDDL 执行建表等 DDL 语句（测试与 CLI 初始化使用）
func (d *DB) ExecDDL(ctx context.Context, stmts ...string) error {
	if d.db == nil {
		return fmt.Errorf("basic.DB: db is nil")
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Rows 包装 sql.Rows 以实现 core.IRows
type Rows struct{ rows *sql.Rows }

func (r *Rows) Next() bool                 { return r.rows.Next() }
func (r *Rows) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r *Rows) Close() error               { return r.rows.Close() }
func (r *Rows) Err() error                 { return r.rows.Err() }
func (r *Rows) Columns() ([]string, error) { return r.rows.Columns() }

// Row 包装 sql.Row 以实现 core.IRow
type Row struct{ row *sql.Row }

func (r *Row) Scan(dest ...any) error { return r.row.Scan(dest...) }
func (r *Row) Err() error             { return r.row.Err() }
