package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	core "pagekit/data/db"
	"pagekit/data/db/dialect"
)

type insertBuilder struct {
	db      core.IDatabase
	dialect dialect.Dialect

	table   string
	columns []string
	rows    [][]any
}

func (b *insertBuilder) Columns(cols ...string) IInsertBuilder {
	b.columns = cols
	return b
}

// Values 追加一行；多次调用生成批量 INSERT。
func (b *insertBuilder) Values(vals ...any) IInsertBuilder {
	if len(vals) > 0 {
		b.rows = append(b.rows, vals)
	}
	return b
}

func (b *insertBuilder) Build() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert into %s: no columns", b.table)
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert into %s: no rows", b.table)
	}
	if !IsSafeIdentifier(b.table) {
		return "", nil, fmt.Errorf("insert: unsafe table name %q", b.table)
	}

	quoted := make([]string, len(b.columns))
	for i, col := range b.columns {
		if !IsSafeIdentifier(col) {
			return "", nil, fmt.Errorf("insert into %s: unsafe column name %q", b.table, col)
		}
		quoted[i] = b.dialect.QuoteIdentifier(col)
	}

	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(b.columns)), ", ") + ")"
	values := make([]string, 0, len(b.rows))
	args := make([]any, 0, len(b.rows)*len(b.columns))
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert into %s: row %d has %d values, want %d", b.table, i, len(row), len(b.columns))
		}
		values = append(values, placeholders)
		args = append(args, row...)
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		b.dialect.QuoteIdentifier(b.table), strings.Join(quoted, ", "), strings.Join(values, ", "))
	return q, args, nil
}

func (b *insertBuilder) Exec(ctx context.Context) (sql.Result, error) {
	q, args, err := b.Build()
	if err != nil {
		return nil, err
	}
	return b.db.Exec(ctx, q, args...)
}
