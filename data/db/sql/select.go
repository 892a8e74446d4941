package sql

import (
	"context"
	"strings"

	core "pagekit/data/db"
	"pagekit/data/db/dialect"
)

type selectBuilder struct {
	db      core.IDatabase
	dialect dialect.Dialect

	cols    []string
	table   string
	where   []string
	args    []any
	groupBy []string
	orderBy string
	limit   int
	offset  int
}

func (b *selectBuilder) From(table string) ISelectBuilder {
	b.table = table
	return b
}

func (b *selectBuilder) Where(cond string, args ...any) ISelectBuilder {
	if cond != "" {
		b.where = append(b.where, cond)
		b.args = append(b.args, args...)
	}
	return b
}

// Or 与上一条件组成 (prev OR cond)。
func (b *selectBuilder) Or(cond string, args ...any) ISelectBuilder {
	if cond == "" {
		return b
	}
	if len(b.where) == 0 {
		return b.Where(cond, args...)
	}
	last := b.where[len(b.where)-1]
	b.where[len(b.where)-1] = "(" + last + " OR " + cond + ")"
	b.args = append(b.args, args...)
	return b
}

func (b *selectBuilder) GroupBy(cols ...string) ISelectBuilder {
	b.groupBy = append(b.groupBy, cols...)
	return b
}

func (b *selectBuilder) OrderBy(expr string) ISelectBuilder {
	if expr != "" {
		b.orderBy = expr
	}
	return b
}

func (b *selectBuilder) Limit(n int) ISelectBuilder {
	b.limit = n
	return b
}

func (b *selectBuilder) Offset(n int) ISelectBuilder {
	b.offset = n
	return b
}

func (b *selectBuilder) Build() (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(b.cols, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)

	// 使用局部 args 副本，避免在多次 Build 调用之间污染 builder 状态。
	args := make([]any, 0, len(b.args)+2)
	args = append(args, b.args...)

	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	if len(b.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(b.groupBy, ", "))
	}
	if b.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderBy)
	}
	switch {
	case b.limit > 0:
		sb.WriteString(" LIMIT ?")
		args = append(args, b.limit)
	case b.offset > 0:
		// SQLite/MySQL 不接受单独的 OFFSET
		switch b.dialect.Name() {
		case dialect.NameSQLite:
			sb.WriteString(" LIMIT -1")
		case dialect.NameMySQL:
			sb.WriteString(" LIMIT 18446744073709551615")
		}
	}
	if b.offset > 0 {
		sb.WriteString(" OFFSET ?")
		args = append(args, b.offset)
	}
	return sb.String(), args
}

func (b *selectBuilder) Query(ctx context.Context) (core.IRows, error) {
	q, args := b.Build()
	return b.db.Query(ctx, q, args...)
}

func (b *selectBuilder) QueryRow(ctx context.Context) core.IRow {
	q, args := b.Build()
	return b.db.QueryRow(ctx, q, args...)
}
