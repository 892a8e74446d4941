package ormsource

import (
	"fmt"
	"strings"

	dbsql "pagekit/data/db/sql"
	"pagekit/data/orm"
	"pagekit/errors"
	"pagekit/paging"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// columnFor 将字段名解析为列名，列名必须是安全标识符且（若模型声明了字段）属于模型。
func columnFor[T any](schema *paging.Schema[T], meta *orm.ModelMeta, name string) (string, error) {
	f, err := schema.Resolve(name)
	if err != nil {
		return "", err
	}
	if !dbsql.IsSafeIdentifier(f.Column) {
		return "", paging.UnknownFieldError(name)
	}
	if meta != nil && len(meta.Fields) > 0 {
		if _, ok := meta.Column(f.Column); !ok {
			return "", paging.UnknownFieldError(name)
		}
	}
	return f.Column, nil
}

// translate 将条件树翻译为 SQL 片段，占位符为 ?。
func translate[T any](schema *paging.Schema[T], meta *orm.ModelMeta, p paging.Predicate[T]) (string, []any, error) {
	switch v := p.(type) {
	case paging.Comparison[T]:
		return translateComparison(schema, meta, v)
	case paging.Logical[T]:
		if len(v.Terms) == 0 {
			if v.Op == paging.LogicalAnd {
				return "1 = 1", nil, nil
			}
			return "1 = 0", nil, nil
		}
		parts := make([]string, 0, len(v.Terms))
		var args []any
		for _, term := range v.Terms {
			expr, termArgs, err := translate(schema, meta, term)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, expr)
			args = append(args, termArgs...)
		}
		return "(" + strings.Join(parts, " "+string(v.Op)+" ") + ")", args, nil
	case paging.Negation[T]:
		expr, args, err := translate(schema, meta, v.Term)
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + expr + ")", args, nil
	default:
		return "", nil, errors.NewErrorWithCause(errors.ErrCodeInvalidInput,
			fmt.Sprintf("predicate %s cannot be translated to SQL", p), paging.ErrInvalidRequest)
	}
}

func translateComparison[T any](schema *paging.Schema[T], meta *orm.ModelMeta, c paging.Comparison[T]) (string, []any, error) {
	col, err := columnFor(schema, meta, c.Field)
	if err != nil {
		return "", nil, err
	}
	switch c.Op {
	case paging.OpIn:
		if len(c.Values) == 0 {
			return "1 = 0", nil, nil
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(c.Values)), ", ")
		return col + " IN (" + placeholders + ")", append([]any(nil), c.Values...), nil
	case paging.OpLike:
		if len(c.Values) != 1 {
			return "", nil, invalidValues(c)
		}
		pattern := "%" + likeEscaper.Replace(fmt.Sprint(c.Values[0])) + "%"
		return col + ` LIKE ? ESCAPE '\'`, []any{pattern}, nil
	case paging.OpEq, paging.OpNe, paging.OpGt, paging.OpGte, paging.OpLt, paging.OpLte:
		if len(c.Values) != 1 {
			return "", nil, invalidValues(c)
		}
		if c.Values[0] == nil {
			switch c.Op {
			case paging.OpEq:
				return col + " IS NULL", nil, nil
			case paging.OpNe:
				return col + " IS NOT NULL", nil, nil
			}
		}
		op := string(c.Op)
		if c.Op == paging.OpNe {
			op = "<>"
		}
		return col + " " + op + " ?", []any{c.Values[0]}, nil
	default:
		return "", nil, errors.NewErrorWithCause(errors.ErrCodeInvalidInput,
			fmt.Sprintf("unsupported operator %q", c.Op), paging.ErrInvalidRequest).
			WithContext("field", c.Field)
	}
}

func invalidValues[T any](c paging.Comparison[T]) error {
	return errors.NewErrorWithCause(errors.ErrCodeInvalidInput,
		fmt.Sprintf("%s %s expects exactly one value, got %d", c.Field, c.Op, len(c.Values)), paging.ErrInvalidRequest).
		WithContext("field", c.Field)
}
