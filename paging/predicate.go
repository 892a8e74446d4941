package paging

import (
	"fmt"
	"strings"
)

// Op 比较运算符
type Op string

const (
	OpEq   Op = "="
	OpNe   Op = "!="
	OpGt   Op = ">"
	OpGte  Op = ">="
	OpLt   Op = "<"
	OpLte  Op = "<="
	OpLike Op = "LIKE"
	OpIn   Op = "IN"
)

// Predicate 实体上的布尔条件。
//
// 除 Func 外的条件都可以被数据源翻译为查询语言（例如 SQL WHERE），
// 内存数据源直接调用 Match。
type Predicate[T any] interface {
	// Match 判断 item 是否满足条件，字段通过 schema 解析。
	Match(schema *Schema[T], item T) (bool, error)
	// String 返回稳定的文本形式，可用作缓存键。
	String() string
}

// Comparison 字段与字面量的比较，In 时 Values 为候选集合，其余运算符只使用 Values[0]。
type Comparison[T any] struct {
	Field  string
	Op     Op
	Values []any
}

// Eq 字段等于 v
func Eq[T any](field string, v any) Predicate[T] { return Comparison[T]{field, OpEq, []any{v}} }

// Ne 字段不等于 v
func Ne[T any](field string, v any) Predicate[T] { return Comparison[T]{field, OpNe, []any{v}} }

// Gt 字段大于 v
func Gt[T any](field string, v any) Predicate[T] { return Comparison[T]{field, OpGt, []any{v}} }

// Gte 字段大于等于 v
func Gte[T any](field string, v any) Predicate[T] { return Comparison[T]{field, OpGte, []any{v}} }

// Lt 字段小于 v
func Lt[T any](field string, v any) Predicate[T] { return Comparison[T]{field, OpLt, []any{v}} }

// Lte 字段小于等于 v
func Lte[T any](field string, v any) Predicate[T] { return Comparison[T]{field, OpLte, []any{v}} }

// Like 子串匹配（大小写不敏感），与 SQL 的 LIKE '%s%' 对应。
func Like[T any](field, substr string) Predicate[T] {
	return Comparison[T]{field, OpLike, []any{substr}}
}

// In 字段值属于候选集合；空集合不匹配任何记录。
func In[T any](field string, values ...any) Predicate[T] {
	return Comparison[T]{field, OpIn, values}
}

func (c Comparison[T]) Match(schema *Schema[T], item T) (bool, error) {
	f, err := schema.Resolve(c.Field)
	if err != nil {
		return false, err
	}
	switch c.Op {
	case OpIn:
		for _, v := range c.Values {
			r, err := f.compareValue(item, v)
			if err != nil {
				return false, err
			}
			if r == 0 {
				return true, nil
			}
		}
		return false, nil
	case OpLike:
		if len(c.Values) != 1 {
			return false, invalidRequest(c.Field, "LIKE expects exactly one value")
		}
		got := strings.ToLower(fmt.Sprint(f.Value(item)))
		return strings.Contains(got, strings.ToLower(fmt.Sprint(c.Values[0]))), nil
	}

	if len(c.Values) != 1 {
		return false, invalidRequest(c.Field, fmt.Sprintf("%s expects exactly one value", c.Op))
	}
	if f.compareTo == nil && c.Op != OpEq && c.Op != OpNe {
		return false, invalidRequest(c.Field, fmt.Sprintf("field %q only supports equality filters", c.Field))
	}
	r, err := f.compareValue(item, c.Values[0])
	if err != nil {
		return false, err
	}
	switch c.Op {
	case OpEq:
		return r == 0, nil
	case OpNe:
		return r != 0, nil
	case OpGt:
		return r > 0, nil
	case OpGte:
		return r >= 0, nil
	case OpLt:
		return r < 0, nil
	case OpLte:
		return r <= 0, nil
	default:
		return false, invalidRequest(c.Field, fmt.Sprintf("unsupported operator %q", c.Op))
	}
}

func (c Comparison[T]) String() string {
	if c.Op == OpIn {
		parts := make([]string, len(c.Values))
		for i, v := range c.Values {
			parts[i] = fmt.Sprintf("%#v", v)
		}
		return fmt.Sprintf("%s IN (%s)", c.Field, strings.Join(parts, ", "))
	}
	if len(c.Values) == 0 {
		return fmt.Sprintf("%s %s ?", c.Field, c.Op)
	}
	return fmt.Sprintf("%s %s %#v", c.Field, c.Op, c.Values[0])
}

// LogicalOp 逻辑组合方式
type LogicalOp string

const (
	LogicalAnd LogicalOp = "AND"
	LogicalOr  LogicalOp = "OR"
)

// Logical 多个条件的 AND/OR 组合；空 AND 恒真，空 OR 恒假。
type Logical[T any] struct {
	Op    LogicalOp
	Terms []Predicate[T]
}

// And 所有条件同时成立，nil 条件被忽略
func And[T any](terms ...Predicate[T]) Predicate[T] { return Logical[T]{LogicalAnd, compact(terms)} }

// Or 任一条件成立，nil 条件被忽略
func Or[T any](terms ...Predicate[T]) Predicate[T] { return Logical[T]{LogicalOr, compact(terms)} }

func compact[T any](terms []Predicate[T]) []Predicate[T] {
	out := make([]Predicate[T], 0, len(terms))
	for _, t := range terms {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

func (l Logical[T]) Match(schema *Schema[T], item T) (bool, error) {
	for _, t := range l.Terms {
		ok, err := t.Match(schema, item)
		if err != nil {
			return false, err
		}
		if l.Op == LogicalOr && ok {
			return true, nil
		}
		if l.Op == LogicalAnd && !ok {
			return false, nil
		}
	}
	return l.Op == LogicalAnd, nil
}

func (l Logical[T]) String() string {
	if len(l.Terms) == 0 {
		if l.Op == LogicalAnd {
			return "TRUE"
		}
		return "FALSE"
	}
	parts := make([]string, len(l.Terms))
	for i, t := range l.Terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " "+string(l.Op)+" ") + ")"
}

// Negation 条件取反
type Negation[T any] struct {
	Term Predicate[T]
}

// Not 条件取反；nil 视为恒真，取反后恒假（空 OR）。
func Not[T any](p Predicate[T]) Predicate[T] {
	if p == nil {
		return Or[T]()
	}
	return Negation[T]{p}
}

func (n Negation[T]) Match(schema *Schema[T], item T) (bool, error) {
	ok, err := n.Term.Match(schema, item)
	return !ok && err == nil, err
}

func (n Negation[T]) String() string { return "NOT " + n.Term.String() }

// FuncPredicate 任意 Go 函数条件，只能在内存中求值。
type FuncPredicate[T any] struct {
	Name string
	Fn   func(T) bool
}

// Func 构造函数条件，name 仅用于 String。
func Func[T any](name string, fn func(T) bool) Predicate[T] {
	return FuncPredicate[T]{Name: name, Fn: fn}
}

func (p FuncPredicate[T]) Match(_ *Schema[T], item T) (bool, error) { return p.Fn(item), nil }

func (p FuncPredicate[T]) String() string { return "func:" + p.Name }

// Translatable 判断条件树中是否不含 Func，nil 视为可翻译。
func Translatable[T any](p Predicate[T]) bool {
	switch v := p.(type) {
	case nil:
		return true
	case FuncPredicate[T]:
		return false
	case Logical[T]:
		for _, t := range v.Terms {
			if !Translatable(t) {
				return false
			}
		}
		return true
	case Negation[T]:
		return Translatable(v.Term)
	default:
		return true
	}
}
