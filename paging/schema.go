package paging

import (
	"cmp"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Field 一个可排序、可过滤的实体字段。
//
// Name 为对外字段名（排序/过滤引用的名字），Column 为数据源侧的列名，
// Compare 用于内存排序，Value 取出字段值。
type Field[T any] struct {
	Name    string
	Column  string
	Compare func(a, b T) int
	Value   func(T) any

	// compareTo 将实体字段值与过滤条件中的字面量比较
	compareTo func(item T, v any) (int, error)
}

// OrderedField 基于 cmp.Ordered 取值函数构造字段，column 为空时与 name 相同。
func OrderedField[T any, V cmp.Ordered](name, column string, get func(T) V) Field[T] {
	return Field[T]{
		Name:    name,
		Column:  columnOrName(column, name),
		Compare: func(a, b T) int { return cmp.Compare(get(a), get(b)) },
		Value:   func(item T) any { return get(item) },
		compareTo: func(item T, v any) (int, error) {
			lit, exact, err := convertLiteral[V](name, v)
			if err != nil {
				return 0, err
			}
			if !exact {
				// 字面量无法无损转换为字段类型时按 float64 比较，与 SQL 的数值比较一致
				return cmp.Compare(asFloat(get(item)), asFloat(v)), nil
			}
			return cmp.Compare(get(item), lit), nil
		},
	}
}

// TimeField 基于 time.Time 取值函数构造字段。
func TimeField[T any](name, column string, get func(T) time.Time) Field[T] {
	return Field[T]{
		Name:    name,
		Column:  columnOrName(column, name),
		Compare: func(a, b T) int { return get(a).Compare(get(b)) },
		Value:   func(item T) any { return get(item) },
		compareTo: func(item T, v any) (int, error) {
			lit, ok := v.(time.Time)
			if !ok {
				return 0, invalidRequest(name, fmt.Sprintf("field %q expects time.Time, got %T", name, v))
			}
			return get(item).Compare(lit), nil
		},
	}
}

func columnOrName(column, name string) string {
	if column == "" {
		return name
	}
	return column
}

// convertLiteral 将过滤字面量转换为字段的值类型，支持数值类型之间互转。
//
// exact 为 false 表示转换有损（小数截断、溢出回绕等），此时返回的值不可用于比较。
func convertLiteral[V cmp.Ordered](name string, v any) (lit V, exact bool, err error) {
	var zero V
	if typed, ok := v.(V); ok {
		return typed, true, nil
	}
	rv := reflect.ValueOf(v)
	target := reflect.TypeOf(zero)
	if rv.IsValid() && rv.Kind() != reflect.String && target.Kind() != reflect.String && rv.CanConvert(target) {
		conv := rv.Convert(target)
		// 往返不变且符号一致才算无损；有符号与无符号互转时往返可能不变但符号翻转
		if conv.Convert(rv.Type()).Interface() != v || (asFloat(v) < 0) != (asFloat(conv.Interface()) < 0) {
			return zero, false, nil
		}
		return conv.Interface().(V), true, nil
	}
	return zero, false, invalidRequest(name, fmt.Sprintf("field %q expects %T, got %T", name, zero, v))
}

var float64Type = reflect.TypeOf(float64(0))

// asFloat 数值转 float64；调用方保证 v 为数值类型
func asFloat(v any) float64 {
	return reflect.ValueOf(v).Convert(float64Type).Float()
}

// Schema 实体类型的可排序字段注册表，其中一个字段为唯一标识。
//
// 字段名按原样匹配，找不到时再做大小写不敏感匹配。
type Schema[T any] struct {
	id     string
	fields map[string]Field[T]
	folded map[string]string
	names  []string
}

// NewSchema 创建字段注册表，id 为唯一标识字段。
func NewSchema[T any](id Field[T], fields ...Field[T]) (*Schema[T], error) {
	s := &Schema[T]{
		id:     id.Name,
		fields: make(map[string]Field[T], len(fields)+1),
		folded: make(map[string]string, len(fields)+1),
	}
	for _, f := range append([]Field[T]{id}, fields...) {
		if f.Name == "" || f.Compare == nil || f.Value == nil {
			return nil, configurationError(ErrInvalidSchema, fmt.Sprintf("field %q is incomplete", f.Name))
		}
		if _, dup := s.fields[f.Name]; dup {
			return nil, configurationError(ErrInvalidSchema, fmt.Sprintf("duplicate field %q", f.Name))
		}
		if f.Column == "" {
			f.Column = f.Name
		}
		folded := strings.ToLower(f.Name)
		if other, clash := s.folded[folded]; clash {
			return nil, configurationError(ErrInvalidSchema, fmt.Sprintf("field %q differs from %q only in case", f.Name, other))
		}
		s.fields[f.Name] = f
		s.folded[folded] = f.Name
		s.names = append(s.names, f.Name)
	}
	return s, nil
}

// MustSchema 同 NewSchema，出错时 panic，用于包级变量初始化。
func MustSchema[T any](id Field[T], fields ...Field[T]) *Schema[T] {
	s, err := NewSchema(id, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// ID 唯一标识字段
func (s *Schema[T]) ID() Field[T] { return s.fields[s.id] }

// Names 按注册顺序返回字段名
func (s *Schema[T]) Names() []string { return append([]string(nil), s.names...) }

// Resolve 按名称查找字段，未注册时返回 invalid-input 错误，错误信息包含字段名。
func (s *Schema[T]) Resolve(name string) (Field[T], error) {
	if f, ok := s.fields[name]; ok {
		return f, nil
	}
	if canonical, ok := s.folded[strings.ToLower(name)]; ok {
		return s.fields[canonical], nil
	}
	return Field[T]{}, UnknownFieldError(name)
}

// compareValue 比较 item 的字段值与字面量 v。
func (f Field[T]) compareValue(item T, v any) (int, error) {
	if f.compareTo != nil {
		return f.compareTo(item, v)
	}
	// 手工构造的 Field 只支持相等比较，不相等时固定返回 1
	if reflect.DeepEqual(f.Value(item), v) {
		return 0, nil
	}
	return 1, nil
}

// Comparator 将排序计划组合为一个复合比较函数：前面的键相等时才比较后面的键。
func (s *Schema[T]) Comparator(specs []OrderSpec) (func(a, b T) int, error) {
	cmps := make([]func(a, b T) int, 0, len(specs))
	for _, spec := range specs {
		f, err := s.Resolve(spec.Field)
		if err != nil {
			return nil, err
		}
		compare := f.Compare
		if spec.Direction.Desc() {
			compare = func(a, b T) int { return f.Compare(b, a) }
		}
		cmps = append(cmps, compare)
	}
	return func(a, b T) int {
		for _, c := range cmps {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}, nil
}
