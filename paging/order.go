package paging

import (
	"fmt"
	"strings"
)

// Direction 排序方向
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// IsValid 空值视为升序，也是合法的。
func (d Direction) IsValid() bool {
	return d == "" || d == Ascending || d == Descending
}

// Desc 是否降序
func (d Direction) Desc() bool { return d == Descending }

func (d Direction) String() string {
	if d == "" {
		return string(Ascending)
	}
	return string(d)
}

// ParseDirection 解析排序方向（大小写不敏感），空字符串为升序。
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return "", invalidRequest("direction", fmt.Sprintf("invalid sort direction %q", s))
	}
}

// OrderSpec 一条排序规则：字段名 + 方向。
//
// 字段名在构造时不校验，求值时通过 Schema 解析，未知字段在那时报错。
type OrderSpec struct {
	Field     string    `json:"field" validate:"required"`
	Direction Direction `json:"direction,omitempty" validate:"omitempty,oneof=asc desc"`
}

// Asc 升序规则
func Asc(field string) OrderSpec { return OrderSpec{Field: field, Direction: Ascending} }

// Desc 降序规则
func Desc(field string) OrderSpec { return OrderSpec{Field: field, Direction: Descending} }

func (o OrderSpec) String() string { return o.Field + ":" + o.Direction.String() }

// ParseOrderSpec 解析 "field[:asc|desc]" 形式的排序规则。
func ParseOrderSpec(s string) (OrderSpec, error) {
	field, dir, _ := strings.Cut(strings.TrimSpace(s), ":")
	field = strings.TrimSpace(field)
	if field == "" {
		return OrderSpec{}, invalidRequest("orderings", fmt.Sprintf("empty field in ordering %q", s))
	}
	d, err := ParseDirection(dir)
	if err != nil {
		return OrderSpec{}, err
	}
	return OrderSpec{Field: field, Direction: d}, nil
}

// ParseOrderSpecs 解析逗号分隔的多条排序规则，例如 "status,score:desc"。
// 空字符串返回 nil。
func ParseOrderSpecs(s string) ([]OrderSpec, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	specs := make([]OrderSpec, 0, len(parts))
	for _, p := range parts {
		spec, err := ParseOrderSpec(p)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
