package sql

import "strings"

// IsSafeIdentifier 判断标识符是否为“安全的数据库标识符”。
//
// 允许 foo、bar_1 以及带点限定名 schema.table / table.column；
// 每段非空，首字符 [A-Za-z_]，后续字符 [A-Za-z0-9_]。
// 只做 ASCII 校验，足以拒绝空格、分号、引号等注入片段。
func IsSafeIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return false
		}
		for i := 0; i < len(part); i++ {
			ch := part[i]
			letter := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
			if i == 0 && !letter {
				return false
			}
			if !letter && !(ch >= '0' && ch <= '9') {
				return false
			}
		}
	}
	return true
}
