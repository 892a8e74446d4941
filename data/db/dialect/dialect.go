package dialect

import (
	"strconv"
	"strings"

	core "pagekit/data/db"
)

// Name 标准化的数据库方言名称
type Name string

const (
	NameMySQL    Name = "mysql"
	NameSQLite   Name = "sqlite"
	NamePostgres Name = "postgres"
	NameUnknown  Name = ""
)

// Dialect 表示当前数据库的方言能力
//
// 目前只抽象分页查询实际用到的能力：标识符引号与占位符改写。
type Dialect struct {
	name Name
}

// New 根据字符串构造方言（大小写不敏感）
func New(name string) Dialect {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql":
		return Dialect{name: NameMySQL}
	case "sqlite", "sqlite3":
		return Dialect{name: NameSQLite}
	case "postgres", "postgresql", "pgx":
		return Dialect{name: NamePostgres}
	default:
		return Dialect{name: NameUnknown}
	}
}

// FromDatabase 从 IDatabase 实例推断方言，未实现 IDialectNameProvider 时返回 Unknown。
func FromDatabase(db core.IDatabase) Dialect {
	if db == nil {
		return Dialect{name: NameUnknown}
	}
	if p, ok := db.(core.IDialectNameProvider); ok {
		return New(p.GetDialectName())
	}
	return Dialect{name: NameUnknown}
}

// Name 返回标准化方言名
func (d Dialect) Name() Name {
	return d.name
}

// QuoteIdentifier 根据方言对标识符进行转义（如表名/列名）。
//
//   - schema.table、table.column 每一段分别加引号；
//   - MySQL 使用反引号，Postgres/SQLite 使用双引号；
//   - Unknown 方言返回原始字符串。
func (d Dialect) QuoteIdentifier(name string) string {
	if name == "" || d.name == NameUnknown {
		return name
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if d.name == NameMySQL {
			parts[i] = "`" + p + "`"
		} else {
			parts[i] = `"` + p + `"`
		}
	}
	return strings.Join(parts, ".")
}

// Rebind 将通用占位符 ? 转换为方言特定形式。
//
// 仅对 Postgres 做替换（? -> $1, $2...）。实现为简单字符扫描，
// 不区分字符串字面量中的 ?，SQL 中的字面量值应一律走参数绑定。
func (d Dialect) Rebind(query string) string {
	if query == "" || d.name != NamePostgres {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 4)
	argIndex := 1
	for i := 0; i < len(query); i++ {
		ch := query[i]
		if ch == '?' {
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(argIndex))
			argIndex++
			continue
		}
		sb.WriteByte(ch)
	}
	return sb.String()
}
