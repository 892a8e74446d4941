package basic

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	dbcore "pagekit/data/db"
	dbsql "pagekit/data/db/sql"
	"pagekit/data/orm"
)

// Orm 是基于 data/db + data/db/sql 的轻量 IOrm 实现。
//
// 直接在 DB 抽象之上工作，只覆盖分页读取（Count/Find/First）与批量插入。
type Orm struct {
	db   dbcore.IDatabase
	sql  dbsql.ISql
	caps orm.Capabilities

	mu        sync.RWMutex
	structMap map[reflect.Type]*structMeta
}

// New 创建一个基于指定 IDatabase 的 Orm 适配器。
func New(db dbcore.IDatabase) *Orm {
	return &Orm{
		db:  db,
		sql: dbsql.New(db),
		caps: orm.NewCapabilities(
			orm.CapabilityQuery,
			orm.CapabilityCount,
			orm.CapabilityPagination,
			orm.CapabilityBatchWrite,
		),
		structMap: make(map[reflect.Type]*structMeta),
	}
}

// Capabilities 返回适配器支持的能力。
func (o *Orm) Capabilities() orm.Capabilities { return o.caps }

// Database 返回底层数据库抽象。
func (o *Orm) Database() dbcore.IDatabase { return o.db }

// Model 返回模型级操作入口。
//
// 表名优先取 meta.Table，其次取模型的 TableName()；
// meta.Fields 为空且 meta.Model 为结构体时，字段元数据由反射补齐。
func (o *Orm) Model(meta *orm.ModelMeta) (orm.IModel, error) {
	if meta == nil {
		return nil, fmt.Errorf("basic.Orm: model meta is nil")
	}
	resolved := *meta
	if resolved.Table == "" {
		if tn, ok := tryGetTableName(meta.Model); ok {
			resolved.Table = tn
		}
	}
	if !dbsql.IsSafeIdentifier(resolved.Table) {
		return nil, fmt.Errorf("basic.Orm: invalid table name %q", resolved.Table)
	}
	if len(resolved.Fields) == 0 && meta.Model != nil {
		if sm := o.structMetaForValue(meta.Model); sm != nil {
			resolved.Fields = sm.fieldMetas()
		}
	}
	return &model{orm: o, meta: &resolved}, nil
}

type model struct {
	orm  *Orm
	meta *orm.ModelMeta
}

func (m *model) Meta() *orm.ModelMeta           { return m.meta }
func (m *model) Capabilities() orm.Capabilities { return m.orm.caps }

func (m *model) selectBuilder(qo orm.QueryOptions) dbsql.ISelectBuilder {
	columns := qo.Select
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	builder := m.orm.sql.Select(columns...).From(m.meta.Table)
	for _, w := range qo.Where {
		builder = builder.Where(w.Expr, w.Args...)
	}
	if expr := buildOrderByExpr(qo.OrderBy); expr != "" {
		builder = builder.OrderBy(expr)
	}
	return builder.Limit(qo.Limit).Offset(qo.Offset)
}

// First 查询单条记录，无结果时返回 orm.ErrNotFound。
func (m *model) First(ctx context.Context, dest any, opts ...orm.QueryOption) error {
	qo := orm.CollectQueryOptions(opts...)
	if qo.Limit <= 0 {
		qo.Limit = 1
	}
	rows, err := m.selectBuilder(qo).Query(ctx)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return orm.ErrNotFound
	}
	return scanRowsIntoDest(rows, dest, m.orm)
}

// Find 查询多条记录，dest 必须为 *[]T 或 *[]*T。
func (m *model) Find(ctx context.Context, dest any, opts ...orm.QueryOption) error {
	rows, err := m.selectBuilder(orm.CollectQueryOptions(opts...)).Query(ctx)
	if err != nil {
		return err
	}
	defer rows.Close()
	return scanRowsIntoDest(rows, dest, m.orm)
}

// Count 统计数量，忽略 Select/OrderBy/Limit/Offset。
func (m *model) Count(ctx context.Context, opts ...orm.QueryOption) (int64, error) {
	qo := orm.CollectQueryOptions(opts...)
	builder := m.orm.sql.Select("COUNT(*)").From(m.meta.Table)
	for _, w := range qo.Where {
		builder = builder.Where(w.Expr, w.Args...)
	}
	var count int64
	if err := builder.QueryRow(ctx).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Create 插入记录（支持批量，以第一个实体的类型决定列）。
func (m *model) Create(ctx context.Context, entities ...any) error {
	if len(entities) == 0 {
		return nil
	}
	sm := m.orm.structMetaForValue(entities[0])
	if sm == nil {
		return fmt.Errorf("basic.Model.Create: unsupported entity type %T", entities[0])
	}
	cols := make([]string, len(sm.fields))
	for i, f := range sm.fields {
		cols[i] = f.Column
	}
	if len(cols) == 0 {
		return fmt.Errorf("basic.Model.Create: no columns for %T", entities[0])
	}

	builder := m.orm.sql.InsertInto(m.meta.Table).Columns(cols...)
	for _, e := range entities {
		val := reflect.Indirect(reflect.ValueOf(e))
		if !val.IsValid() || val.Type() != sm.typ {
			return fmt.Errorf("basic.Model.Create: entity must be %s, got %T", sm.typ, e)
		}
		row := make([]any, len(sm.fields))
		for i, fi := range sm.fields {
			if fv := fieldByIndexSafe(val, fi.Index); fv.IsValid() {
				row[i] = fv.Interface()
			}
		}
		builder = builder.Values(row...)
	}
	_, err := builder.Exec(ctx)
	return err
}

// ------------------------------------------------------------------------
// 结构体元信息与扫描工具
// ------------------------------------------------------------------------

type fieldInfo struct {
	Name       string
	Column     string
	Index      []int
	PrimaryKey bool
}

type structMeta struct {
	typ          reflect.Type
	fields       []fieldInfo
	columnToInfo map[string]fieldInfo
}

func (sm *structMeta) fieldMetas() []orm.FieldMeta {
	out := make([]orm.FieldMeta, len(sm.fields))
	for i, f := range sm.fields {
		out[i] = orm.FieldMeta{Name: f.Name, Column: f.Column, PrimaryKey: f.PrimaryKey}
	}
	return out
}

// structMetaForValue 构建或获取指定值类型的 structMeta。
func (o *Orm) structMetaForValue(v any) *structMeta {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	o.mu.RLock()
	sm, ok := o.structMap[t]
	o.mu.RUnlock()
	if ok {
		return sm
	}

	sm = buildStructMeta(t)
	o.mu.Lock()
	o.structMap[t] = sm
	o.mu.Unlock()
	return sm
}

func buildStructMeta(t reflect.Type) *structMeta {
	sm := &structMeta{
		typ:          t,
		columnToInfo: make(map[string]fieldInfo),
	}

	var walk func(reflect.Type, []int)
	walk = func(cur reflect.Type, prefix []int) {
		for i := 0; i < cur.NumField(); i++ {
			f := cur.Field(i)
			if f.PkgPath != "" {
				continue
			}
			index := append(append([]int(nil), prefix...), i)

			if f.Anonymous && f.Type.Kind() == reflect.Struct && !isTimeType(f.Type) {
				walk(f.Type, index)
				continue
			}
			if !isScalarDBField(f.Type) {
				continue
			}

			col, pk, skip := parseColumnTag(f)
			if skip {
				continue
			}
			if col == "" {
				col = toSnakeCase(f.Name)
			}
			info := fieldInfo{Name: f.Name, Column: col, Index: index, PrimaryKey: pk || col == "id"}
			sm.fields = append(sm.fields, info)
			// 同名列以最内层为准
			sm.columnToInfo[col] = info
		}
	}

	walk(t, nil)
	return sm
}

func isScalarDBField(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if isTimeType(t) {
		return true
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func isTimeType(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath() == "time" && t.Name() == "Time"
}

// parseColumnTag 依次读取 gorm、db、json 标签；`db:"-"` 表示跳过该字段。
func parseColumnTag(f reflect.StructField) (column string, primaryKey, skip bool) {
	for _, part := range strings.Split(f.Tag.Get("gorm"), ";") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "column:"):
			column = strings.TrimPrefix(part, "column:")
		case strings.EqualFold(part, "primaryKey"), strings.EqualFold(part, "primary_key"):
			primaryKey = true
		}
	}
	if column != "" {
		return column, primaryKey, false
	}
	if dbTag, ok := f.Tag.Lookup("db"); ok {
		if dbTag == "-" {
			return "", false, true
		}
		return strings.Split(dbTag, ",")[0], primaryKey, false
	}
	if jsonTag := f.Tag.Get("json"); jsonTag != "" && jsonTag != "-" {
		column = strings.Split(jsonTag, ",")[0]
	}
	return column, primaryKey, false
}

func toSnakeCase(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// scanRowsIntoDest 将 rows 扫描到 dest 中。
// dest 为 *T 时扫描当前行（调用方已 Next），为 *[]T / *[]*T 时扫描全部剩余行。
func scanRowsIntoDest(rows dbcore.IRows, dest any, o *Orm) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("basic.scanRowsIntoDest: dest must be non-nil pointer")
	}

	elem := rv.Elem()
	switch elem.Kind() {
	case reflect.Slice:
		elemType := elem.Type().Elem()
		isPtr := elemType.Kind() == reflect.Ptr
		if isPtr {
			elemType = elemType.Elem()
		}
		for rows.Next() {
			item := reflect.New(elemType)
			if err := scanOneRow(rows, item.Elem(), o); err != nil {
				return err
			}
			if isPtr {
				elem.Set(reflect.Append(elem, item))
			} else {
				elem.Set(reflect.Append(elem, item.Elem()))
			}
		}
		return rows.Err()
	case reflect.Struct:
		return scanOneRow(rows, elem, o)
	default:
		return fmt.Errorf("basic.scanRowsIntoDest: unsupported dest element kind %s", elem.Kind())
	}
}

func scanOneRow(rows dbcore.IRows, v reflect.Value, o *Orm) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	sm := o.structMetaForValue(v.Addr().Interface())

	destPtrs := make([]any, len(cols))
	for i, col := range cols {
		if sm != nil {
			if fi, ok := sm.columnToInfo[col]; ok {
				if fv := fieldByIndexSafe(v, fi.Index); fv.IsValid() && fv.CanSet() {
					destPtrs[i] = fv.Addr().Interface()
					continue
				}
			}
		}
		var discard any
		destPtrs[i] = &discard
	}
	return rows.Scan(destPtrs...)
}

func fieldByIndexSafe(v reflect.Value, index []int) reflect.Value {
	for _, i := range index {
		if v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return reflect.Value{}
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct || i < 0 || i >= v.NumField() {
			return reflect.Value{}
		}
		v = v.Field(i)
	}
	return v
}

func buildOrderByExpr(orders []orm.OrderBy) string {
	parts := make([]string, 0, len(orders))
	for _, o := range orders {
		if o.Column == "" {
			continue
		}
		if o.Desc {
			parts = append(parts, o.Column+" DESC")
		} else {
			parts = append(parts, o.Column+" ASC")
		}
	}
	return strings.Join(parts, ", ")
}

// tryGetTableName 尝试从模型实例上调用 TableName()。
func tryGetTableName(model any) (string, bool) {
	if model == nil {
		return "", false
	}
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if m, ok := reflect.New(t).Interface().(interface{ TableName() string }); ok {
		return m.TableName(), true
	}
	if m, ok := reflect.New(t).Elem().Interface().(interface{ TableName() string }); ok {
		return m.TableName(), true
	}
	return "", false
}
