package orm

// FieldMeta 描述一个可查询字段：Go 字段名与数据库列名。
type FieldMeta struct {
	Name       string
	Column     string
	PrimaryKey bool
}

// ModelMeta 描述模型级别元信息。
//
// Table 为空时，适配器会尝试调用模型的 TableName()。
// SoftDeleteColumn 非空时，表示该列为 NULL 的记录才视为有效。
type ModelMeta struct {
	Model            any
	Table            string
	Fields           []FieldMeta
	SoftDeleteColumn string
}

// Column 按字段名或列名查找列，找不到时返回 false。
func (m *ModelMeta) Column(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, f := range m.Fields {
		if f.Name == name || f.Column == name {
			return f.Column, true
		}
	}
	return "", false
}

// PrimaryKey 返回主键列名，未声明时返回 "id"。
func (m *ModelMeta) PrimaryKey() string {
	if m != nil {
		for _, f := range m.Fields {
			if f.PrimaryKey {
				return f.Column
			}
		}
	}
	return "id"
}
