package orm

import (
	"context"

	"pagekit/data/db"
)

// IOrm 表示 ORM 适配器入口。
// 仅定义接口，具体实现以适配器形式注入（见 data/orm/basic）。
type IOrm interface {
	// Capabilities 返回适配器支持的能力集合。
	Capabilities() Capabilities
	// Model 返回指定模型的操作入口。
	Model(meta *ModelMeta) (IModel, error)
	// Database 返回适配器绑定的通用数据库（可为 nil）。
	Database() db.IDatabase
}

// IModel 封装模型级别的读取与写入操作。
//
// 分页引擎只依赖 Count/Find；First/Create 服务于仓储与命令行的种子数据。
type IModel interface {
	Meta() *ModelMeta
	Capabilities() Capabilities

	First(ctx context.Context, dest any, opts ...QueryOption) error
	Find(ctx context.Context, dest any, opts ...QueryOption) error
	Count(ctx context.Context, opts ...QueryOption) (int64, error)

	Create(ctx context.Context, entities ...any) error
}
