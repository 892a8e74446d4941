// Package paging 提供与数据源无关的分页引擎。
//
// 调用方构造 PageRequest，连同可选的基础查询与过滤条件交给 Engine，
// 得到包含一页数据和过滤后总条数的 PagedResult。
//
// 排序字段通过 Schema 按名称解析为类型化的比较函数，未注册的字段在求值时报错。
// 数据源实现见子包 memory、memdbsource、ormsource；countcache 为总数缓存装饰器。
package paging
