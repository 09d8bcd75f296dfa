package storage

import (
	"context"
	"strings"

	"github.com/coderi421/mapper/query"
)

// QueryContext 中间件的上下文
// 执行之前就已经有完整的 SQL 和参数，中间件可以直接读，也可以改
type QueryContext struct {
	// Type 语句类型，SELECT, UPDATE, DELETE, INSERT 等，取 SQL 的第一个单词
	Type string
	// Source 配置里面的名字
	Source string
	Driver string

	Query *query.Query
	// Exec 为 true 的时候 Result 是 bool，否则是 []Row
	Exec bool
}

type QueryResult struct {
	// Result 查询的时候是 []Row，执行的时候是 bool
	Result any
	Err    error
}

type Middleware func(next Handler) Handler

type Handler func(ctx context.Context, qc *QueryContext) *QueryResult

// StatementType 取 SQL 的第一个单词，大写
func StatementType(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(strings.TrimRight(fields[0], ";("))
}

// Chain 按照注册的顺序包装，第一个中间件在最外层
func Chain(root Handler, mdls ...Middleware) Handler {
	for i := len(mdls) - 1; i >= 0; i-- {
		root = mdls[i](root)
	}
	return root
}
