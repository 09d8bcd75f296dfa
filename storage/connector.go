package storage

import "context"

// Row 一行结果，key 是列名或者别名
type Row map[string]any

// Connector SQL 一类存储的执行器，渲染好的 SQL 和命名参数交给它执行
// 连接在第一次使用的时候才建立
type Connector interface {
	Query(ctx context.Context, sql string, params map[string]any) ([]Row, error)
	// Exec 返回是否影响了数据
	Exec(ctx context.Context, sql string, params map[string]any) (bool, error)

	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	// LastInsertID 第二个返回值表示 driver 是否支持
	LastInsertID() (string, bool)
	RowCount() (int64, bool)

	IsConnected() bool
	// Reconnect 丢弃当前的连接，下一次使用的时候重新建立
	Reconnect() error
	Close() error
}

// Action 写注册表一类存储的操作
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// RegistryValue 注册表里面的一个值
type RegistryValue struct {
	Name    string
	Type    uint32
	Content any
}

// Registry 层级结构的存储，没有 SQL，按照 part + key 访问
type Registry interface {
	// Values key 下面的所有值
	Values(ctx context.Context, part, key string) ([]RegistryValue, error)
	// Subtree key 下面的子 key 的名字
	Subtree(ctx context.Context, part, key string) ([]string, error)
	Exec(ctx context.Context, action Action, part, key string, value RegistryValue) (bool, error)
}
