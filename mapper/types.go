package mapper

import (
	"context"

	"github.com/coderi421/mapper/model"
	"github.com/coderi421/mapper/record"
)

// Mapper 把 record 和某一种存储对应起来
// 所有的实现共用同一套 save / load / delete 的流程，差别只在怎么访问存储
type Mapper interface {
	record.Mapper

	Model() *model.Model
	// Source 配置里面的 source，只有同一个 source 的 mapper 才能 join
	Source() string
	// Alias 在查询里面使用的表名
	Alias() string
	PrimaryKeys() []string
	// ForeignKeys 按照注册的顺序
	ForeignKeys() []ForeignKey
	ForeignKey(alias string) (ForeignKey, bool)

	// NewRecord 返回绑定了这个 mapper 的空 record
	NewRecord() (*record.Record, error)

	Insert(ctx context.Context, r *record.Record) (bool, error)
	Update(ctx context.Context, r *record.Record) (bool, error)
	// Count 按照 r 里面有值的字段计数
	Count(ctx context.Context, r *record.Record) (int64, error)
	// LoadMultiple 按照 r 里面有值的字段查询，每一行一个新的 record
	LoadMultiple(ctx context.Context, r *record.Record) ([]*record.Record, error)
}

// Op 可以挂 hook 的操作
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpLoad   Op = "load"
	OpDelete Op = "delete"
	OpSave   Op = "save"
)

// Hook before 返回 false 的时候不再访问存储，after 返回 false 的时候整个操作算作失败
// 两种情况对调用者来说都是 false, nil
type Hook func(ctx context.Context, r *record.Record) (bool, error)

// ForeignKey 从当前 mapper 的 LocalKey 指向 remote 的 RemoteKey
type ForeignKey struct {
	Alias     string
	LocalKey  string
	RemoteKey string
	remote    func() Mapper
}

// Remote 第一次用的时候才创建，两个 mapper 可以互相引用
func (f ForeignKey) Remote() Mapper {
	if f.remote == nil {
		return nil
	}
	return f.remote()
}

// store 每一种存储自己实现的部分
type store interface {
	insertRecord(ctx context.Context, r *record.Record) (bool, error)
	updateRecord(ctx context.Context, r *record.Record) (bool, error)
	loadRecord(ctx context.Context, r *record.Record) (bool, error)
	deleteRecord(ctx context.Context, r *record.Record) (bool, error)
	count(ctx context.Context, r *record.Record) (int64, error)
	loadMultiple(ctx context.Context, r *record.Record) ([]*record.Record, error)
}
