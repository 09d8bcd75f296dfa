package dialect

import (
	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/query"
)

// Action 要渲染的语句类型
type Action string

const (
	ActionInsert   Action = "INSERT"
	ActionUpdate   Action = "UPDATE"
	ActionDelete   Action = "DELETE"
	ActionSelect   Action = "SELECT"
	ActionDescribe Action = "DESCRIBE"
)

// Dialect 把 query.Builder 渲染成某一种 SQL
// 实现都是无状态的，可以在多个 goroutine 里面共用
type Dialect interface {
	Name() string

	Insert(b *query.Builder) (string, error)
	Update(b *query.Builder) (string, error)
	Delete(b *query.Builder) (string, error)
	Select(b *query.Builder) (string, error)
	Describe(b *query.Builder) (string, error)

	// AvailableJoins join 类型，不在里面的 AddJoin 会拒绝
	AvailableJoins() []query.JoinSide
	TranslateOperation(op query.Operation) (string, error)
	// TranslateKey 处理参数名，IN / NOT IN 会渲染成一个列表
	TranslateKey(op query.Operation, keys []string) (string, error)
}

// NewBuilder 创建一个只接受 d 支持的 join 类型的 Builder
func NewBuilder(d Dialect) *query.Builder {
	return query.NewBuilder(query.WithAvailableJoins(d.AvailableJoins()...))
}

// Render 渲染 SQL，同时带上 builder 里面的参数
func Render(d Dialect, action Action, b *query.Builder) (*query.Query, error) {
	var (
		sql string
		err error
	)
	switch action {
	case ActionInsert:
		sql, err = d.Insert(b)
	case ActionUpdate:
		sql, err = d.Update(b)
	case ActionDelete:
		sql, err = d.Delete(b)
	case ActionSelect:
		sql, err = d.Select(b)
	case ActionDescribe:
		sql, err = d.Describe(b)
	default:
		return nil, errs.NewErrUnsupportedOperation(string(action), d.Name())
	}
	if err != nil {
		return nil, err
	}
	return &query.Query{
		SQL:    sql,
		Params: b.Params(),
	}, nil
}
