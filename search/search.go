// Package search 跨表的复杂查询
//
// Search 收集条件、排序、分组和 join，最后由 connector 执行：
// SQL 的 mapper 渲染成一条 SELECT，其他的 mapper 在内存里面过滤
package search

import (
	"context"
	"strings"

	"github.com/coderi421/mapper/dialect"
	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/mapper"
	"github.com/coderi421/mapper/query"
	"github.com/coderi421/mapper/record"
	"github.com/coderi421/mapper/storage"
)

// propertySeparator 分隔表和字段，例如 "chld.name"
const propertySeparator = "."

// SQLMapper 可以直接执行 SQL 的 mapper，例如 *mapper.Database
type SQLMapper interface {
	mapper.Mapper
	Connector() storage.Connector
	Dialect() dialect.Dialect
}

type Option func(s *Search)

// WithInitialRecords 只在这些 record 里面查询，不访问存储
func WithInitialRecords(rs ...*record.Record) Option {
	return func(s *Search) {
		s.initial = append(s.initial, rs...)
	}
}

// WithBuilder 在已有的 builder 上面继续添加条件
func WithBuilder(b *query.Builder) Option {
	return func(s *Search) {
		s.b = b
	}
}

// Search 链式调用，第一个出错的调用之后的调用都会被忽略，
// 错误在 Count 或者 Results 的时候返回
// 不是并发安全的
type Search struct {
	base    mapper.Mapper
	b       *query.Builder
	tree    *tree
	conn    connector
	initial []*record.Record
	err     error
}

// connector 执行 search 的一方
type connector interface {
	newBuilder() *query.Builder
	// joins 是否支持 join
	joins() bool
	count(ctx context.Context, s *Search) (int64, error)
	results(ctx context.Context, s *Search) ([]*record.Record, error)
}

// New 有初始 record 或者 m 不是 SQLMapper 的时候在内存里面查询
func New(m mapper.Mapper, opts ...Option) *Search {
	s := &Search{
		base: m,
		tree: newTree(m),
	}
	for _, opt := range opts {
		opt(s)
	}
	if sm, ok := m.(SQLMapper); ok && len(s.initial) == 0 {
		s.conn = &database{m: sm}
	} else {
		s.conn = &records{m: m, initial: s.initial}
	}
	if s.b == nil {
		s.b = s.conn.newBuilder()
	}
	s.b.SetBaseTable(m.Alias())
	return s
}

// Err 第一次出错的原因
func (s *Search) Err() error {
	return s.err
}

// parseProperty 没有表名的时候表名为空
func parseProperty(property string) (string, string) {
	table, column, ok := strings.Cut(property, propertySeparator)
	if !ok || table == "" || column == "" {
		return "", property
	}
	return table, column
}

// column 把 "table.field" 换成查询里面的表名和列名
func (s *Search) column(property string) (string, string, error) {
	table, field := parseProperty(property)
	if table == "" {
		table = s.base.Alias()
	}
	n, ok := s.tree.get(table)
	if !ok {
		return "", "", errs.NewErrUnknownTable(table)
	}
	col, ok := n.mapper.Model().Relation(field)
	if !ok {
		return "", "", errs.NewErrUnknownColumn(field, table)
	}
	return table, col, nil
}

func (s *Search) condition(property string, op query.Operation, val any) *Search {
	if s.err != nil {
		return s
	}
	table, col, err := s.column(property)
	if err != nil {
		s.err = err
		return s
	}
	s.err = s.b.AddCondition(table, col, op, val)
	return s
}

func (s *Search) Exact(property string, val any) *Search {
	return s.condition(property, query.OpEQ, val)
}

func (s *Search) NotExact(property string, val any) *Search {
	return s.condition(property, query.OpNEQ, val)
}

// From 大于等于 val，inclusive 为 false 的时候大于
func (s *Search) From(property string, val any, inclusive bool) *Search {
	if inclusive {
		return s.condition(property, query.OpGTE, val)
	}
	return s.condition(property, query.OpGT, val)
}

// To 小于等于 val，inclusive 为 false 的时候小于
func (s *Search) To(property string, val any, inclusive bool) *Search {
	if inclusive {
		return s.condition(property, query.OpLTE, val)
	}
	return s.condition(property, query.OpLT, val)
}

func (s *Search) Like(property string, pattern string) *Search {
	return s.condition(property, query.OpLike, pattern)
}

func (s *Search) NotLike(property string, pattern string) *Search {
	return s.condition(property, query.OpNotLike, pattern)
}

// Regexp 表达式的语法取决于存储
func (s *Search) Regexp(property string, pattern string) *Search {
	return s.condition(property, query.OpRegexp, pattern)
}

// Between 两个条件：大于等于 lo，小于等于 hi
func (s *Search) Between(property string, lo, hi any) *Search {
	return s.condition(property, query.OpGTE, lo).condition(property, query.OpLTE, hi)
}

func (s *Search) Null(property string) *Search {
	return s.condition(property, query.OpNull, nil)
}

func (s *Search) NotNull(property string) *Search {
	return s.condition(property, query.OpNotNull, nil)
}

// In vals 必须是切片，空切片什么都不匹配
func (s *Search) In(property string, vals any) *Search {
	return s.condition(property, query.OpIn, vals)
}

func (s *Search) NotIn(property string, vals any) *Search {
	return s.condition(property, query.OpNotIn, vals)
}

// Raw 原生的条件，写法取决于存储，内存里面的查询不支持
func (s *Search) Raw(sql string, params map[string]any) *Search {
	if s.err == nil {
		s.b.AddRawCondition(sql, params)
	}
	return s
}

// UseAnd 所有条件都要满足，默认
func (s *Search) UseAnd() *Search {
	s.b.SetRelations(query.AND)
	return s
}

// UseOr 满足其中一个条件就可以
func (s *Search) UseOr() *Search {
	s.b.SetRelations(query.OR)
	return s
}

func (s *Search) Limit(limit int) *Search {
	s.b.SetLimit(limit)
	return s
}

func (s *Search) Offset(offset int) *Search {
	s.b.SetOffset(offset)
	return s
}

func (s *Search) OrderBy(property string, dir query.Direction) *Search {
	if s.err != nil {
		return s
	}
	table, col, err := s.column(property)
	if err != nil {
		s.err = err
		return s
	}
	s.err = s.b.AddOrderBy(table, col, dir)
	return s
}

func (s *Search) GroupBy(property string) *Search {
	if s.err != nil {
		return s
	}
	table, col, err := s.column(property)
	if err != nil {
		s.err = err
		return s
	}
	s.b.AddGroupBy(table, col)
	return s
}

type childOptions struct {
	parent string
	alias  string
}

type ChildOption func(o *childOptions)

// ChildOf 父记录在查询里面的名字，默认是基础的 record
func ChildOf(parentAlias string) ChildOption {
	return func(o *childOptions) {
		o.parent = parentAlias
	}
}

// As 子表在查询里面使用的名字，默认和外键的名字一样
func As(alias string) ChildOption {
	return func(o *childOptions) {
		o.alias = alias
	}
}

// Child 按照父记录 mapper 上面名为 childAlias 的外键 join 子表
// 结果里面的子记录放到父记录同名的数组字段里面
func (s *Search) Child(childAlias string, side query.JoinSide, opts ...ChildOption) *Search {
	if s.err != nil {
		return s
	}
	o := &childOptions{}
	for _, opt := range opts {
		opt(o)
	}
	s.err = s.child(childAlias, side, o)
	return s
}

// child 所有的检查都通过之后子表才会进入 alias tree
func (s *Search) child(childAlias string, side query.JoinSide, o *childOptions) error {
	if !s.conn.joins() {
		return errs.NewErrJoinUnsupported(s.base.Alias())
	}
	parentAlias := o.parent
	if parentAlias == "" {
		parentAlias = s.base.Alias()
	}
	parent, ok := s.tree.get(parentAlias)
	if !ok {
		return errs.NewErrUnknownParentRecord(parentAlias)
	}
	fk, ok := parent.mapper.ForeignKey(childAlias)
	if !ok {
		return errs.NewErrUnknownChildAlias(childAlias, parentAlias)
	}
	parentCol, ok := parent.mapper.Model().Relation(fk.LocalKey)
	if !ok {
		return errs.NewErrUnknownParentRelation(fk.LocalKey, parentAlias)
	}
	child := fk.Remote()
	if child == nil {
		return errs.NewErrUnknownChildAlias(childAlias, parentAlias)
	}
	childCol, ok := child.Model().Relation(fk.RemoteKey)
	if !ok {
		return errs.NewErrUnknownChildRelation(fk.RemoteKey, childAlias)
	}
	if parent.mapper.Source() != child.Source() {
		return errs.NewErrSourceMismatch(parentAlias, childAlias)
	}
	storeKey := o.alias
	if storeKey == "" {
		storeKey = childAlias
	}
	if err := s.b.AddJoin(childAlias, child.Alias(), childCol, parentAlias, parentCol, side, storeKey); err != nil {
		return err
	}
	s.tree.add(storeKey, childAlias, parent, child)
	return nil
}

// ChildNotExist 父记录没有对应的子记录：LEFT OUTER JOIN 子表，并且 property 为 NULL
// property 一般是子表的字段，例如 "chld.id"
func (s *Search) ChildNotExist(childAlias, property string, opts ...ChildOption) *Search {
	return s.Child(childAlias, query.JoinLeftOuter, opts...).Null(property)
}

// Count 符合条件的数量，不受 Limit 和 Offset 影响
func (s *Search) Count(ctx context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.conn.count(ctx, s)
}

// Results 符合条件的 record，没有排序的时候按照主键升序
func (s *Search) Results(ctx context.Context) ([]*record.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.conn.results(ctx, s)
}
