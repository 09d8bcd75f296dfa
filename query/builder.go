package query

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/gotomicro/ekit/slice"
)

// BuilderOption 和 DBOption 一样的函数选项
type BuilderOption func(b *Builder)

// Builder 收集查询的各个部分，本身不理解 SQL，交给 dialect 去渲染
// 不是并发安全的，不要在多个 goroutine 之间共享
type Builder struct {
	id *UniqueID

	baseTable  string
	columns    []Column
	conditions []Condition
	having     []Condition
	joins      []Join
	ordering   []Order
	grouping   []Group
	properties []Property
	params     map[string]any
	relation   Relation
	limit      *int
	offset     *int

	// joinSides 为 nil 的时候不检查 join 类型
	joinSides []JoinSide
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		id:       &UniqueID{},
		params:   map[string]any{},
		relation: AND,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithAvailableJoins 限制 AddJoin 可以使用的 join 类型，一般传入 dialect 的 AvailableJoins
func WithAvailableJoins(sides ...JoinSide) BuilderOption {
	return func(b *Builder) {
		b.joinSides = append(make([]JoinSide, 0, len(sides)), sides...)
	}
}

func (b *Builder) SetBaseTable(table string) *Builder {
	b.baseTable = table
	return b
}

func (b *Builder) BaseTable() string {
	return b.baseTable
}

// AddColumn adds a column to the projection. An empty aggregate means a
// plain column.
func (b *Builder) AddColumn(table, column, alias string, agg Aggregate) error {
	if !agg.Valid() {
		return errs.NewErrUnknownAggregate(string(agg))
	}
	b.columns = append(b.columns, Column{
		Table:     table,
		Name:      column,
		Alias:     alias,
		Aggregate: agg,
	})
	return nil
}

// AddCondition 注册一个条件。除了 IS NULL / IS NOT NULL 之外都会分配新的参数名，
// 值存到 Params 里面；IN / NOT IN 的每个元素各自一个参数名
func (b *Builder) AddCondition(table, column string, op Operation, val any) error {
	c, err := b.condition(table, column, op, val)
	if err != nil {
		return err
	}
	b.conditions = append(b.conditions, c)
	return nil
}

// AddHavingCondition 和 AddCondition 一样，只是放到 HAVING 里面
func (b *Builder) AddHavingCondition(table, column string, op Operation, val any) error {
	c, err := b.condition(table, column, op, val)
	if err != nil {
		return err
	}
	b.having = append(b.having, c)
	return nil
}

func (b *Builder) condition(table, column string, op Operation, val any) (Condition, error) {
	if !op.Valid() {
		return Condition{}, errs.NewErrUnknownOperation(string(op))
	}
	c := Condition{
		Table:     table,
		Column:    column,
		Operation: op,
	}
	switch {
	case op.Nullary():
	case op.List():
		rv := reflect.ValueOf(val)
		if val == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return Condition{}, errs.NewErrInvalidListValue(string(op), val)
		}
		c.Keys = make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			c.Keys = append(c.Keys, b.addParam(column, rv.Index(i).Interface()))
		}
	default:
		c.Keys = []string{b.addParam(column, val)}
	}
	return c, nil
}

// AddRawCondition 原生的 sql 片段，params 里面的 key 需要和片段里面的一致
func (b *Builder) AddRawCondition(raw string, params map[string]any) {
	for k, v := range params {
		if !strings.HasPrefix(k, ":") {
			k = ":" + k
		}
		b.params[k] = v
	}
	b.conditions = append(b.conditions, Condition{Raw: raw})
}

// AddProperty registers a value written by INSERT or UPDATE.
func (b *Builder) AddProperty(table, column string, val any) {
	b.properties = append(b.properties, Property{
		Table:  table,
		Column: column,
		Key:    b.addParam(column, val),
	})
}

// AddJoin 加入一个 join，如果限制了可用的 join 类型，不在其中的会返回错误
func (b *Builder) AddJoin(alias, newTable, newColumn, knownTable, knownColumn string, side JoinSide, tableAlias string) error {
	if b.joinSides != nil && !slice.Contains[JoinSide](b.joinSides, side) {
		return errs.NewErrUnavailableJoin(string(side))
	}
	b.joins = append(b.joins, Join{
		Alias:       alias,
		NewTable:    newTable,
		NewColumn:   newColumn,
		KnownTable:  knownTable,
		KnownColumn: knownColumn,
		Side:        side,
		TableAlias:  tableAlias,
	})
	return nil
}

func (b *Builder) AddOrderBy(table, column string, dir Direction) error {
	if !dir.Valid() {
		return errs.NewErrUnknownDirection(string(dir))
	}
	b.ordering = append(b.ordering, Order{
		Table:     table,
		Column:    column,
		Direction: dir,
	})
	return nil
}

func (b *Builder) AddGroupBy(table, column string) {
	b.grouping = append(b.grouping, Group{
		Table:  table,
		Column: column,
	})
}

// SetRelations 设置条件之间的连接词，不认识的值直接忽略
func (b *Builder) SetRelations(rel Relation) *Builder {
	if rel.Valid() {
		b.relation = rel
	}
	return b
}

func (b *Builder) SetLimit(limit int) *Builder {
	b.limit = &limit
	return b
}

func (b *Builder) SetOffset(offset int) *Builder {
	b.offset = &offset
	return b
}

// SetLimits 同时设置 offset 和 limit
func (b *Builder) SetLimits(offset, limit int) *Builder {
	return b.SetOffset(offset).SetLimit(limit)
}

func (b *Builder) ClearLimits() *Builder {
	b.limit = nil
	b.offset = nil
	return b
}

// Clear 清空所有部分，但是不重置参数计数器
func (b *Builder) Clear() *Builder {
	b.baseTable = ""
	b.columns = nil
	b.conditions = nil
	b.having = nil
	b.joins = nil
	b.ordering = nil
	b.grouping = nil
	b.properties = nil
	b.params = map[string]any{}
	b.relation = AND
	b.limit = nil
	b.offset = nil
	return b
}

func (b *Builder) ClearColumns() *Builder {
	b.columns = nil
	return b
}

func (b *Builder) ClearOrdering() *Builder {
	b.ordering = nil
	return b
}

// ResetCounter 只给测试使用
func (b *Builder) ResetCounter() {
	b.id.Clear()
}

// Clone 复制所有的部分，计数器是共享的，
// 所以之后在任何一个上面加的参数都不会和另外一个冲突
func (b *Builder) Clone() *Builder {
	res := &Builder{
		id:         b.id,
		baseTable:  b.baseTable,
		columns:    append([]Column(nil), b.columns...),
		conditions: cloneConditions(b.conditions),
		having:     cloneConditions(b.having),
		joins:      append([]Join(nil), b.joins...),
		ordering:   append([]Order(nil), b.ordering...),
		grouping:   append([]Group(nil), b.grouping...),
		properties: append([]Property(nil), b.properties...),
		params:     make(map[string]any, len(b.params)),
		relation:   b.relation,
		joinSides:  b.joinSides,
	}
	for k, v := range b.params {
		res.params[k] = v
	}
	if b.limit != nil {
		res.SetLimit(*b.limit)
	}
	if b.offset != nil {
		res.SetOffset(*b.offset)
	}
	return res
}

func cloneConditions(cs []Condition) []Condition {
	if cs == nil {
		return nil
	}
	res := make([]Condition, len(cs))
	for i, c := range cs {
		c.Keys = append([]string(nil), c.Keys...)
		res[i] = c
	}
	return res
}

func (b *Builder) Columns() []Column {
	return b.columns
}

func (b *Builder) Conditions() []Condition {
	return b.conditions
}

func (b *Builder) Having() []Condition {
	return b.having
}

func (b *Builder) Joins() []Join {
	return b.joins
}

func (b *Builder) Ordering() []Order {
	return b.ordering
}

func (b *Builder) Grouping() []Group {
	return b.grouping
}

func (b *Builder) Properties() []Property {
	return b.properties
}

func (b *Builder) Relation() Relation {
	return b.relation
}

// Limit 第二个返回值表示是否设置过
func (b *Builder) Limit() (int, bool) {
	if b.limit == nil {
		return 0, false
	}
	return *b.limit, true
}

func (b *Builder) Offset() (int, bool) {
	if b.offset == nil {
		return 0, false
	}
	return *b.offset, true
}

// Params 返回参数的副本，key 带着冒号，例如 :name_0
func (b *Builder) Params() map[string]any {
	res := make(map[string]any, len(b.params))
	for k, v := range b.params {
		res[k] = v
	}
	return res
}

func (b *Builder) addParam(column string, val any) string {
	key := ":" + paramName(column) + "_" + strconv.Itoa(b.id.Get())
	b.params[key] = val
	return key
}

// paramName 参数名只能包含字母数字和下划线
func paramName(column string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, column)
}
