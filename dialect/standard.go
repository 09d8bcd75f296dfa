package dialect

import (
	"strings"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/query"
)

var standardOperators = map[query.Operation]string{
	query.OpEQ:      "=",
	query.OpNEQ:     "!=",
	query.OpGT:      ">",
	query.OpGTE:     ">=",
	query.OpLT:      "<",
	query.OpLTE:     "<=",
	query.OpLike:    "LIKE",
	query.OpNotLike: "NOT LIKE",
	query.OpRegexp:  "REGEXP",
	query.OpIn:      "IN",
	query.OpNotIn:   "NOT IN",
	query.OpNull:    "IS NULL",
	query.OpNotNull: "IS NOT NULL",
}

// standardSQL 各个方言共用的部分，方言之间的差别基本上只在
// 引号、LIMIT 的写法和支持的 join 类型
type standardSQL struct {
	name  string
	quote byte
	joins []query.JoinSide
	// operators 覆盖 standardOperators，值为空字符串表示不支持
	operators map[query.Operation]string
	// tableAlias 放在表名和别名之间
	tableAlias string
	// aliasQuote 列的别名用的引号，默认和 quote 一样
	aliasQuote byte
}

func newStandardSQL(name string, quote byte, joins ...query.JoinSide) standardSQL {
	return standardSQL{
		name:       name,
		quote:      quote,
		joins:      joins,
		tableAlias: " AS ",
		aliasQuote: quote,
	}
}

func (s standardSQL) Name() string {
	return s.name
}

func (s standardSQL) AvailableJoins() []query.JoinSide {
	return append([]query.JoinSide(nil), s.joins...)
}

func (s standardSQL) TranslateOperation(op query.Operation) (string, error) {
	res, ok := s.operators[op]
	if !ok {
		res, ok = standardOperators[op]
	}
	if !ok {
		return "", errs.NewErrUnknownOperation(string(op))
	}
	if res == "" {
		return "", errs.NewErrUnsupportedOperation(string(op), s.name)
	}
	return res, nil
}

func (s standardSQL) TranslateKey(op query.Operation, keys []string) (string, error) {
	switch {
	case op.Nullary():
		return "", nil
	case op.List():
		if len(keys) == 0 {
			// IN () 不是合法的 SQL，conditions 里面空列表不会走到这里
			return "(NULL)", nil
		}
		return "(" + strings.Join(keys, ", ") + ")", nil
	case len(keys) != 1:
		return "", errs.NewErrMissingParam(string(op))
	}
	return keys[0], nil
}

func (s standardSQL) ident(name string) string {
	if s.quote == 0 {
		return name
	}
	q := string(s.quote)
	return q + name + q
}

// alias 列的别名，读取结果的时候按照别名取值，所以大小写要原样保留
func (s standardSQL) alias(name string) string {
	if s.aliasQuote == 0 {
		return name
	}
	q := string(s.aliasQuote)
	return q + name + q
}

// column simple 的时候不带表名
func (s standardSQL) column(table, column string, simple bool) string {
	if simple || table == "" {
		return s.ident(column)
	}
	return s.ident(table) + "." + s.ident(column)
}

func (s standardSQL) columns(cs []query.Column, simple bool) string {
	if len(cs) == 0 {
		return "*"
	}
	var sb strings.Builder
	for i, c := range cs {
		if i > 0 {
			sb.WriteString(", ")
		}
		expr := s.column(c.Table, c.Name, simple)
		if c.Aggregate != query.AggNone {
			expr = string(c.Aggregate) + "(" + expr + ")"
		}
		sb.WriteString(expr)
		if c.Alias != "" {
			sb.WriteString(" AS ")
			sb.WriteString(s.alias(c.Alias))
		}
	}
	return sb.String()
}

// conditions 返回值带着前缀，例如 " WHERE a = :a_0"，没有条件的时候返回空字符串
func (s standardSQL) conditions(prefix string, cs []query.Condition, rel query.Relation, simple bool) (string, error) {
	if len(cs) == 0 {
		return "", nil
	}
	var sb strings.Builder
	sb.WriteString(prefix)
	for i, c := range cs {
		if i > 0 {
			sb.WriteByte(' ')
			sb.WriteString(string(rel))
			sb.WriteByte(' ')
		}
		if c.IsRaw() {
			sb.WriteString(c.Raw)
			continue
		}
		if c.Operation.List() && len(c.Keys) == 0 {
			// 空的 IN 什么都匹配不上，空的 NOT IN 匹配所有行
			if c.Operation == query.OpIn {
				sb.WriteString("1 = 0")
			} else {
				sb.WriteString("1 = 1")
			}
			continue
		}
		op, err := s.TranslateOperation(c.Operation)
		if err != nil {
			return "", err
		}
		key, err := s.TranslateKey(c.Operation, c.Keys)
		if err != nil {
			return "", err
		}
		sb.WriteString(s.column(c.Table, c.Column, simple))
		sb.WriteByte(' ')
		sb.WriteString(op)
		if key != "" {
			sb.WriteByte(' ')
			sb.WriteString(key)
		}
	}
	return sb.String(), nil
}

func (s standardSQL) where(b *query.Builder, simple bool) (string, error) {
	return s.conditions(" WHERE ", b.Conditions(), b.Relation(), simple)
}

func (s standardSQL) joinClause(js []query.Join) string {
	var sb strings.Builder
	for _, j := range js {
		sb.WriteByte(' ')
		if j.Side != query.JoinBasic {
			sb.WriteString(string(j.Side))
			sb.WriteByte(' ')
		}
		sb.WriteString("JOIN ")
		sb.WriteString(s.ident(j.NewTable))
		if j.TableAlias != "" {
			sb.WriteString(s.tableAlias)
			sb.WriteString(s.ident(j.TableAlias))
		}
		sb.WriteString(" ON (")
		sb.WriteString(s.column(j.KnownTable, j.KnownColumn, false))
		sb.WriteString(" = ")
		sb.WriteString(s.column(j.Target(), j.NewColumn, false))
		sb.WriteByte(')')
	}
	return sb.String()
}

func (s standardSQL) grouping(gs []query.Group, simple bool) string {
	if len(gs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(" GROUP BY ")
	for i, g := range gs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(s.column(g.Table, g.Column, simple))
	}
	return sb.String()
}

func (s standardSQL) ordering(os []query.Order, simple bool) string {
	if len(os) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(" ORDER BY ")
	for i, o := range os {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(s.column(o.Table, o.Column, simple))
		sb.WriteByte(' ')
		sb.WriteString(string(o.Direction))
	}
	return sb.String()
}

// selectBody 从列开始一直到 ORDER BY，不包括 SELECT 关键字和 LIMIT
// 没有 join 的时候使用不带表名的列
func (s standardSQL) selectBody(b *query.Builder) (string, error) {
	simple := len(b.Joins()) == 0
	where, err := s.where(b, simple)
	if err != nil {
		return "", err
	}
	having, err := s.conditions(" HAVING ", b.Having(), b.Relation(), simple)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(s.columns(b.Columns(), simple))
	sb.WriteString(" FROM ")
	sb.WriteString(s.ident(b.BaseTable()))
	sb.WriteString(s.joinClause(b.Joins()))
	sb.WriteString(where)
	sb.WriteString(s.grouping(b.Grouping(), simple))
	sb.WriteString(having)
	sb.WriteString(s.ordering(b.Ordering(), simple))
	return sb.String(), nil
}

// assignments "a = :a_0, b = :b_1"
func (s standardSQL) assignments(ps []query.Property) (string, error) {
	if len(ps) == 0 {
		return "", errs.ErrNoProperties
	}
	var sb strings.Builder
	for i, p := range ps {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(s.ident(p.Column))
		sb.WriteString(" = ")
		sb.WriteString(p.Key)
	}
	return sb.String(), nil
}

// valueLists "(a, b) VALUES (:a_0, :b_1)"
func (s standardSQL) valueLists(ps []query.Property) (string, error) {
	if len(ps) == 0 {
		return "", errs.ErrNoProperties
	}
	cols := make([]string, 0, len(ps))
	keys := make([]string, 0, len(ps))
	for _, p := range ps {
		cols = append(cols, s.ident(p.Column))
		keys = append(keys, p.Key)
	}
	return "(" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(keys, ", ") + ")", nil
}

// insertValues INSERT INTO t (a, b) VALUES (:a_0, :b_1);
func (s standardSQL) insertValues(b *query.Builder) (string, error) {
	lists, err := s.valueLists(b.Properties())
	if err != nil {
		return "", err
	}
	return "INSERT INTO " + s.ident(b.BaseTable()) + " " + lists + ";", nil
}

// updateSet 不带 LIMIT 的 UPDATE
func (s standardSQL) updateSet(b *query.Builder) (string, error) {
	set, err := s.assignments(b.Properties())
	if err != nil {
		return "", err
	}
	where, err := s.where(b, true)
	if err != nil {
		return "", err
	}
	return "UPDATE " + s.ident(b.BaseTable()) + " SET " + set + where + ";", nil
}

// deleteFrom 不带 LIMIT 的 DELETE
func (s standardSQL) deleteFrom(b *query.Builder) (string, error) {
	where, err := s.where(b, true)
	if err != nil {
		return "", err
	}
	return "DELETE FROM " + s.ident(b.BaseTable()) + where + ";", nil
}
