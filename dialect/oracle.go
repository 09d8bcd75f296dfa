package dialect

import (
	"strconv"
	"strings"

	"github.com/coderi421/mapper/query"
)

// Oracle 12c 以上，分页使用 OFFSET ... FETCH
// 表的别名前面不能有 AS，列的别名不加引号的时候会变成大写
type Oracle struct {
	standardSQL
}

func NewOracle() *Oracle {
	s := newStandardSQL("oracle", 0,
		query.JoinBasic,
		query.JoinInner,
		query.JoinCross,
		query.JoinLeft,
		query.JoinRight,
		query.JoinFull,
		query.JoinLeftOuter,
		query.JoinRightOuter,
		query.JoinFullOuter,
	)
	s.tableAlias = " "
	s.aliasQuote = '"'
	// REGEXP_LIKE 是函数，不是操作符
	s.operators = map[query.Operation]string{
		query.OpRegexp: "",
	}
	return &Oracle{standardSQL: s}
}

func (o *Oracle) Insert(b *query.Builder) (string, error) {
	sql, err := o.insertValues(b)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(sql, ";"), nil
}

func (o *Oracle) Select(b *query.Builder) (string, error) {
	body, err := o.selectBody(b)
	if err != nil {
		return "", err
	}
	return "SELECT " + body + o.limits(b), nil
}

func (o *Oracle) Update(b *query.Builder) (string, error) {
	sql, err := o.updateSet(b)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(sql, ";"), nil
}

func (o *Oracle) Delete(b *query.Builder) (string, error) {
	sql, err := o.deleteFrom(b)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(sql, ";"), nil
}

func (o *Oracle) Describe(b *query.Builder) (string, error) {
	return "SELECT COLUMN_NAME, DATA_TYPE FROM USER_TAB_COLUMNS WHERE TABLE_NAME = '" + strings.ToUpper(b.BaseTable()) + "'", nil
}

func (o *Oracle) limits(b *query.Builder) string {
	limit, hasLimit := b.Limit()
	offset, hasOffset := b.Offset()
	switch {
	case hasOffset && hasLimit:
		return " OFFSET " + strconv.Itoa(offset) + " ROWS FETCH NEXT " + strconv.Itoa(limit) + " ROWS ONLY"
	case hasOffset:
		return " OFFSET " + strconv.Itoa(offset) + " ROWS"
	case hasLimit:
		return " FETCH FIRST " + strconv.Itoa(limit) + " ROWS ONLY"
	}
	return ""
}
