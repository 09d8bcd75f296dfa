package dialect

import (
	"strconv"

	"github.com/coderi421/mapper/query"
)

// TransactSQL MS SQL Server
// 没有 offset 的时候使用 TOP(n)，否则使用 OFFSET ... FETCH NEXT
type TransactSQL struct {
	standardSQL
}

func NewTransactSQL() *TransactSQL {
	s := newStandardSQL("transactsql", 0,
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
	s.operators = map[query.Operation]string{
		query.OpRegexp: "",
	}
	return &TransactSQL{standardSQL: s}
}

func (t *TransactSQL) Insert(b *query.Builder) (string, error) {
	return t.insertValues(b)
}

func (t *TransactSQL) Select(b *query.Builder) (string, error) {
	body, err := t.selectBody(b)
	if err != nil {
		return "", err
	}
	limit, hasLimit := b.Limit()
	offset, hasOffset := b.Offset()
	if !hasOffset {
		return "SELECT " + t.top(b) + body + ";", nil
	}
	// OFFSET 必须跟在 ORDER BY 后面
	if len(b.Ordering()) == 0 {
		body += " ORDER BY (SELECT NULL)"
	}
	body += " OFFSET " + strconv.Itoa(offset) + " ROWS"
	if hasLimit {
		body += " FETCH NEXT " + strconv.Itoa(limit) + " ROWS ONLY"
	}
	return "SELECT " + body + ";", nil
}

func (t *TransactSQL) Update(b *query.Builder) (string, error) {
	set, err := t.assignments(b.Properties())
	if err != nil {
		return "", err
	}
	where, err := t.where(b, true)
	if err != nil {
		return "", err
	}
	return "UPDATE " + t.top(b) + t.ident(b.BaseTable()) + " SET " + set + where + ";", nil
}

func (t *TransactSQL) Delete(b *query.Builder) (string, error) {
	where, err := t.where(b, true)
	if err != nil {
		return "", err
	}
	return "DELETE " + t.top(b) + "FROM " + t.ident(b.BaseTable()) + where + ";", nil
}

func (t *TransactSQL) Describe(b *query.Builder) (string, error) {
	return "SELECT * FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_NAME = '" + b.BaseTable() + "';", nil
}

// top 带着结尾的空格
func (t *TransactSQL) top(b *query.Builder) string {
	if limit, ok := b.Limit(); ok {
		return "TOP(" + strconv.Itoa(limit) + ") "
	}
	return ""
}
