package dialect

import (
	"strconv"

	"github.com/coderi421/mapper/query"
)

type PostgreSQL struct {
	standardSQL
}

func NewPostgreSQL() *PostgreSQL {
	s := newStandardSQL("postgres", '"',
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
		query.OpRegexp: "~",
	}
	return &PostgreSQL{standardSQL: s}
}

func (p *PostgreSQL) Insert(b *query.Builder) (string, error) {
	return p.insertValues(b)
}

func (p *PostgreSQL) Select(b *query.Builder) (string, error) {
	body, err := p.selectBody(b)
	if err != nil {
		return "", err
	}
	return "SELECT " + body + p.limits(b) + ";", nil
}

func (p *PostgreSQL) Update(b *query.Builder) (string, error) {
	return p.updateSet(b)
}

func (p *PostgreSQL) Delete(b *query.Builder) (string, error) {
	return p.deleteFrom(b)
}

func (p *PostgreSQL) Describe(b *query.Builder) (string, error) {
	return "SELECT table_name, column_name, data_type FROM information_schema.columns WHERE table_name = '" + b.BaseTable() + "';", nil
}

// limits 和 sqlite 一样，只是可以单独使用 OFFSET
func (p *PostgreSQL) limits(b *query.Builder) string {
	res := ""
	if limit, ok := b.Limit(); ok {
		res = " LIMIT " + strconv.Itoa(limit)
	}
	if offset, ok := b.Offset(); ok {
		res += " OFFSET " + strconv.Itoa(offset)
	}
	return res
}
