package dialect

import (
	"strconv"

	"github.com/coderi421/mapper/query"
)

// MySQL MySQL / MariaDB / Percona
type MySQL struct {
	standardSQL
}

func NewMySQL() *MySQL {
	return &MySQL{
		standardSQL: newStandardSQL("mysql", '`',
			query.JoinBasic,
			query.JoinInner,
			query.JoinCross,
			query.JoinLeft,
			query.JoinRight,
			query.JoinLeftOuter,
			query.JoinRightOuter,
		),
	}
}

func (m *MySQL) Insert(b *query.Builder) (string, error) {
	set, err := m.assignments(b.Properties())
	if err != nil {
		return "", err
	}
	return "INSERT INTO " + m.ident(b.BaseTable()) + " SET " + set + ";", nil
}

func (m *MySQL) Select(b *query.Builder) (string, error) {
	body, err := m.selectBody(b)
	if err != nil {
		return "", err
	}
	return "SELECT " + body + m.limits(b) + ";", nil
}

// Update MySQL 的 UPDATE 可以带 LIMIT，但是不能带 OFFSET
func (m *MySQL) Update(b *query.Builder) (string, error) {
	set, err := m.assignments(b.Properties())
	if err != nil {
		return "", err
	}
	where, err := m.where(b, true)
	if err != nil {
		return "", err
	}
	return "UPDATE " + m.ident(b.BaseTable()) + " SET " + set + where + m.limitOnly(b) + ";", nil
}

func (m *MySQL) Delete(b *query.Builder) (string, error) {
	where, err := m.where(b, true)
	if err != nil {
		return "", err
	}
	return "DELETE FROM " + m.ident(b.BaseTable()) + where + m.limitOnly(b) + ";", nil
}

func (m *MySQL) Describe(b *query.Builder) (string, error) {
	return "DESCRIBE " + m.ident(b.BaseTable()) + ";", nil
}

// limits " LIMIT n" 或者 " LIMIT offset,n"，只有 offset 的时候忽略
func (m *MySQL) limits(b *query.Builder) string {
	limit, ok := b.Limit()
	if !ok {
		return ""
	}
	if offset, ok := b.Offset(); ok {
		return " LIMIT " + strconv.Itoa(offset) + "," + strconv.Itoa(limit)
	}
	return " LIMIT " + strconv.Itoa(limit)
}

func (m *MySQL) limitOnly(b *query.Builder) string {
	if limit, ok := b.Limit(); ok {
		return " LIMIT " + strconv.Itoa(limit)
	}
	return ""
}
