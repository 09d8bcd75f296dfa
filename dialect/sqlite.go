package dialect

import (
	"strconv"

	"github.com/coderi421/mapper/query"
)

// SQLite 单文件数据库
// UPDATE 和 DELETE 不支持 LIMIT，编译 sqlite 的时候默认没有打开 SQLITE_ENABLE_UPDATE_DELETE_LIMIT
type SQLite struct {
	standardSQL
}

func NewSQLite() *SQLite {
	return &SQLite{
		standardSQL: newStandardSQL("sqlite", '"',
			query.JoinBasic,
			query.JoinInner,
			query.JoinOuter,
			query.JoinCross,
			query.JoinLeft,
			query.JoinLeftOuter,
		),
	}
}

func (s *SQLite) Insert(b *query.Builder) (string, error) {
	return s.insertValues(b)
}

func (s *SQLite) Select(b *query.Builder) (string, error) {
	body, err := s.selectBody(b)
	if err != nil {
		return "", err
	}
	return "SELECT " + body + s.limits(b) + ";", nil
}

func (s *SQLite) Update(b *query.Builder) (string, error) {
	return s.updateSet(b)
}

func (s *SQLite) Delete(b *query.Builder) (string, error) {
	return s.deleteFrom(b)
}

func (s *SQLite) Describe(b *query.Builder) (string, error) {
	return `SELECT "sql" FROM "sqlite_master" WHERE "name" = '` + b.BaseTable() + `';`, nil
}

func (s *SQLite) limits(b *query.Builder) string {
	limit, ok := b.Limit()
	if !ok {
		return ""
	}
	if offset, ok := b.Offset(); ok {
		return " LIMIT " + strconv.Itoa(limit) + " OFFSET " + strconv.Itoa(offset)
	}
	return " LIMIT " + strconv.Itoa(limit)
}
