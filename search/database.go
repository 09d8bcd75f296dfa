package search

import (
	"context"

	"github.com/coderi421/mapper/dialect"
	"github.com/coderi421/mapper/internal/conv"
	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/model"
	"github.com/coderi421/mapper/query"
	"github.com/coderi421/mapper/record"
	"github.com/coderi421/mapper/storage"
)

var _ connector = &database{}

// database 渲染成一条 SELECT 交给 mapper 的读连接
type database struct {
	m SQLMapper
}

func (d *database) newBuilder() *query.Builder {
	return dialect.NewBuilder(d.m.Dialect())
}

func (d *database) joins() bool {
	return true
}

func (d *database) query(ctx context.Context, b *query.Builder) ([]storage.Row, error) {
	q, err := dialect.Render(d.m.Dialect(), dialect.ActionSelect, b)
	if err != nil {
		return nil, err
	}
	return d.m.Connector().Query(ctx, q.SQL, q.Params)
}

// count 第一个主键上面的 COUNT，没有主键的时候用第一列
func (d *database) count(ctx context.Context, s *Search) (int64, error) {
	b := s.b.Clone().ClearColumns().ClearOrdering().ClearLimits()
	col, ok := countColumn(d.m.Model())
	if !ok {
		return 0, nil
	}
	if err := b.AddColumn(d.m.Alias(), col, "count", query.AggCount); err != nil {
		return 0, err
	}
	rows, err := d.query(ctx, b)
	if err != nil || len(rows) == 0 {
		return 0, err
	}
	n, err := conv.Int64(rows[0]["count"])
	if err != nil {
		return 0, errs.NewErrInvalidValue("number", "count")
	}
	return n, nil
}

func countColumn(m *model.Model) (string, bool) {
	if len(m.PrimaryKeys) > 0 {
		return m.Relation(m.PrimaryKeys[0])
	}
	fields := m.Relations()
	if len(fields) == 0 {
		return "", false
	}
	return fields[0].ColName, true
}

func (d *database) results(ctx context.Context, s *Search) ([]*record.Record, error) {
	b := s.b.Clone().ClearColumns()
	if err := s.tree.columns(b); err != nil {
		return nil, err
	}
	if len(b.Ordering()) == 0 {
		m := d.m.Model()
		for _, pk := range m.PrimaryKeys {
			col, ok := m.Relation(pk)
			if !ok {
				continue
			}
			if err := b.AddOrderBy(d.m.Alias(), col, query.ASC); err != nil {
				return nil, err
			}
		}
	}
	rows, err := d.query(ctx, b)
	if err != nil {
		return nil, err
	}
	return s.tree.fill(rows)
}
