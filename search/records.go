package search

import (
	"context"
	"sort"
	"strings"

	"github.com/coderi421/mapper/internal/conv"
	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/mapper"
	"github.com/coderi421/mapper/query"
	"github.com/coderi421/mapper/record"
)

var _ connector = &records{}

// records 在内存里面过滤，用于文件表、预设数据这一类没有 SQL 的 mapper
// 不支持 join 和原生的条件
type records struct {
	m       mapper.Mapper
	initial []*record.Record
}

func (r *records) newBuilder() *query.Builder {
	return query.NewBuilder()
}

func (r *records) joins() bool {
	return false
}

// load 没有初始 record 的时候读取 mapper 里面的全部 record
func (r *records) load(ctx context.Context) ([]*record.Record, error) {
	if len(r.initial) > 0 {
		return r.initial, nil
	}
	empty, err := r.m.NewRecord()
	if err != nil {
		return nil, err
	}
	return r.m.LoadMultiple(ctx, empty)
}

// selected 过滤并且分组之后的 record，分组的时候每组留下第一个
func (r *records) selected(ctx context.Context, b *query.Builder) ([]*record.Record, error) {
	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	params := b.Params()
	res := make([]*record.Record, 0, len(all))
	for _, rec := range all {
		ok, err := r.match(b, params, rec)
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, rec)
		}
	}
	return r.group(b, res)
}

func (r *records) match(b *query.Builder, params map[string]any, rec *record.Record) (bool, error) {
	conds := b.Conditions()
	if len(conds) == 0 {
		return true, nil
	}
	// AND 遇到不满足的就结束，OR 遇到满足的就结束
	or := b.Relation() == query.OR
	for _, c := range conds {
		ok, err := r.check(c, params, rec)
		if err != nil {
			return false, err
		}
		if ok == or {
			return or, nil
		}
	}
	return !or, nil
}

func (r *records) check(c query.Condition, params map[string]any, rec *record.Record) (bool, error) {
	if c.IsRaw() {
		return false, errs.NewErrUnsupportedOperation("raw", "records")
	}
	val, err := r.value(c.Table, c.Column, rec)
	if err != nil {
		return false, err
	}
	var expected any
	switch {
	case c.Operation.Nullary():
	case c.Operation.List():
		list := make([]any, 0, len(c.Keys))
		for _, k := range c.Keys {
			list = append(list, params[k])
		}
		expected = list
	case len(c.Keys) > 0:
		expected = params[c.Keys[0]]
	}
	return checkCondition(c.Operation, val, expected)
}

// value 按照列名取 record 里面的值
func (r *records) value(table, column string, rec *record.Record) (any, error) {
	f, ok := r.m.Model().ColumnMap[column]
	if !ok {
		return nil, errs.NewErrUnknownColumn(column, table)
	}
	return rec.Get(f.Name)
}

func (r *records) group(b *query.Builder, rs []*record.Record) ([]*record.Record, error) {
	groups := b.Grouping()
	if len(groups) == 0 {
		return rs, nil
	}
	seen := make(map[string]struct{}, len(rs))
	res := make([]*record.Record, 0, len(rs))
	for _, rec := range rs {
		parts := make([]string, 0, len(groups))
		for _, g := range groups {
			val, err := r.value(g.Table, g.Column, rec)
			if err != nil {
				return nil, err
			}
			parts = append(parts, conv.String(val))
		}
		key := strings.Join(parts, "\x00")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, rec)
	}
	return res, nil
}

func (r *records) count(ctx context.Context, s *Search) (int64, error) {
	rs, err := r.selected(ctx, s.b)
	if err != nil {
		return 0, err
	}
	return int64(len(rs)), nil
}

func (r *records) results(ctx context.Context, s *Search) ([]*record.Record, error) {
	rs, err := r.selected(ctx, s.b)
	if err != nil {
		return nil, err
	}
	orders := s.b.Ordering()
	if len(orders) == 0 {
		orders = r.primaryOrder()
	}
	if err = r.order(orders, rs); err != nil {
		return nil, err
	}
	rs = window(s.b, rs)
	res := make([]*record.Record, 0, len(rs))
	for _, rec := range rs {
		c, err := rec.Clone()
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, nil
}

// primaryOrder 没有指定排序的时候按照主键升序，和数据库一样
func (r *records) primaryOrder() []query.Order {
	m := r.m.Model()
	res := make([]query.Order, 0, len(m.PrimaryKeys))
	for _, pk := range m.PrimaryKeys {
		col, ok := m.Relation(pk)
		if !ok {
			continue
		}
		res = append(res, query.Order{Table: r.m.Alias(), Column: col, Direction: query.ASC})
	}
	return res
}

// order 稳定排序，前面的排序条件优先
func (r *records) order(orders []query.Order, rs []*record.Record) error {
	if len(orders) == 0 {
		return nil
	}
	names := make([]string, 0, len(orders))
	for _, o := range orders {
		f, ok := r.m.Model().ColumnMap[o.Column]
		if !ok {
			return errs.NewErrUnknownColumn(o.Column, o.Table)
		}
		names = append(names, f.Name)
	}
	sort.SliceStable(rs, func(i, j int) bool {
		for k, o := range orders {
			vi, _ := rs[i].Get(names[k])
			vj, _ := rs[j].Get(names[k])
			c := compare(vi, vj)
			if c == 0 {
				continue
			}
			if o.Direction == query.DESC {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return nil
}

// window offset 和 limit
func window(b *query.Builder, rs []*record.Record) []*record.Record {
	if offset, ok := b.Offset(); ok && offset > 0 {
		if offset >= len(rs) {
			return rs[:0]
		}
		rs = rs[offset:]
	}
	if limit, ok := b.Limit(); ok && limit >= 0 && limit < len(rs) {
		rs = rs[:limit]
	}
	return rs
}
