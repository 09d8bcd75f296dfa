package mapper

import (
	"context"
	"strconv"

	"github.com/coderi421/mapper/dialect"
	"github.com/coderi421/mapper/internal/conv"
	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/model"
	"github.com/coderi421/mapper/query"
	"github.com/coderi421/mapper/record"
	"github.com/coderi421/mapper/storage"
)

var _ Mapper = &Database{}

// Database SQL 数据库上面的一张表
// 设置了 WithReadSource / WithWriteSource 的时候读写走不同的 source
type Database struct {
	core
	read  side
	write side
}

func NewDatabase(env *Env, m *model.Model, opts ...Option) (*Database, error) {
	o := newOptions(opts)
	readSource, writeSource := m.Source, m.Source
	if o.readSource != "" {
		readSource = o.readSource
	}
	if o.writeSource != "" {
		writeSource = o.writeSource
	}
	read, err := env.side(readSource)
	if err != nil {
		return nil, err
	}
	write := read
	if writeSource != readSource {
		if write, err = env.side(writeSource); err != nil {
			return nil, err
		}
	}
	res := &Database{
		core:  newCore(m, o),
		read:  read,
		write: write,
	}
	res.core.source = readSource
	res.core.store = res
	res.core.self = res
	return res, nil
}

// Connector 读的一侧，search 用它执行查询
func (d *Database) Connector() storage.Connector {
	return d.read.conn
}

func (d *Database) Dialect() dialect.Dialect {
	return d.read.dialect
}

// WriteSource 写的 source，没有读写分离的时候和 Source 一样
func (d *Database) WriteSource() string {
	return d.write.source
}

func (d *Database) builder(s side) *query.Builder {
	return dialect.NewBuilder(s.dialect).SetBaseTable(d.alias)
}

func (d *Database) exec(ctx context.Context, s side, action dialect.Action, b *query.Builder) (bool, error) {
	q, err := dialect.Render(s.dialect, action, b)
	if err != nil {
		return false, err
	}
	return s.conn.Exec(ctx, q.SQL, q.Params)
}

func (d *Database) query(ctx context.Context, s side, b *query.Builder) ([]storage.Row, error) {
	q, err := dialect.Render(s.dialect, dialect.ActionSelect, b)
	if err != nil {
		return nil, err
	}
	return s.conn.Query(ctx, q.SQL, q.Params)
}

func (d *Database) insertRecord(ctx context.Context, r *record.Record) (bool, error) {
	b := d.builder(d.write)
	for _, f := range d.matching(r) {
		val, _ := r.Get(f.Name)
		b.AddProperty(d.alias, f.ColName, val)
	}
	if len(b.Properties()) == 0 {
		return false, nil
	}
	ok, err := d.exec(ctx, d.write, dialect.ActionInsert, b)
	if err != nil || !ok {
		return false, err
	}
	return true, d.fillInsertID(r)
}

// fillInsertID 只有一个整数主键并且没有设置的时候，用自增的 id 填上
func (d *Database) fillInsertID(r *record.Record) error {
	if len(d.model.PrimaryKeys) != 1 {
		return nil
	}
	pk := d.model.PrimaryKeys[0]
	e, err := r.Entry(pk)
	if err != nil || e.IsSet() || e.Type() != record.TypeInteger {
		return nil
	}
	id, ok := d.write.conn.LastInsertID()
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil
	}
	return r.Fill(pk, n)
}

func (d *Database) updateRecord(ctx context.Context, r *record.Record) (bool, error) {
	ok, err := d.updateByPk(ctx, r)
	if err != nil || ok {
		return ok, err
	}
	// 从存储里面来的值当作条件，修改过的值当作新的值
	b := d.builder(d.write)
	for _, f := range d.matching(r) {
		e, _ := r.Entry(f.Name)
		val, _ := r.Get(f.Name)
		if e.IsFromStorage() {
			if err = b.AddCondition(d.alias, f.ColName, query.OpEQ, val); err != nil {
				return false, err
			}
			continue
		}
		b.AddProperty(d.alias, f.ColName, val)
	}
	if len(b.Conditions()) == 0 || len(b.Properties()) == 0 {
		return false, nil
	}
	return d.exec(ctx, d.write, dialect.ActionUpdate, b)
}

// pkConditions 主键的条件，空的主键不参与，storedOnly 为 true 的时候只使用从存储里面读出来的值
// 有主键不在 relation 里面或者一个条件都没有的时候返回 false
func (d *Database) pkConditions(b *query.Builder, r *record.Record, storedOnly bool) (bool, error) {
	if len(d.model.PrimaryKeys) == 0 {
		return false, nil
	}
	for _, pk := range d.model.PrimaryKeys {
		col, ok := d.model.Relation(pk)
		if !ok {
			return false, nil
		}
		e, err := r.Entry(pk)
		if err != nil {
			return false, nil
		}
		val, _ := r.Get(pk)
		if isEmpty(val) || (storedOnly && !e.IsFromStorage()) {
			continue
		}
		if err = b.AddCondition(d.alias, col, query.OpEQ, val); err != nil {
			return false, err
		}
	}
	return len(b.Conditions()) > 0, nil
}

func (d *Database) updateByPk(ctx context.Context, r *record.Record) (bool, error) {
	b := d.builder(d.write)
	ok, err := d.pkConditions(b, r, true)
	if err != nil || !ok {
		return false, err
	}
	for _, f := range d.matching(r) {
		if d.model.IsPrimaryKey(f.Name) {
			continue
		}
		e, _ := r.Entry(f.Name)
		if e.IsFromStorage() {
			continue
		}
		val, _ := r.Get(f.Name)
		b.AddProperty(d.alias, f.ColName, val)
	}
	if len(b.Properties()) == 0 {
		return false, nil
	}
	return d.exec(ctx, d.write, dialect.ActionUpdate, b)
}

// columns 所有的字段，别名是 record 里面的名字
func (d *Database) columns(b *query.Builder) error {
	for _, f := range d.model.Relations() {
		if err := b.AddColumn(d.alias, f.ColName, f.Name, query.AggNone); err != nil {
			return err
		}
	}
	return nil
}

func (d *Database) loadRecord(ctx context.Context, r *record.Record) (bool, error) {
	b := d.builder(d.read)
	ok, err := d.pkConditions(b, r, false)
	if err != nil {
		return false, err
	}
	if !ok {
		// 没有主键，按照所有有值的字段查询
		b = d.builder(d.read)
		if err = d.conditions(b, r); err != nil {
			return false, err
		}
	}
	if err = d.columns(b); err != nil {
		return false, err
	}
	b.SetLimit(1)
	rows, err := d.query(ctx, d.read, b)
	if err != nil || len(rows) == 0 {
		return false, err
	}
	return true, fill(r, rows[0])
}

func (d *Database) conditions(b *query.Builder, r *record.Record) error {
	for _, f := range d.matching(r) {
		val, _ := r.Get(f.Name)
		if err := b.AddCondition(d.alias, f.ColName, query.OpEQ, val); err != nil {
			return err
		}
	}
	return nil
}

func (d *Database) deleteRecord(ctx context.Context, r *record.Record) (bool, error) {
	b := d.builder(d.write)
	ok, err := d.pkConditions(b, r, false)
	if err != nil {
		return false, err
	}
	if !ok {
		b = d.builder(d.write)
		if err = d.conditions(b, r); err != nil {
			return false, err
		}
	}
	// 没有条件的时候不删除整张表
	if len(b.Conditions()) == 0 {
		return false, nil
	}
	return d.exec(ctx, d.write, dialect.ActionDelete, b)
}

func (d *Database) count(ctx context.Context, r *record.Record) (int64, error) {
	b := d.builder(d.read)
	if err := d.conditions(b, r); err != nil {
		return 0, err
	}
	col, ok := d.countColumn()
	if !ok {
		return 0, nil
	}
	if err := b.AddColumn(d.alias, col, "count", query.AggCount); err != nil {
		return 0, err
	}
	rows, err := d.query(ctx, d.read, b)
	if err != nil || len(rows) == 0 {
		return 0, err
	}
	n, err := conv.Int64(rows[0]["count"])
	if err != nil {
		return 0, errs.NewErrInvalidValue("number", "count")
	}
	return n, nil
}

// countColumn 第一个主键，没有主键的时候用第一个字段
func (d *Database) countColumn() (string, bool) {
	if len(d.model.PrimaryKeys) > 0 {
		return d.model.Relation(d.model.PrimaryKeys[0])
	}
	fields := d.model.Relations()
	if len(fields) == 0 {
		return "", false
	}
	return fields[0].ColName, true
}

func (d *Database) loadMultiple(ctx context.Context, r *record.Record) ([]*record.Record, error) {
	b := d.builder(d.read)
	if err := d.conditions(b, r); err != nil {
		return nil, err
	}
	if err := d.columns(b); err != nil {
		return nil, err
	}
	rows, err := d.query(ctx, d.read, b)
	if err != nil {
		return nil, err
	}
	res := make([]*record.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := r.Clone()
		if err != nil {
			return nil, err
		}
		if err = fill(rec, row); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, nil
}
