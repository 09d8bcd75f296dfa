// Package mapper record 和存储之间的映射
//
// 每一种存储（数据库、读写分离的数据库、文件表、预设数据、注册表）都只实现
// insertRecord / updateRecord / loadRecord / deleteRecord / count / loadMultiple，
// save 的分支、hook 和写成功之后的状态维护都在 core 里面
package mapper

import (
	"context"
	"errors"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/model"
	"github.com/coderi421/mapper/record"
	"github.com/gotomicro/ekit/slice"
)

type core struct {
	model  *model.Model
	alias  string
	source string
	store  store
	// self 外层的 mapper，创建 record 的时候绑定它
	self Mapper

	before map[Op][]Hook
	after  map[Op][]Hook
	fks    []ForeignKey
}

func newCore(m *model.Model, o *options) core {
	alias := o.alias
	if alias == "" {
		alias = m.TableName
	}
	return core{
		model:  m,
		alias:  alias,
		source: m.Source,
		before: o.before,
		after:  o.after,
		fks:    o.fks,
	}
}

func (c *core) Model() *model.Model {
	return c.model
}

func (c *core) Source() string {
	return c.source
}

func (c *core) Alias() string {
	return c.alias
}

func (c *core) PrimaryKeys() []string {
	return append([]string(nil), c.model.PrimaryKeys...)
}

func (c *core) ForeignKeys() []ForeignKey {
	return append([]ForeignKey(nil), c.fks...)
}

func (c *core) ForeignKey(alias string) (ForeignKey, bool) {
	for _, fk := range c.fks {
		if fk.Alias == alias {
			return fk, true
		}
	}
	return ForeignKey{}, false
}

func (c *core) NewRecord() (*record.Record, error) {
	return c.model.NewRecord(record.WithMapper(c.self))
}

// Save forceInsert 为 false 的时候：
// 主键都是从存储里面读出来的就更新；没有主键的先更新，失败了再插入；其余的插入。
// forceInsert 为 true 的时候先插入，插入失败或者主键冲突再更新
func (c *core) Save(ctx context.Context, r *record.Record, forceInsert bool) (bool, error) {
	if ok, err := c.hooks(ctx, c.before[OpSave], r); !ok || err != nil {
		return false, err
	}
	var (
		ok  bool
		err error
	)
	switch {
	case forceInsert:
		ok, err = c.Insert(ctx, r)
		if errors.Is(err, errs.ErrDuplicateKey) || (err == nil && !ok) {
			ok, err = c.Update(ctx, r)
		}
	case len(c.model.PrimaryKeys) == 0:
		ok, err = c.Update(ctx, r)
		if err == nil && !ok {
			ok, err = c.Insert(ctx, r)
		}
	case c.storedKeys(r):
		ok, err = c.Update(ctx, r)
	default:
		ok, err = c.Insert(ctx, r)
	}
	if err != nil || !ok {
		return false, err
	}
	return c.hooks(ctx, c.after[OpSave], r)
}

// storedKeys 所有的主键都有值并且是从存储里面来的
func (c *core) storedKeys(r *record.Record) bool {
	for _, pk := range c.model.PrimaryKeys {
		e, err := r.Entry(pk)
		if err != nil || !e.IsSet() || !e.IsFromStorage() {
			return false
		}
	}
	return true
}

func (c *core) Insert(ctx context.Context, r *record.Record) (bool, error) {
	return c.write(ctx, OpInsert, r, c.store.insertRecord)
}

func (c *core) Update(ctx context.Context, r *record.Record) (bool, error) {
	return c.write(ctx, OpUpdate, r, c.store.updateRecord)
}

func (c *core) write(ctx context.Context, op Op, r *record.Record,
	do func(ctx context.Context, r *record.Record) (bool, error)) (bool, error) {
	if ok, err := c.hooks(ctx, c.before[op], r); !ok || err != nil {
		return false, err
	}
	ok, err := do(ctx, r)
	if err != nil || !ok {
		return false, err
	}
	r.MarkStored()
	return c.hooks(ctx, c.after[op], r)
}

func (c *core) Load(ctx context.Context, r *record.Record) (bool, error) {
	if ok, err := c.hooks(ctx, c.before[OpLoad], r); !ok || err != nil {
		return false, err
	}
	ok, err := c.store.loadRecord(ctx, r)
	if err != nil || !ok {
		return false, err
	}
	return c.hooks(ctx, c.after[OpLoad], r)
}

func (c *core) Delete(ctx context.Context, r *record.Record) (bool, error) {
	if ok, err := c.hooks(ctx, c.before[OpDelete], r); !ok || err != nil {
		return false, err
	}
	ok, err := c.store.deleteRecord(ctx, r)
	if err != nil || !ok {
		return false, err
	}
	return c.hooks(ctx, c.after[OpDelete], r)
}

func (c *core) Count(ctx context.Context, r *record.Record) (int64, error) {
	return c.store.count(ctx, r)
}

func (c *core) LoadMultiple(ctx context.Context, r *record.Record) ([]*record.Record, error) {
	return c.store.loadMultiple(ctx, r)
}

func (c *core) hooks(ctx context.Context, hs []Hook, r *record.Record) (bool, error) {
	for _, h := range hs {
		ok, err := h(ctx, r)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// matching 参与匹配的字段：在 relation 里面并且有值
func (c *core) matching(r *record.Record) []*model.Field {
	return slice.FilterMap[*model.Field, *model.Field](c.model.Relations(), func(idx int, src *model.Field) (*model.Field, bool) {
		e, err := r.Entry(src.Name)
		return src, err == nil && e.IsSet()
	})
}
