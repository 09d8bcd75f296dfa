package mapper

import (
	"context"
	"errors"
	"sync"

	"github.com/coderi421/mapper/internal/conv"
	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/model"
	"github.com/coderi421/mapper/record"
	"github.com/coderi421/mapper/storage/file"
	"github.com/coderi421/mapper/storage/format"
	"github.com/google/uuid"
)

var _ Mapper = &FileTable{}

// FileTable 一个文件就是一张表，第一次使用的时候整个读进内存
// 每一次修改都会重新写整个文件；行的 key 是列名
type FileTable struct {
	core
	finder

	storage file.Storage
	format  format.Format
	path    string

	orderFromFirst bool

	lock   sync.Mutex
	loaded bool
}

// NewFileTable path 是文件在 storage 里面的路径
func NewFileTable(m *model.Model, st file.Storage, f format.Format, path string, opts ...Option) *FileTable {
	o := newOptions(opts)
	res := &FileTable{
		core:           newCore(m, o),
		finder:         finder{model: m},
		storage:        st,
		format:         f,
		path:           path,
		orderFromFirst: o.orderFromFirst,
	}
	res.core.store = res
	res.core.self = res
	return res
}

// Reload 下一次操作的时候重新读取文件
func (t *FileTable) Reload() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.loaded = false
	t.records = nil
}

func (t *FileTable) loadOnDemand(ctx context.Context) error {
	if t.loaded {
		return nil
	}
	data, err := t.storage.Load(ctx, t.path)
	if errors.Is(err, errs.ErrNotExist) {
		t.records, t.loaded = []*record.Record{}, true
		return nil
	}
	if err != nil {
		return err
	}
	rows, err := t.format.Unpack(data)
	if err != nil {
		return err
	}
	records, err := rowsToRecords(t.core.model, t, rows, func(fd *model.Field) string {
		return fd.ColName
	})
	if err != nil {
		return err
	}
	t.records, t.loaded = records, true
	return nil
}

// saveSource 写失败的时候丢掉内存里面的数据，下一次重新读
func (t *FileTable) saveSource(ctx context.Context) (bool, error) {
	rows := make([]map[string]any, 0, len(t.records))
	for _, rec := range t.records {
		fields := t.core.model.Relations()
		row := make(map[string]any, len(fields))
		for _, fd := range fields {
			val, _ := rec.Get(fd.Name)
			row[fd.ColName] = val
		}
		rows = append(rows, row)
	}
	data, err := t.format.Pack(rows)
	if err == nil {
		err = t.storage.Save(ctx, t.path, data)
	}
	if err != nil {
		t.loaded, t.records = false, nil
		return false, err
	}
	for _, rec := range t.records {
		rec.MarkStored()
	}
	return true, nil
}

func (t *FileTable) insertRecord(ctx context.Context, r *record.Record) (bool, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if err := t.loadOnDemand(ctx); err != nil {
		return false, err
	}
	pks := t.core.model.PrimaryKeys
	if len(t.match(r, len(pks) > 0, false)) > 0 {
		return false, nil
	}
	for _, pk := range pks {
		if err := t.generateKey(r, pk); err != nil {
			return false, err
		}
	}
	rec, err := r.Clone()
	if err != nil {
		return false, err
	}
	if t.orderFromFirst {
		t.records = append(t.records, rec)
	} else {
		t.records = append([]*record.Record{rec}, t.records...)
	}
	return t.saveSource(ctx)
}

// generateKey 空的数字主键取最大值加一，空的字符串主键生成 uuid
func (t *FileTable) generateKey(r *record.Record, pk string) error {
	e, err := r.Entry(pk)
	if err != nil {
		return err
	}
	val, _ := r.Get(pk)
	if !isEmpty(val) {
		return nil
	}
	switch e.Type() {
	case record.TypeInteger, record.TypeFloat:
		var last int64
		for _, known := range t.records {
			kv, _ := known.Get(pk)
			if n, err := conv.Int64(kv); err == nil && n > last {
				last = n
			}
		}
		if e.Type() == record.TypeFloat {
			return r.Set(pk, float64(last+1))
		}
		return r.Set(pk, last+1)
	case record.TypeString:
		return r.Set(pk, uuid.NewString())
	}
	return nil
}

func (t *FileTable) updateRecord(ctx context.Context, r *record.Record) (bool, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if err := t.loadOnDemand(ctx); err != nil {
		return false, err
	}
	idx := t.match(r, len(t.core.model.PrimaryKeys) > 0, true)
	if len(idx) == 0 {
		return false, nil
	}
	known := t.records[idx[0]]
	for _, fd := range t.core.model.Relations() {
		if t.core.model.IsPrimaryKey(fd.Name) {
			continue
		}
		val, err := r.Get(fd.Name)
		if err != nil {
			continue
		}
		if err = known.Fill(fd.Name, val); err != nil {
			return false, err
		}
	}
	return t.saveSource(ctx)
}

func (t *FileTable) loadRecord(ctx context.Context, r *record.Record) (bool, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if err := t.loadOnDemand(ctx); err != nil {
		return false, err
	}
	return t.finder.load(r)
}

func (t *FileTable) deleteRecord(ctx context.Context, r *record.Record) (bool, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if err := t.loadOnDemand(ctx); err != nil {
		return false, err
	}
	// 没有条件的时候不清空整张表
	if len(t.matching(r)) == 0 {
		return false, nil
	}
	idx := t.match(r, false, false)
	if len(idx) == 0 {
		return false, nil
	}
	drop := make(map[int]struct{}, len(idx))
	for _, i := range idx {
		drop[i] = struct{}{}
	}
	kept := make([]*record.Record, 0, len(t.records)-len(idx))
	for i, rec := range t.records {
		if _, ok := drop[i]; !ok {
			kept = append(kept, rec)
		}
	}
	t.records = kept
	return t.saveSource(ctx)
}

func (t *FileTable) count(ctx context.Context, r *record.Record) (int64, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if err := t.loadOnDemand(ctx); err != nil {
		return 0, err
	}
	return int64(len(t.match(r, false, false))), nil
}

func (t *FileTable) loadMultiple(ctx context.Context, r *record.Record) ([]*record.Record, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if err := t.loadOnDemand(ctx); err != nil {
		return nil, err
	}
	return t.finder.loadMultiple(r)
}
