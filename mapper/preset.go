package mapper

import (
	"context"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/model"
	"github.com/coderi421/mapper/record"
)

var _ Mapper = &Preset{}

// Preset 写死在代码里面的数据，只能读
type Preset struct {
	core
	finder
}

// NewPreset rows 的 key 是 record 里面的名字
func NewPreset(m *model.Model, rows []map[string]any, opts ...Option) (*Preset, error) {
	o := newOptions(opts)
	res := &Preset{
		core:   newCore(m, o),
		finder: finder{model: m},
	}
	// 别名默认是 source
	if o.alias == "" {
		res.core.alias = m.Source
	}
	res.core.store = res
	res.core.self = res
	records, err := rowsToRecords(m, res, rows, func(fd *model.Field) string {
		return fd.Name
	})
	if err != nil {
		return nil, err
	}
	res.records = records
	return res, nil
}

func (p *Preset) insertRecord(ctx context.Context, r *record.Record) (bool, error) {
	return false, errs.ErrReadOnlyPreset
}

func (p *Preset) updateRecord(ctx context.Context, r *record.Record) (bool, error) {
	return false, errs.ErrReadOnlyPreset
}

func (p *Preset) deleteRecord(ctx context.Context, r *record.Record) (bool, error) {
	return false, errs.ErrReadOnlyPreset
}

func (p *Preset) loadRecord(ctx context.Context, r *record.Record) (bool, error) {
	return p.finder.load(r)
}

func (p *Preset) count(ctx context.Context, r *record.Record) (int64, error) {
	return int64(len(p.match(r, false, false))), nil
}

func (p *Preset) loadMultiple(ctx context.Context, r *record.Record) ([]*record.Record, error) {
	return p.finder.loadMultiple(r)
}
