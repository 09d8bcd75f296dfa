package mapper

import (
	"context"

	"github.com/coderi421/mapper/internal/conv"
	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/model"
	"github.com/coderi421/mapper/record"
	"github.com/coderi421/mapper/storage"
)

var _ Mapper = &Registry{}

// record 里面的名字
const (
	RegistryPart    = "part"
	RegistryPath    = "path"
	RegistryType    = "type"
	RegistryContent = "content"
)

// RegistryModel 注册表的 record：主键是 part 和 path，值的类型和内容单独存放
func RegistryModel(source string) *model.Model {
	m, _ := model.New("win_registry",
		model.WithSource(source),
		model.WithField(RegistryPart, RegistryPart, record.TypeString, 0),
		model.WithField(RegistryPath, RegistryPath, record.TypeString, 0),
		model.WithField(RegistryType, RegistryType, record.TypeInteger, 0),
		model.WithField(RegistryContent, RegistryContent, record.TypeString, 0),
		model.WithPrimaryKeys(RegistryPart, RegistryPath))
	return m
}

// Registry 层级存储上面的 mapper，写的是 key 的默认值，不允许删除
type Registry struct {
	core
	reg storage.Registry
}

func NewRegistry(reg storage.Registry, source string, opts ...Option) *Registry {
	o := newOptions(opts)
	res := &Registry{
		core: newCore(RegistryModel(source), o),
		reg:  reg,
	}
	res.core.store = res
	res.core.self = res
	return res
}

func (g *Registry) key(r *record.Record) (string, string) {
	part, _ := r.Get(RegistryPart)
	path, _ := r.Get(RegistryPath)
	return conv.String(part), conv.String(path)
}

func (g *Registry) exec(ctx context.Context, action storage.Action, r *record.Record) (bool, error) {
	part, path := g.key(r)
	typ, _ := r.Get(RegistryType)
	content, _ := r.Get(RegistryContent)
	n, _ := conv.Int64(typ)
	return g.reg.Exec(ctx, action, part, path, storage.RegistryValue{
		Type:    uint32(n),
		Content: content,
	})
}

func (g *Registry) insertRecord(ctx context.Context, r *record.Record) (bool, error) {
	return g.exec(ctx, storage.ActionInsert, r)
}

func (g *Registry) updateRecord(ctx context.Context, r *record.Record) (bool, error) {
	return g.exec(ctx, storage.ActionUpdate, r)
}

func (g *Registry) deleteRecord(ctx context.Context, r *record.Record) (bool, error) {
	_, path := g.key(r)
	return false, errs.NewErrRegistryDelete(path)
}

func (g *Registry) values(ctx context.Context, r *record.Record) ([]storage.RegistryValue, error) {
	part, path := g.key(r)
	return g.reg.Values(ctx, part, path)
}

func (g *Registry) fillValue(r *record.Record, val storage.RegistryValue) error {
	return fill(r, map[string]any{
		RegistryType:    val.Type,
		RegistryContent: val.Content,
	})
}

func (g *Registry) loadRecord(ctx context.Context, r *record.Record) (bool, error) {
	vals, err := g.values(ctx, r)
	if err != nil || len(vals) == 0 {
		return false, err
	}
	return true, g.fillValue(r, vals[0])
}

func (g *Registry) count(ctx context.Context, r *record.Record) (int64, error) {
	vals, err := g.values(ctx, r)
	if err != nil {
		return 0, err
	}
	return int64(len(vals)), nil
}

func (g *Registry) loadMultiple(ctx context.Context, r *record.Record) ([]*record.Record, error) {
	vals, err := g.values(ctx, r)
	if err != nil {
		return nil, err
	}
	res := make([]*record.Record, 0, len(vals))
	for _, val := range vals {
		rec, err := r.Clone()
		if err != nil {
			return nil, err
		}
		if err = g.fillValue(rec, val); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, nil
}
