package record

import (
	"context"

	"github.com/coderi421/mapper/internal/errs"
)

// Mapper 负责把 record 写到存储里面，具体实现在 mapper 包
type Mapper interface {
	Save(ctx context.Context, r *Record, forceInsert bool) (bool, error)
	Load(ctx context.Context, r *Record) (bool, error)
	Delete(ctx context.Context, r *Record) (bool, error)
}

type Option func(r *Record)

// WithStrict 允许 TypeFloat 和 TypeSet
func WithStrict() Option {
	return func(r *Record) {
		r.strict = true
	}
}

func WithMapper(m Mapper) Option {
	return func(r *Record) {
		r.mapper = m
	}
}

// Record 一组有类型的字段，按照声明的顺序迭代
// 不是并发安全的
type Record struct {
	names   []string
	entries map[string]*Entry
	strict  bool
	mapper  Mapper
}

func New(opts ...Option) *Record {
	r := &Record{
		entries: make(map[string]*Entry, 8),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddEntry 声明一个字段。param 的含义由类型决定：
// 整数 / 浮点数是最大值，字符串是最大长度，0 表示不限制；
// TypeSet 是可选值 []string；TypeObject 是 FillerFactory
func (r *Record) AddEntry(name string, typ Type, param any) error {
	if err := r.checkDefault(typ, param); err != nil {
		return err
	}
	if _, ok := r.entries[name]; !ok {
		r.names = append(r.names, name)
	}
	r.entries[name] = &Entry{
		typ:    typ,
		params: param,
	}
	return nil
}

// Names 所有字段的名字，声明顺序
func (r *Record) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Record) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

func (r *Record) Entry(name string) (*Entry, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, errs.NewErrUnknownKey(name)
	}
	return e, nil
}

// Get 对象类型返回 Filler.DumpData 的结果
func (r *Record) Get(name string) (any, error) {
	e, err := r.Entry(name)
	if err != nil {
		return nil, err
	}
	return e.value(), nil
}

// Set 业务代码设置的值，会校验类型和大小，并且不再认为是从存储里面来的
func (r *Record) Set(name string, val any) error {
	e, err := r.Entry(name)
	if err != nil {
		return err
	}
	if e.typ == TypeObject {
		return r.fillObject(e, val, false)
	}
	val, err = r.check(name, e, val)
	if err != nil {
		return err
	}
	e.data = val
	e.fromStorage = false
	return nil
}

// Fill 从存储里面读出来的值，mapper 已经转换过类型了，这里不再校验
func (r *Record) Fill(name string, val any) error {
	e, err := r.Entry(name)
	if err != nil {
		return err
	}
	if e.typ == TypeObject {
		return r.fillObject(e, val, true)
	}
	e.data = val
	e.fromStorage = true
	return nil
}

func (r *Record) fillObject(e *Entry, val any, fromStorage bool) error {
	f, ok := e.data.(Filler)
	if !ok {
		f = e.params.(FillerFactory)()
	}
	if err := f.FillData(val); err != nil {
		return err
	}
	e.data = f
	e.fromStorage = fromStorage
	return nil
}

// MarkStored 写成功之后，有值的字段都当作是存储里面的值
func (r *Record) MarkStored() {
	for _, e := range r.entries {
		if e.IsSet() {
			e.fromStorage = true
		}
	}
}

// Remove 字段是声明好的，不允许删除
func (r *Record) Remove(name string) error {
	if _, err := r.Entry(name); err != nil {
		return err
	}
	return errs.NewErrKeyRemovalDenied(name)
}

// Values 所有字段的值
func (r *Record) Values() map[string]any {
	res := make(map[string]any, len(r.entries))
	for name, e := range r.entries {
		res[name] = e.value()
	}
	return res
}

// Clone 字段是独立的，修改副本不会影响原来的 record
func (r *Record) Clone() (*Record, error) {
	res := &Record{
		names:   append([]string(nil), r.names...),
		entries: make(map[string]*Entry, len(r.entries)),
		strict:  r.strict,
		mapper:  r.mapper,
	}
	for name, e := range r.entries {
		ce, err := e.clone()
		if err != nil {
			return nil, err
		}
		res.entries[name] = ce
	}
	return res, nil
}

func (r *Record) Mapper() Mapper {
	return r.mapper
}

func (r *Record) SetMapper(m Mapper) *Record {
	r.mapper = m
	return r
}

func (r *Record) Save(ctx context.Context, forceInsert bool) (bool, error) {
	if r.mapper == nil {
		return false, errs.ErrUnknownMapper
	}
	return r.mapper.Save(ctx, r, forceInsert)
}

func (r *Record) Load(ctx context.Context) (bool, error) {
	if r.mapper == nil {
		return false, errs.ErrUnknownMapper
	}
	return r.mapper.Load(ctx, r)
}

func (r *Record) Delete(ctx context.Context) (bool, error) {
	if r.mapper == nil {
		return false, errs.ErrUnknownMapper
	}
	return r.mapper.Delete(ctx, r)
}
