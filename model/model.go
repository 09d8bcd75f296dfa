package model

import (
	"reflect"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/record"
	"github.com/gotomicro/ekit/slice"
)

// Option is a function type that modifies a Model.
type Option func(model *Model) error

// Model 一张表（或者一个文件、一段注册表）的映射定义
type Model struct {
	// TableName 表名，文件和注册表一类的 mapper 当作别名使用
	TableName string
	// Source 配置里面 source 的名字
	Source string
	// Fields 声明的顺序，也是生成 SQL 里面列的顺序
	Fields []*Field
	// PrimaryKeys 逻辑字段名
	PrimaryKeys []string

	FieldMap  map[string]*Field // 结构体 属性名 attr name 为 key  ItemId
	NameMap   map[string]*Field // record 里面的名字为 key  item_id
	ColumnMap map[string]*Field // DB column name 为 key
}

// Field 字段相关的属性
type Field struct {
	// Name record 里面的名字
	Name    string
	ColName string // 数据库中的字段名
	// GoName 手动声明的字段没有对应的结构体，为空
	GoName string
	Type   reflect.Type
	// EntryType 和 Param 用来声明 record 里面的 entry
	EntryType record.Type
	Param     any
}

// 我们支持的全部标签上的 key 都放在这里
// 方便用户查找，和我们后期维护
const (
	tagMapper    = "mapper"
	tagKeyColumn = "column"
	tagKeyName   = "name"
	tagKeyPK     = "pk"
	tagKeySize   = "size"
	tagKeyType   = "type"
	// tagKeyValues TypeSet 的可选值，用 | 分隔
	tagKeyValues = "values"
)

// TableName 用户实现这个接口来返回自定义的表名
type TableName interface {
	TableName() string
}

// SourceName 用户实现这个接口来指定 source
type SourceName interface {
	SourceName() string
}

// New 不通过结构体，手动声明一个模型
//
//	model.New("kmpt", model.WithSource("mysql1"),
//		model.WithField("id", "kmpt_id", record.TypeInteger, 0),
//		model.WithField("name", "kmpt_name", record.TypeString, 64),
//		model.WithPrimaryKeys("id"))
func New(table string, opts ...Option) (*Model, error) {
	m := newModel(table, 8)
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func newModel(table string, size int) *Model {
	return &Model{
		TableName: table,
		Fields:    make([]*Field, 0, size),
		FieldMap:  make(map[string]*Field, size),
		NameMap:   make(map[string]*Field, size),
		ColumnMap: make(map[string]*Field, size),
	}
}

func (m *Model) addField(f *Field) {
	if old, ok := m.NameMap[f.Name]; ok {
		delete(m.ColumnMap, old.ColName)
		*old = *f
		if f.ColName != "" {
			m.ColumnMap[f.ColName] = old
		}
		return
	}
	m.Fields = append(m.Fields, f)
	m.NameMap[f.Name] = f
	if f.ColName != "" {
		m.ColumnMap[f.ColName] = f
	}
	if f.GoName != "" {
		m.FieldMap[f.GoName] = f
	}
}

// Relation 逻辑字段名对应的列名，没有列的 entry 返回 false
func (m *Model) Relation(name string) (string, bool) {
	f, ok := m.NameMap[name]
	if !ok || f.ColName == "" {
		return "", false
	}
	return f.ColName, true
}

// Relations 有对应列的字段，声明顺序
func (m *Model) Relations() []*Field {
	return slice.FilterMap[*Field, *Field](m.Fields, func(idx int, src *Field) (*Field, bool) {
		return src, src.ColName != ""
	})
}

// Names 所有逻辑字段名，声明顺序
func (m *Model) Names() []string {
	return slice.Map[*Field, string](m.Fields, func(idx int, src *Field) string {
		return src.Name
	})
}

// IsPrimaryKey name 是逻辑字段名
func (m *Model) IsPrimaryKey(name string) bool {
	return slice.Contains[string](m.PrimaryKeys, name)
}

// NewRecord 按照字段声明创建一个空的 record
func (m *Model) NewRecord(opts ...record.Option) (*record.Record, error) {
	r := record.New(append([]record.Option{record.WithStrict()}, opts...)...)
	for _, f := range m.Fields {
		if err := r.AddEntry(f.Name, f.EntryType, f.Param); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// WithTableName is a Option function that sets the table name for a Model.
func WithTableName(tableName string) Option {
	return func(model *Model) error {
		model.TableName = tableName
		return nil
	}
}

func WithSource(source string) Option {
	return func(model *Model) error {
		model.Source = source
		return nil
	}
}

// WithColumnName 修改结构体字段对应的列名
func WithColumnName(field, columnName string) Option {
	return func(model *Model) error {
		// Check if the Field exists in the model's Field map
		fd, ok := model.FieldMap[field]
		if !ok {
			// Return an error if the Field is unknown
			return errs.NewErrUnknownField(field)
		}
		delete(model.ColumnMap, fd.ColName)
		fd.ColName = columnName
		model.ColumnMap[columnName] = fd
		return nil
	}
}

// WithField 手动声明一个字段，同名的会被覆盖
func WithField(name, column string, typ record.Type, param any) Option {
	return func(model *Model) error {
		model.addField(&Field{
			Name:      name,
			ColName:   column,
			EntryType: typ,
			Param:     param,
		})
		return nil
	}
}

// WithEntry 只在 record 里面的字段，没有对应的列
// 一般是 TypeArray，search 的结果会把子记录放进去
func WithEntry(name string, typ record.Type, param any) Option {
	return WithField(name, "", typ, param)
}

// WithPrimaryKeys 覆盖标签里面的 pk，主键必须是已经声明的字段
func WithPrimaryKeys(names ...string) Option {
	return func(model *Model) error {
		for _, name := range names {
			if _, ok := model.Relation(name); !ok {
				return errs.NewErrUnknownPrimaryKey(name)
			}
		}
		model.PrimaryKeys = append([]string(nil), names...)
		return nil
	}
}
