package model

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/record"
)

type Registry interface {
	Get(val any) (*Model, error)
	Register(val any, opts ...Option) (*Model, error)
}

type registry struct {
	// reflect.Type 可以解决命名冲突的问题
	models sync.Map
}

func NewRegistry() Registry {
	return &registry{}
}

// Get 查找元数据模型
func (r *registry) Get(val any) (*Model, error) {
	typ := reflect.TypeOf(val)
	m, ok := r.models.Load(typ)
	if ok {
		return m.(*Model), nil
	}
	return r.Register(val)
}

// Register 解析模型并且应用 opts，重复注册会覆盖之前的结果
func (r *registry) Register(val any, opts ...Option) (*Model, error) {
	m, err := r.parseModel(val)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err = opt(m); err != nil {
			return nil, err
		}
	}
	r.models.Store(reflect.TypeOf(val), m)
	return m, nil
}

// parseModel 只支持一级指针
// mapper:"column=kmpt_id,pk,size=20"
func (r *registry) parseModel(val any) (*Model, error) {
	typ := reflect.TypeOf(val)
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		return nil, errs.ErrPointerOnly
	}
	typ = typ.Elem()

	numField := typ.NumField()
	m := newModel("", numField)
	for i := 0; i < numField; i++ {
		fdStruct := typ.Field(i)
		if !fdStruct.IsExported() || fdStruct.Tag.Get(tagMapper) == "-" {
			continue
		}
		tags, err := r.parseTag(fdStruct.Tag)
		if err != nil {
			return nil, err
		}
		f, err := r.parseField(fdStruct, tags)
		if err != nil {
			return nil, err
		}
		m.addField(f)
		if _, ok := tags[tagKeyPK]; ok {
			m.PrimaryKeys = append(m.PrimaryKeys, f.Name)
		}
	}

	if tn, ok := val.(TableName); ok {
		m.TableName = tn.TableName()
	}
	if m.TableName == "" {
		m.TableName = underscoreName(typ.Name())
	}
	if sn, ok := val.(SourceName); ok {
		m.Source = sn.SourceName()
	}
	return m, nil
}

func (r *registry) parseField(fd reflect.StructField, tags map[string]string) (*Field, error) {
	f := &Field{
		Name:    tags[tagKeyName],
		ColName: tags[tagKeyColumn],
		GoName:  fd.Name,
		Type:    fd.Type,
	}
	if f.Name == "" {
		f.Name = underscoreName(fd.Name)
	}
	if f.ColName == "" {
		f.ColName = f.Name
	}

	typ, err := entryType(fd.Type, tags[tagKeyType])
	if err != nil {
		return nil, err
	}
	f.EntryType = typ

	size := tags[tagKeySize]
	switch typ {
	case record.TypeInteger, record.TypeString:
		f.Param = 0
		if size != "" {
			if f.Param, err = strconv.Atoi(size); err != nil {
				return nil, errs.NewErrInvalidTagContent(tagKeySize + "=" + size)
			}
		}
	case record.TypeFloat:
		f.Param = float64(0)
		if size != "" {
			if f.Param, err = strconv.ParseFloat(size, 64); err != nil {
				return nil, errs.NewErrInvalidTagContent(tagKeySize + "=" + size)
			}
		}
	case record.TypeSet:
		f.Param = strings.Split(tags[tagKeyValues], "|")
	case record.TypeObject:
		f.Param = fillerFactory(fd.Type)
	}
	return f, nil
}

var (
	fillerType = reflect.TypeOf((*record.Filler)(nil)).Elem()
	arrayType  = reflect.TypeOf([]*record.Record(nil))
)

// entryType 根据 go 的类型推断，标签里面的 type 优先
func entryType(typ reflect.Type, tag string) (record.Type, error) {
	switch tag {
	case "":
	case "set":
		return record.TypeSet, nil
	case "string":
		return record.TypeString, nil
	default:
		return 0, errs.NewErrInvalidTagContent(tagKeyType + "=" + tag)
	}
	if typ == arrayType {
		return record.TypeArray, nil
	}
	if typ.Kind() == reflect.Ptr && typ.Implements(fillerType) {
		return record.TypeObject, nil
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	switch typ.Kind() {
	case reflect.Bool:
		return record.TypeBoolean, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return record.TypeInteger, nil
	case reflect.Float32, reflect.Float64:
		return record.TypeFloat, nil
	case reflect.String:
		return record.TypeString, nil
	}
	return 0, errs.NewErrUnsupportedFieldType(typ.Name(), typ.Kind())
}

func fillerFactory(typ reflect.Type) record.FillerFactory {
	return func() record.Filler {
		return reflect.New(typ.Elem()).Interface().(record.Filler)
	}
}

// parseTag 没有值的 key 当作标记，例如 pk
func (r *registry) parseTag(tag reflect.StructTag) (map[string]string, error) {
	mapperTag := tag.Get(tagMapper)
	if mapperTag == "" {
		// 返回一个空的 map，这样调用者就不需要判断 nil 了
		return map[string]string{}, nil
	}
	res := make(map[string]string, 2)
	pairs := strings.Split(mapperTag, ",")
	for _, pair := range pairs {
		kv := strings.Split(pair, "=")
		switch {
		case len(kv) == 1 && kv[0] == tagKeyPK:
			res[tagKeyPK] = ""
		case len(kv) == 2 && kv[0] != "":
			res[kv[0]] = kv[1]
		default:
			return nil, errs.NewErrInvalidTagContent(pair)
		}
	}
	return res, nil
}

// underscoreName 驼峰转下划线，连续的大写字母当作一个单词
// UserName -> user_name, ID -> id, UserID -> user_id
func underscoreName(name string) string {
	runes := []rune(name)
	var buf []rune
	for i, v := range runes {
		if unicode.IsUpper(v) {
			if i != 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				buf = append(buf, '_')
			}
			buf = append(buf, unicode.ToLower(v))
		} else {
			buf = append(buf, v)
		}
	}
	return string(buf)
}
