package record

// Type entry 里面值的类型
type Type uint8

const (
	TypeBoolean Type = iota + 1
	TypeInteger
	TypeString
	// TypeArray 其它 record 组成的切片
	TypeArray
	// TypeObject 需要一个 Filler 来保存
	TypeObject
	// TypeFloat 和 TypeSet 只有 strict 的 record 才支持
	TypeFloat
	TypeSet
)

func (t Type) String() string {
	switch t {
	case TypeBoolean:
		return "boolean"
	case TypeInteger:
		return "integer"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	case TypeFloat:
		return "float"
	case TypeSet:
		return "set"
	}
	return "unknown"
}

// Filler 对象类型的值，例如一段 json 对应的结构体
type Filler interface {
	FillData(data any) error
	DumpData() any
}

// FillerFactory 对象类型的 entry 用它来创建新的 Filler
type FillerFactory func() Filler

// Entry 一个字段
type Entry struct {
	typ    Type
	data   any
	params any
	// fromStorage 值是从存储里面读出来的，而不是业务代码设置的
	fromStorage bool
}

func (e *Entry) Type() Type {
	return e.typ
}

// Data 原始的值，对象类型返回的是 Filler 本身
func (e *Entry) Data() any {
	return e.data
}

// Params 声明的时候给的参数，例如字符串的最大长度
func (e *Entry) Params() any {
	return e.params
}

func (e *Entry) IsFromStorage() bool {
	return e.fromStorage
}

// IsSet 有没有值
func (e *Entry) IsSet() bool {
	return e.data != nil
}

func (e *Entry) value() any {
	if e.typ != TypeObject {
		return e.data
	}
	if f, ok := e.data.(Filler); ok {
		return f.DumpData()
	}
	return nil
}

func (e *Entry) clone() (*Entry, error) {
	res := *e
	switch e.typ {
	case TypeArray:
		if rs, ok := e.data.([]*Record); ok {
			cp := make([]*Record, len(rs))
			copy(cp, rs)
			res.data = cp
		}
	case TypeObject:
		old, ok := e.data.(Filler)
		if !ok {
			break
		}
		f := e.params.(FillerFactory)()
		if err := f.FillData(old.DumpData()); err != nil {
			return nil, err
		}
		res.data = f
	}
	return &res, nil
}
