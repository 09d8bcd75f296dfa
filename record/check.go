package record

import (
	"reflect"
	"unicode/utf8"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/gotomicro/ekit/slice"
)

// check 校验并且规范化值：整数统一成 int64，浮点数统一成 float64
// nil 表示清空，除了数组之外都允许
func (r *Record) check(name string, e *Entry, val any) (any, error) {
	if val == nil && e.typ != TypeArray {
		return nil, nil
	}
	switch e.typ {
	case TypeBoolean:
		if _, ok := val.(bool); !ok {
			return nil, errs.NewErrInvalidValue("boolean", name)
		}
		return val, nil
	case TypeInteger:
		i, ok := toInt64(val)
		if !ok {
			return nil, errs.NewErrInvalidValue("number", name)
		}
		if limit, _ := toInt64(e.params); limit > 0 && i > limit {
			return nil, errs.NewErrTooLarge(i, limit)
		}
		return i, nil
	case TypeString:
		s, ok := val.(string)
		if !ok {
			return nil, errs.NewErrInvalidValue("string", name)
		}
		size := utf8.RuneCountInString(s)
		if limit, _ := toInt64(e.params); limit > 0 && int64(size) > limit {
			return nil, errs.NewErrTooLong(size, int(limit))
		}
		return s, nil
	case TypeArray:
		rs, ok := val.([]*Record)
		if !ok {
			return nil, errs.NewErrInvalidValue("array of records", name)
		}
		return rs, nil
	case TypeFloat:
		f, ok := toFloat64(val)
		if !ok {
			return nil, errs.NewErrInvalidValue("number", name)
		}
		if limit, _ := toFloat64(e.params); limit > 0 && f > limit {
			return nil, errs.NewErrTooLarge(f, limit)
		}
		return f, nil
	case TypeSet:
		s, ok := val.(string)
		if !ok || !slice.Contains[string](e.params.([]string), s) {
			return nil, errs.NewErrNotInPreset(val)
		}
		return s, nil
	}
	return nil, errs.NewErrUnknownType(int(e.typ))
}

func (r *Record) checkDefault(typ Type, param any) error {
	switch typ {
	case TypeBoolean, TypeArray:
		return nil
	case TypeInteger, TypeString:
		if _, ok := toInt64(param); !ok {
			return errs.NewErrInvalidDefault(int(typ), "length as number")
		}
		return nil
	case TypeObject:
		if _, ok := param.(FillerFactory); !ok {
			return errs.NewErrInvalidDefault(int(typ), "filler factory")
		}
		return nil
	case TypeFloat:
		if !r.strict {
			break
		}
		if _, ok := toFloat64(param); !ok {
			return errs.NewErrInvalidDefault(int(typ), "size as number")
		}
		return nil
	case TypeSet:
		if !r.strict {
			break
		}
		if _, ok := param.([]string); !ok {
			return errs.NewErrInvalidDefault(int(typ), "list of strings")
		}
		return nil
	}
	return errs.NewErrUnknownType(int(typ))
}

func toInt64(val any) (int64, bool) {
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	}
	return 0, false
}

func toFloat64(val any) (float64, bool) {
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	if i, ok := toInt64(val); ok {
		return float64(i), true
	}
	return 0, false
}
