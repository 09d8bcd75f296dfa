package mapper

import (
	"encoding/json"
	"reflect"

	"github.com/coderi421/mapper/internal/conv"
	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/record"
)

// fromStorage 把存储返回的值转换成 entry 声明的类型
// 数据库和文件返回的大多是字符串、[]byte、json.Number 或者各种宽度的整数
func fromStorage(name string, typ record.Type, val any) (any, error) {
	if val == nil {
		return nil, nil
	}
	if b, ok := val.([]byte); ok && typ != record.TypeArray {
		val = string(b)
	}
	switch typ {
	case record.TypeBoolean:
		return toBool(name, val)
	case record.TypeInteger:
		n, err := conv.Int64(val)
		if err != nil {
			return nil, errs.NewErrInvalidValue("number", name)
		}
		return n, nil
	case record.TypeFloat:
		f, err := conv.Float64(val)
		if err != nil {
			return nil, errs.NewErrInvalidValue("number", name)
		}
		return f, nil
	case record.TypeString, record.TypeSet:
		return conv.String(val), nil
	}
	// 数组和对象原样交给 record
	return val, nil
}

func toBool(name string, val any) (bool, error) {
	b, err := conv.Bool(val)
	if err != nil {
		return false, errs.NewErrInvalidValue("boolean", name)
	}
	return b, nil
}

// isEmpty 0、空字符串、false、空的 slice 都算没有值
func isEmpty(val any) bool {
	if val == nil {
		return true
	}
	switch v := val.(type) {
	case string:
		return v == "" || v == "0"
	case bool:
		return !v
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	}
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// FillRecord 把一行数据当作从存储里面读出来的值写到 r，值按照 entry 的类型转换
// row 的 key 是 record 里面的名字，r 里面没有的 key 会被忽略
func FillRecord(r *record.Record, row map[string]any) error {
	return fill(r, row)
}

func fill(r *record.Record, row map[string]any) error {
	for key, val := range row {
		e, err := r.Entry(key)
		if err != nil {
			continue
		}
		data, err := fromStorage(key, e.Type(), val)
		if err != nil {
			return err
		}
		if err = r.Fill(key, data); err != nil {
			return err
		}
	}
	return nil
}
