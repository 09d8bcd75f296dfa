package model

import (
	"reflect"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/record"
)

// Write 把结构体的值写到 record 里面
// nil 指针不写，零值的主键也不写，留给存储去生成
func (m *Model) Write(src any, r *record.Record) error {
	val, err := structValue(src)
	if err != nil {
		return err
	}
	for _, f := range m.Fields {
		if f.GoName == "" {
			continue
		}
		fd := val.FieldByName(f.GoName)
		if m.IsPrimaryKey(f.Name) && fd.IsZero() {
			continue
		}
		if fd.Kind() == reflect.Ptr && f.EntryType != record.TypeObject {
			if fd.IsNil() {
				continue
			}
			fd = fd.Elem()
		}
		v := fd.Interface()
		if f.EntryType == record.TypeObject {
			if fd.IsNil() {
				continue
			}
			v = v.(record.Filler).DumpData()
		}
		if err = r.Set(f.Name, v); err != nil {
			return err
		}
	}
	return nil
}

// Read 把 record 的值读到结构体里面，record 里面没有值的字段置为零值
func (m *Model) Read(r *record.Record, dst any) error {
	val, err := structValue(dst)
	if err != nil {
		return err
	}
	for _, f := range m.Fields {
		if f.GoName == "" {
			continue
		}
		e, err := r.Entry(f.Name)
		if err != nil {
			return err
		}
		fd := val.FieldByName(f.GoName)
		if !e.IsSet() {
			fd.Set(reflect.Zero(fd.Type()))
			continue
		}
		if f.EntryType == record.TypeObject {
			// 直接使用 record 里面的 Filler
			fv := reflect.ValueOf(e.Data())
			if !fv.Type().AssignableTo(fd.Type()) {
				return errs.NewErrUnsupportedFieldType(f.GoName, fv.Type())
			}
			fd.Set(fv)
			continue
		}
		if err = setValue(fd, e.Data(), f.GoName); err != nil {
			return err
		}
	}
	return nil
}

func setValue(fd reflect.Value, data any, name string) error {
	target := fd.Type()
	if target.Kind() == reflect.Ptr {
		target = target.Elem()
	}
	rv := reflect.ValueOf(data)
	if !rv.Type().ConvertibleTo(target) {
		return errs.NewErrUnsupportedFieldType(name, rv.Type())
	}
	cv := rv.Convert(target)
	if fd.Kind() == reflect.Ptr {
		ptr := reflect.New(target)
		ptr.Elem().Set(cv)
		fd.Set(ptr)
		return nil
	}
	fd.Set(cv)
	return nil
}

func structValue(val any) (reflect.Value, error) {
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, errs.ErrPointerOnly
	}
	return rv.Elem(), nil
}
