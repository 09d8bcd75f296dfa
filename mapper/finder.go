package mapper

import (
	"github.com/coderi421/mapper/internal/conv"
	"github.com/coderi421/mapper/model"
	"github.com/coderi421/mapper/record"
)

// finder 在内存里面的一组 record 中查找，文件表和预设数据共用
type finder struct {
	model   *model.Model
	records []*record.Record
}

// match 返回匹配的下标
// r 里面空的字段不参与比较；usePks 的时候只比较主键，并且主键为空的时候什么都不匹配；
// wantFromStorage 的时候跳过已知 record 中不是从存储里面来的字段
func (f *finder) match(r *record.Record, usePks, wantFromStorage bool) []int {
	candidates := make([]bool, len(f.records))
	for i := range candidates {
		candidates[i] = true
	}
	for _, fd := range f.model.Relations() {
		want, err := r.Get(fd.Name)
		if err != nil || isEmpty(want) {
			if usePks && f.model.IsPrimaryKey(fd.Name) {
				return []int{}
			}
			continue
		}
		if usePks && !f.model.IsPrimaryKey(fd.Name) {
			continue
		}
		for i, known := range f.records {
			if !candidates[i] {
				continue
			}
			e, err := known.Entry(fd.Name)
			if err != nil {
				candidates[i] = false
				continue
			}
			if wantFromStorage && !e.IsFromStorage() {
				continue
			}
			val, _ := known.Get(fd.Name)
			if isEmpty(val) || conv.String(val) != conv.String(want) {
				candidates[i] = false
			}
		}
	}
	res := make([]int, 0, len(f.records))
	for i, ok := range candidates {
		if ok {
			res = append(res, i)
		}
	}
	return res
}

// copyInto 把已知 record 里面的字段复制到 r，都当作是从存储里面来的
func (f *finder) copyInto(known, r *record.Record) error {
	for _, fd := range f.model.Relations() {
		if !r.Has(fd.Name) {
			continue
		}
		val, err := known.Get(fd.Name)
		if err != nil {
			return err
		}
		if err = r.Fill(fd.Name, val); err != nil {
			return err
		}
	}
	return nil
}

func (f *finder) loadMultiple(r *record.Record) ([]*record.Record, error) {
	idx := f.match(r, false, false)
	res := make([]*record.Record, 0, len(idx))
	for _, i := range idx {
		rec, err := f.records[i].Clone()
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, nil
}

func (f *finder) load(r *record.Record) (bool, error) {
	idx := f.match(r, false, false)
	if len(idx) == 0 {
		return false, nil
	}
	return true, f.copyInto(f.records[idx[0]], r)
}

// rowsToRecords 每一行创建一个 record，行的 key 是 columnKey 给出的名字
func rowsToRecords(m *model.Model, mp Mapper, rows []map[string]any, columnKey func(fd *model.Field) string) ([]*record.Record, error) {
	res := make([]*record.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := m.NewRecord(record.WithMapper(mp))
		if err != nil {
			return nil, err
		}
		for _, fd := range m.Relations() {
			val, ok := row[columnKey(fd)]
			if !ok {
				continue
			}
			data, err := fromStorage(fd.Name, fd.EntryType, val)
			if err != nil {
				return nil, err
			}
			if err = rec.Fill(fd.Name, data); err != nil {
				return nil, err
			}
		}
		res = append(res, rec)
	}
	return res, nil
}
