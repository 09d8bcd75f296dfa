package format

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"github.com/coderi421/mapper/internal/errs"
)

// CSV 没有表头，列按照位置命名 "0", "1", ...
// 所有的值都是字符串，nil 写成空字符串
type CSV struct {
	// Comma 默认是 ','
	Comma rune
}

func (c CSV) Unpack(data []byte) ([]map[string]any, error) {
	r := csv.NewReader(bytes.NewReader(data))
	if c.Comma != 0 {
		r.Comma = c.Comma
	}
	// 每一行的列数可以不一样
	r.FieldsPerRecord = -1
	lines, err := r.ReadAll()
	if err != nil {
		return nil, errs.NewErrFormat(NameCSV, err)
	}
	rows := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		row := make(map[string]any, len(line))
		for i, val := range line {
			row[strconv.Itoa(i)] = val
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c CSV) Pack(rows []map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if c.Comma != 0 {
		w.Comma = c.Comma
	}
	for _, row := range rows {
		line, err := c.line(row)
		if err != nil {
			return nil, err
		}
		if err = w.Write(line); err != nil {
			return nil, errs.NewErrFormat(NameCSV, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errs.NewErrFormat(NameCSV, err)
	}
	return buf.Bytes(), nil
}

// line 按照位置排好，中间缺的列补空字符串
func (c CSV) line(row map[string]any) ([]string, error) {
	positions := make([]int, 0, len(row))
	for key := range row {
		pos, err := strconv.Atoi(key)
		if err != nil || pos < 0 {
			return nil, errs.NewErrFormat(NameCSV, fmt.Errorf("column *%s* is not a position", key))
		}
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	if len(positions) == 0 {
		return []string{}, nil
	}
	line := make([]string, positions[len(positions)-1]+1)
	for _, pos := range positions {
		line[pos] = stringify(row[strconv.Itoa(pos)])
	}
	return line, nil
}

func stringify(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return fmt.Sprint(val)
}
