package format

import (
	"bytes"
	"encoding/json"

	"github.com/coderi421/mapper/internal/errs"
)

// JSON 数字解码成 json.Number，避免大整数丢精度
type JSON struct {
	// Indent 不为空的时候输出带缩进的 JSON
	Indent string
}

func (j JSON) Unpack(data []byte) ([]map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, errs.NewErrFormat(NameJSON, err)
	}
	return emptyRows(rows), nil
}

func (j JSON) Pack(rows []map[string]any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if j.Indent != "" {
		data, err = json.MarshalIndent(emptyRows(rows), "", j.Indent)
	} else {
		data, err = json.Marshal(emptyRows(rows))
	}
	if err != nil {
		return nil, errs.NewErrFormat(NameJSON, err)
	}
	return data, nil
}
