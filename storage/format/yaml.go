package format

import (
	"bytes"

	"github.com/coderi421/mapper/internal/errs"
	"gopkg.in/yaml.v3"
)

type YAML struct{}

func (YAML) Unpack(data []byte) ([]map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []map[string]any{}, nil
	}
	var rows []map[string]any
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, errs.NewErrFormat(NameYAML, err)
	}
	return emptyRows(rows), nil
}

func (YAML) Pack(rows []map[string]any) ([]byte, error) {
	data, err := yaml.Marshal(emptyRows(rows))
	if err != nil {
		return nil, errs.NewErrFormat(NameYAML, err)
	}
	return data, nil
}
