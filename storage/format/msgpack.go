package format

import (
	"github.com/coderi421/mapper/internal/errs"
	"github.com/vmihailenco/msgpack/v5"
)

// MsgPack 二进制的格式，整数解码之后的类型取决于编码时的大小
type MsgPack struct{}

func (MsgPack) Unpack(data []byte) ([]map[string]any, error) {
	if len(data) == 0 {
		return []map[string]any{}, nil
	}
	var rows []map[string]any
	if err := msgpack.Unmarshal(data, &rows); err != nil {
		return nil, errs.NewErrFormat(NameMsgPack, err)
	}
	return emptyRows(rows), nil
}

func (MsgPack) Pack(rows []map[string]any) ([]byte, error) {
	data, err := msgpack.Marshal(emptyRows(rows))
	if err != nil {
		return nil, errs.NewErrFormat(NameMsgPack, err)
	}
	return data, nil
}
