// Package format 文件表内容的编码方式
// 一个文件就是一张表，内容是若干行，每行的 key 是列名
package format

import (
	"github.com/coderi421/mapper/internal/errs"
)

// Format 在行和字节之间转换
// 空内容 Unpack 之后是空表
type Format interface {
	Unpack(data []byte) ([]map[string]any, error)
	Pack(rows []map[string]any) ([]byte, error)
}

const (
	NameJSON    = "json"
	NameYAML    = "yaml"
	NameMsgPack = "msgpack"
	NameCSV     = "csv"
)

// ByName 按照配置里面的名字拿到 Format
func ByName(name string) (Format, error) {
	switch name {
	case NameJSON:
		return JSON{}, nil
	case NameYAML, "yml":
		return YAML{}, nil
	case NameMsgPack:
		return MsgPack{}, nil
	case NameCSV:
		return CSV{}, nil
	}
	return nil, errs.NewErrUnknownFormat(name)
}

func emptyRows(rows []map[string]any) []map[string]any {
	if rows == nil {
		return []map[string]any{}
	}
	return rows
}
