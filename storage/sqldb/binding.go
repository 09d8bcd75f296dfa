package sqldb

import (
	"strconv"
	"strings"

	"github.com/coderi421/mapper/internal/errs"
)

// Placeholder 位置参数的写法
type Placeholder int

const (
	// PlaceholderQuestion ?
	PlaceholderQuestion Placeholder = iota
	// PlaceholderDollar $1
	PlaceholderDollar
	// PlaceholderAtP @p1
	PlaceholderAtP
	// PlaceholderColon :1
	PlaceholderColon
)

func (p Placeholder) format(idx int) string {
	switch p {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(idx)
	case PlaceholderAtP:
		return "@p" + strconv.Itoa(idx)
	case PlaceholderColon:
		return ":" + strconv.Itoa(idx)
	}
	return "?"
}

// bind 把 :name 形式的参数换成 driver 的位置参数
// 引号里面的内容和 postgres 的 :: 类型转换不处理
// 同一个参数出现多次的时候，每次都会占用一个新的位置
func bind(sql string, params map[string]any, p Placeholder) (string, []any, error) {
	if !strings.ContainsRune(sql, ':') {
		return sql, nil, nil
	}
	var (
		sb    strings.Builder
		args  []any
		quote byte
	)
	sb.Grow(len(sql))
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		if quote != 0 {
			sb.WriteByte(c)
			if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
			sb.WriteByte(c)
		case c == ':' && i+1 < len(sql) && sql[i+1] == ':':
			sb.WriteString("::")
			i++
		case c == ':' && i+1 < len(sql) && isNameByte(sql[i+1]):
			end := i + 1
			for end < len(sql) && isNameByte(sql[end]) {
				end++
			}
			key := sql[i:end]
			val, ok := params[key]
			if !ok {
				return "", nil, errs.NewErrMissingParam(key)
			}
			args = append(args, val)
			sb.WriteString(p.format(len(args)))
			i = end - 1
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), args, nil
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
