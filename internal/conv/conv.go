// Package conv 存储读出来的值和比较的时候共用的类型转换
// 转换本身交给 cast，这里只保留和 PHP 弱类型一致的几个特殊情况
package conv

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Int64 字符串会去掉两边的空白，"1.5" 截断成 1，空字符串是 0
func Int64(val any) (int64, error) {
	if s, ok := val.(string); ok {
		val = strings.TrimSpace(s)
	}
	return cast.ToInt64E(val)
}

func Float64(val any) (float64, error) {
	if s, ok := val.(string); ok {
		val = strings.TrimSpace(s)
	}
	return cast.ToFloat64E(val)
}

// Bool 除了 strconv.ParseBool 认识的写法，还认识 yes/no、on/off、y/n 和空字符串，
// 数字格式的字符串按照是不是 0 处理
func Bool(val any) (bool, error) {
	s, ok := val.(string)
	if !ok {
		return cast.ToBoolE(val)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n", "no", "off":
		return false, nil
	case "y", "yes", "on":
		return true, nil
	}
	if b, err := cast.ToBoolE(strings.TrimSpace(s)); err == nil {
		return b, nil
	}
	n, err := Int64(s)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// String 和 PHP 的 strval 一样，true 是 "1"，false 和 nil 是空字符串
func String(val any) string {
	if b, ok := val.(bool); ok {
		if b {
			return "1"
		}
		return ""
	}
	s, err := cast.ToStringE(val)
	if err != nil {
		return fmt.Sprint(val)
	}
	return s
}

// Number 数字、布尔值和数字格式的字符串，空字符串不算
func Number(val any) (float64, bool) {
	switch v := val.(type) {
	case nil:
		return 0, false
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, false
		}
	}
	f, err := Float64(val)
	return f, err == nil
}
