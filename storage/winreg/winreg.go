// Package winreg Windows 注册表的 storage.Registry 实现
// 只有 windows 下面能用，其他平台 New 返回配置错误
package winreg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/gotomicro/ekit/slice"
)

// 注册表的根
const (
	ClassesRoot   = "HKEY_CLASSES_ROOT"
	CurrentConfig = "HKEY_CURRENT_CONFIG"
	CurrentUser   = "HKEY_CURRENT_USER"
	LocalMachine  = "HKEY_LOCAL_MACHINE"
	Users         = "HKEY_USERS"
)

// 值的类型，数值和 Windows 的 REG_* 一致
const (
	TypeNone     uint32 = 0
	TypeString   uint32 = 1
	TypeExpandSZ uint32 = 2
	TypeBinary   uint32 = 3
	TypeDWord    uint32 = 4
	TypeMultiSZ  uint32 = 7
	TypeQWord    uint32 = 11
)

var allowedParts = []string{ClassesRoot, CurrentConfig, CurrentUser, LocalMachine, Users}

var allowedTypes = []uint32{TypeNone, TypeString, TypeExpandSZ, TypeBinary, TypeDWord, TypeMultiSZ, TypeQWord}

func checkPart(part string) error {
	if !slice.Contains[string](allowedParts, part) {
		return errs.NewErrRegistryPart(part)
	}
	return nil
}

func checkType(typ uint32) error {
	if !slice.Contains[uint32](allowedTypes, typ) {
		return errs.NewErrRegistryType(typ)
	}
	return nil
}

// 写入之前把 record 里面的值转成注册表需要的类型

func toUint64(val any) (uint64, error) {
	switch v := val.(type) {
	case nil:
		return 0, nil
	case int64:
		return uint64(v), nil
	case int:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case uint64:
		return v, nil
	case float64:
		return uint64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	}
	return 0, fmt.Errorf("cannot use %T as number", val)
}

func toStrings(val any) []string {
	switch v := val.(type) {
	case nil:
		return []string{}
	case []string:
		return v
	case string:
		if v == "" {
			return []string{}
		}
		return strings.Split(v, "\n")
	}
	return []string{fmt.Sprint(val)}
}

func toBytes(val any) []byte {
	switch v := val.(type) {
	case nil:
		return []byte{}
	case []byte:
		return v
	case string:
		return []byte(v)
	}
	return []byte(fmt.Sprint(val))
}

func toString(val any) string {
	if val == nil {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprint(val)
}
