package errs

import (
	"errors"
	"fmt"
)

// 错误分类，上层通过 errors.Is 判断属于哪一类
var (
	// ErrConfig 配置错误：未知的 source、driver，错误的 relation / primary key 设置
	ErrConfig = errors.New("mapper: configuration error")
	// ErrValidation 记录校验错误：类型不对、超长、未知字段
	ErrValidation = errors.New("mapper: validation error")
	// ErrJoin join 解析错误
	ErrJoin = errors.New("mapper: join resolution error")
	// ErrStorage 存储执行错误，包裹原始的 driver 错误
	ErrStorage = errors.New("mapper: storage error")
	// ErrDuplicateKey 唯一键或主键冲突，force insert 时据此回退到 update
	ErrDuplicateKey = errors.New("mapper: duplicate key")
)

var (
	ErrEmptySource    = fmt.Errorf("%w: source name is empty", ErrConfig)
	ErrUnknownMapper  = fmt.Errorf("%w: unknown entry mapper", ErrConfig)
	ErrNoProperties   = fmt.Errorf("%w: no properties to write", ErrValidation)
	ErrNotConnected   = fmt.Errorf("%w: not connected", ErrStorage)
	ErrNoTransaction  = fmt.Errorf("%w: no transaction in progress", ErrStorage)
	ErrTxInProgress   = fmt.Errorf("%w: transaction already in progress", ErrStorage)
	ErrPointerOnly    = fmt.Errorf("%w: only pointer to struct is supported", ErrConfig)
	ErrReadOnlyPreset = fmt.Errorf("%w: predefined content is read only", ErrStorage)
	// ErrNotExist 文件表的内容还不存在，当作空表
	ErrNotExist = fmt.Errorf("%w: content does not exist", ErrStorage)
)

// NewErrUnknownSource source 没有注册
func NewErrUnknownSource(name string) error {
	return fmt.Errorf("%w: unknown source *%s*", ErrConfig, name)
}

// NewErrUnknownDriver driver 没有注册
func NewErrUnknownDriver(driver string) error {
	return fmt.Errorf("%w: wanted driver *%s* does not exist", ErrConfig, driver)
}

// NewErrMissingCapability 运行时缺少 driver 需要的扩展，例如没有注册的 database/sql driver
func NewErrMissingCapability(driver, capability string) error {
	return fmt.Errorf("%w: driver *%s* needs *%s*", ErrConfig, driver, capability)
}

// NewErrMissingConfig source 缺少必须的配置项
func NewErrMissingConfig(source, field string) error {
	return fmt.Errorf("%w: source *%s* needs *%s*", ErrConfig, source, field)
}

// NewErrReadConfig 配置文件读不出来或者格式不对
func NewErrReadConfig(path string, err error) error {
	return fmt.Errorf("%w: cannot read *%s*: %w", ErrConfig, path, err)
}

func NewErrUnknownDialect(kind string) error {
	return fmt.Errorf("%w: unknown dialect *%s*", ErrConfig, kind)
}

// NewErrUnknownPrimaryKey 主键必须在 relation map 里面
func NewErrUnknownPrimaryKey(key string) error {
	return fmt.Errorf("%w: primary key *%s* is not in relations", ErrConfig, key)
}

func NewErrUnknownField(field string) error {
	return fmt.Errorf("%w: unknown field %s", ErrConfig, field)
}

// NewErrUnsupportedFieldType 结构体字段的类型没办法映射成 entry
func NewErrUnsupportedFieldType(field string, typ any) error {
	return fmt.Errorf("%w: field %s has unsupported type %v", ErrConfig, field, typ)
}

func NewErrInvalidTagContent(pair string) error {
	return fmt.Errorf("%w: invalid tag content *%s*", ErrConfig, pair)
}

func NewErrUnknownOperation(op string) error {
	return fmt.Errorf("%w: unknown operation *%s*", ErrValidation, op)
}

func NewErrUnknownAggregate(agg string) error {
	return fmt.Errorf("%w: unknown aggregate function *%s*", ErrValidation, agg)
}

func NewErrUnknownDirection(dir string) error {
	return fmt.Errorf("%w: unknown direction *%s*", ErrValidation, dir)
}

// NewErrUnavailableJoin 当前 dialect 不支持的 join 类型
func NewErrUnavailableJoin(side string) error {
	return fmt.Errorf("%w: join *%s* is not available in this dialect", ErrValidation, side)
}

func NewErrUnsupportedOperation(op, dialect string) error {
	return fmt.Errorf("%w: operation *%s* is not supported by *%s*", ErrValidation, op, dialect)
}

// NewErrInvalidListValue IN / NOT IN 需要一个切片
func NewErrInvalidListValue(op string, val any) error {
	return fmt.Errorf("%w: operation *%s* needs a list, got %T", ErrValidation, op, val)
}

// NewErrUnknownKey 记录中没有这个字段
func NewErrUnknownKey(key string) error {
	return fmt.Errorf("%w: unknown key %s", ErrValidation, key)
}

func NewErrKeyRemovalDenied(key string) error {
	return fmt.Errorf("%w: key %s removal denied", ErrValidation, key)
}

func NewErrUnknownType(typ int) error {
	return fmt.Errorf("%w: unknown type %d", ErrValidation, typ)
}

// NewErrInvalidValue 写入的值类型不对
func NewErrInvalidValue(want, key string) error {
	return fmt.Errorf("%w: try to set something other than %s into key %s", ErrValidation, want, key)
}

func NewErrTooLarge(value, limit any) error {
	return fmt.Errorf("%w: try to set number larger than allowed size (%v > %v)", ErrValidation, value, limit)
}

func NewErrTooLong(size, limit int) error {
	return fmt.Errorf("%w: try to set string longer than allowed size (%d > %d)", ErrValidation, size, limit)
}

func NewErrNotInPreset(value any) error {
	return fmt.Errorf("%w: try to set *%v* that is not in preset values", ErrValidation, value)
}

func NewErrInvalidDefault(typ int, want string) error {
	return fmt.Errorf("%w: you must set %s as default for type %d", ErrConfig, want, typ)
}

func NewErrMissingParam(key string) error {
	return fmt.Errorf("%w: missing value for parameter *%s*", ErrValidation, key)
}

// NewErrUnknownParentRecord join 的父记录找不到
func NewErrUnknownParentRecord(alias string) error {
	return fmt.Errorf("%w: unknown record for parent alias *%s*", ErrJoin, alias)
}

func NewErrUnknownChildAlias(child, parent string) error {
	return fmt.Errorf("%w: unknown alias *%s* in mapper for parent *%s*", ErrJoin, child, parent)
}

func NewErrUnknownParentRelation(key, parent string) error {
	return fmt.Errorf("%w: unknown relation key *%s* in mapper for parent *%s*", ErrJoin, key, parent)
}

func NewErrUnknownChildRelation(key, child string) error {
	return fmt.Errorf("%w: unknown relation key *%s* in mapper for child *%s*", ErrJoin, key, child)
}

// NewErrSourceMismatch 两个不同的物理存储不能在一个查询里面 join
func NewErrSourceMismatch(parent, child string) error {
	return fmt.Errorf("%w: parent *%s* and child *%s* must both have the same source", ErrJoin, parent, child)
}

func NewErrUnknownTable(table string) error {
	return fmt.Errorf("%w: unknown relation table *%s*", ErrJoin, table)
}

func NewErrUnknownColumn(column, table string) error {
	return fmt.Errorf("%w: unknown relation key *%s* in mapper for table *%s*", ErrJoin, column, table)
}

func NewErrJoinUnsupported(source string) error {
	return fmt.Errorf("%w: source *%s* cannot join records", ErrJoin, source)
}

// NewErrStorage 包裹 driver 返回的错误
func NewErrStorage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// NewErrPanic driver 或者中间件 panic 了
func NewErrPanic(val any) error {
	return fmt.Errorf("%w: panic: %v", ErrStorage, val)
}

func NewErrUnknownFormat(name string) error {
	return fmt.Errorf("%w: unknown file format *%s*", ErrConfig, name)
}

// NewErrFormat 文件内容编码或者解码失败
func NewErrFormat(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, name, err)
}

func NewErrDuplicateKey(err error) error {
	return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
}

func NewErrRegistryPart(part string) error {
	return fmt.Errorf("%w: you must set correct part of registry tree, got *%s*", ErrConfig, part)
}

func NewErrRegistryType(typ uint32) error {
	return fmt.Errorf("%w: problematic registry type *%d*", ErrValidation, typ)
}

// NewErrRegistryAccess 打不开 key 或者读写失败
func NewErrRegistryAccess(key string, err error) error {
	return fmt.Errorf("%w: cannot access registry key *%s*: %w", ErrStorage, key, err)
}

func NewErrRegistryDelete(key string) error {
	return fmt.Errorf("%w: refusing to delete registry key *%s*", ErrStorage, key)
}

// NewErrInvalidPattern 内存里面匹配 REGEXP 的时候，表达式编译失败
func NewErrInvalidPattern(pattern string, err error) error {
	return fmt.Errorf("%w: invalid pattern *%s*: %w", ErrValidation, pattern, err)
}
