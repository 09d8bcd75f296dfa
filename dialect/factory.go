package dialect

import (
	"sync"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/storage"
)

// Factory 按照 driver 类型找到 dialect
type Factory struct {
	lock     sync.RWMutex
	dialects map[string]Dialect
}

// NewFactory 已经注册了所有内置的 dialect
func NewFactory() *Factory {
	f := &Factory{
		dialects: make(map[string]Dialect, 8),
	}
	f.Register(storage.DriverMySQL, NewMySQL())
	f.Register(storage.DriverSQLite, NewSQLite())
	f.Register(storage.DriverPostgres, NewPostgreSQL())
	f.Register(storage.DriverMSSQL, NewTransactSQL())
	f.Register(storage.DriverOracle, NewOracle())
	f.Register(storage.DriverWinRegistry, NewEmpty())
	return f
}

// Register 同一个 driver 重复注册会覆盖
func (f *Factory) Register(driver string, d Dialect) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.dialects[driver] = d
}

func (f *Factory) Get(driver string) (Dialect, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	d, ok := f.dialects[driver]
	if !ok {
		return nil, errs.NewErrUnknownDialect(driver)
	}
	return d, nil
}
