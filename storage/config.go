package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/gotomicro/ekit/slice"
)

// 支持的 driver 类型，dialect 和 connector 都按照这个查找
const (
	DriverMySQL       = "mysql"
	DriverMSSQL       = "mssql"
	DriverOracle      = "oracle"
	DriverPostgres    = "postgres"
	DriverSQLite      = "sqlite"
	DriverWinRegistry = "winreg"
)

var drivers = []string{DriverMySQL, DriverMSSQL, DriverOracle, DriverPostgres, DriverSQLite, DriverWinRegistry}

// ValidDriver 是不是认识的 driver
func ValidDriver(driver string) bool {
	return slice.Contains[string](drivers, driver)
}

// Config 一个 source 的配置
type Config struct {
	// Source 注册的名字，mapper 通过它找到配置
	Source   string
	Driver   string
	Location string
	Port     int
	User     string
	Password string
	// Database 数据库或者 schema 的名字
	Database   string
	Persistent bool
	Timeout    time.Duration
	// Attributes driver 自己的参数，例如 mysql 的 charset
	Attributes map[string]string
}

// Sources 所有注册的 source，一般在启动的时候初始化一次
type Sources struct {
	lock    sync.RWMutex
	configs map[string]Config
}

func NewSources(cfgs ...Config) (*Sources, error) {
	s := &Sources{
		configs: make(map[string]Config, len(cfgs)),
	}
	for _, cfg := range cfgs {
		if err := s.Add(cfg); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add 同名的 source 会被覆盖
func (s *Sources) Add(cfg Config) error {
	if cfg.Source == "" {
		return errs.ErrEmptySource
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.configs[cfg.Source] = cfg
	return nil
}

func (s *Sources) Get(name string) (Config, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	cfg, ok := s.configs[name]
	if !ok {
		return Config{}, errs.NewErrUnknownSource(name)
	}
	return cfg, nil
}

// Names 按字母序返回所有 source 的名字
func (s *Sources) Names() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	res := make([]string, 0, len(s.configs))
	for name := range s.configs {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}
