package sqldb

import (
	"errors"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/storage"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Driver 描述怎么连接某一种数据库
type Driver struct {
	// Kind 配置里面的 driver，例如 storage.DriverMySQL
	Kind string
	// SQLDriver 注册到 database/sql 的名字
	SQLDriver   string
	Placeholder Placeholder
	DSN         func(cfg storage.Config) (string, error)
	// AfterConnect 建立连接之后执行的语句
	AfterConnect []string
	// IsDuplicate 判断是不是唯一键冲突
	IsDuplicate func(err error) bool
	// MaxOpenConns 大于 0 的时候限制连接池
	MaxOpenConns int
}

var drivers = map[string]Driver{
	storage.DriverMySQL: {
		Kind:        storage.DriverMySQL,
		SQLDriver:   "mysql",
		Placeholder: PlaceholderQuestion,
		DSN:         mysqlDSN,
		IsDuplicate: func(err error) bool {
			var me *mysql.MySQLError
			return errors.As(err, &me) && me.Number == 1062
		},
	},
	storage.DriverSQLite: {
		Kind:        storage.DriverSQLite,
		SQLDriver:   "sqlite3",
		Placeholder: PlaceholderQuestion,
		DSN:         sqliteDSN,
		AfterConnect: []string{
			"PRAGMA main.cache_size = 10000;",
			"PRAGMA main.temp_store = MEMORY;",
			"PRAGMA foreign_keys = ON;",
			"PRAGMA main.journal_mode = WAL;",
		},
		IsDuplicate: func(err error) bool {
			var se sqlite3.Error
			return errors.As(err, &se) &&
				(se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
		},
		// 每个连接都要执行 PRAGMA，:memory: 的库也是每个连接一个
		MaxOpenConns: 1,
	},
	storage.DriverPostgres: {
		Kind:        storage.DriverPostgres,
		SQLDriver:   "postgres",
		Placeholder: PlaceholderDollar,
		DSN:         postgresDSN,
		IsDuplicate: func(err error) bool {
			var pe *pq.Error
			return errors.As(err, &pe) && pe.Code == "23505"
		},
	},
	// mssql 和 oracle 的 driver 需要使用者自己引入
	storage.DriverMSSQL: {
		Kind:        storage.DriverMSSQL,
		SQLDriver:   "sqlserver",
		Placeholder: PlaceholderAtP,
		DSN:         mssqlDSN,
		IsDuplicate: messageContains("Violation of PRIMARY KEY", "Violation of UNIQUE KEY"),
	},
	storage.DriverOracle: {
		Kind:        storage.DriverOracle,
		SQLDriver:   "godror",
		Placeholder: PlaceholderColon,
		DSN:         oracleDSN,
		IsDuplicate: messageContains("ORA-00001"),
	},
}

// LookupDriver 按照配置里面的 driver 找到内置的 Driver
func LookupDriver(kind string) (Driver, error) {
	d, ok := drivers[kind]
	if !ok {
		return Driver{}, errs.NewErrUnknownDriver(kind)
	}
	return d, nil
}

func messageContains(subs ...string) func(err error) bool {
	return func(err error) bool {
		for _, sub := range subs {
			if strings.Contains(err.Error(), sub) {
				return true
			}
		}
		return false
	}
}

func hostPort(cfg storage.Config, defaultPort int) string {
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(cfg.Location, strconv.Itoa(port))
}

func mysqlDSN(cfg storage.Config) (string, error) {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = hostPort(cfg, 3306)
	c.DBName = cfg.Database
	c.Timeout = cfg.Timeout
	// 更新的时候按照匹配的行数计算，而不是真的被修改的行数
	c.ClientFoundRows = true
	if len(cfg.Attributes) > 0 {
		c.Params = make(map[string]string, len(cfg.Attributes))
		for k, v := range cfg.Attributes {
			c.Params[k] = v
		}
	}
	return c.FormatDSN(), nil
}

func sqliteDSN(cfg storage.Config) (string, error) {
	dsn := cfg.Location + cfg.Database
	if dsn == "" {
		return "", errs.NewErrMissingConfig(cfg.Source, "location")
	}
	if len(cfg.Attributes) == 0 {
		return dsn, nil
	}
	vals := url.Values{}
	for k, v := range cfg.Attributes {
		vals.Set(k, v)
	}
	return dsn + "?" + vals.Encode(), nil
}

// postgresDSN key=value 的格式，值里面的单引号和反斜杠需要转义
func postgresDSN(cfg storage.Config) (string, error) {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	pairs := map[string]string{
		"host": cfg.Location,
		"port": strconv.Itoa(port),
	}
	if cfg.User != "" {
		pairs["user"] = cfg.User
	}
	if cfg.Password != "" {
		pairs["password"] = cfg.Password
	}
	if cfg.Database != "" {
		pairs["dbname"] = cfg.Database
	}
	if cfg.Timeout > 0 {
		pairs["connect_timeout"] = strconv.Itoa(int(cfg.Timeout.Seconds()))
	}
	for k, v := range cfg.Attributes {
		pairs[k] = v
	}
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(pqQuote(pairs[k]))
	}
	return sb.String(), nil
}

func pqQuote(val string) string {
	if val != "" && !strings.ContainsAny(val, ` '\`) {
		return val
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(val) + "'"
}

func mssqlDSN(cfg storage.Config) (string, error) {
	u := &url.URL{
		Scheme: "sqlserver",
		Host:   hostPort(cfg, 1433),
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	vals := url.Values{}
	if cfg.Database != "" {
		vals.Set("database", cfg.Database)
	}
	if cfg.Timeout > 0 {
		vals.Set("connection timeout", strconv.Itoa(int(cfg.Timeout.Seconds())))
	}
	for k, v := range cfg.Attributes {
		vals.Set(k, v)
	}
	u.RawQuery = vals.Encode()
	return u.String(), nil
}

func oracleDSN(cfg storage.Config) (string, error) {
	connect := hostPort(cfg, 1521) + "/" + cfg.Database
	return `user="` + cfg.User + `" password="` + cfg.Password + `" connectString="` + connect + `"`, nil
}
