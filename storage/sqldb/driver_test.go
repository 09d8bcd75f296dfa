package sqldb

import (
	"errors"
	"testing"
	"time"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/storage"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     storage.Config
		want    string
		wantErr error
	}{
		{
			name: "mysql",
			cfg: storage.Config{
				Source:   "mysql1",
				Driver:   storage.DriverMySQL,
				Location: "127.0.0.1",
				User:     "root",
				Password: "root",
				Database: "kw",
			},
			want: "root:root@tcp(127.0.0.1:3306)/kw?clientFoundRows=true",
		},
		{
			name: "sqlite",
			cfg: storage.Config{
				Source:   "lite",
				Driver:   storage.DriverSQLite,
				Location: "/tmp/",
				Database: "kw.db",
			},
			want: "/tmp/kw.db",
		},
		{
			name:    "sqlite without location",
			cfg:     storage.Config{Source: "lite", Driver: storage.DriverSQLite},
			wantErr: errs.NewErrMissingConfig("lite", "location"),
		},
		{
			name: "postgres",
			cfg: storage.Config{
				Source:     "pg",
				Driver:     storage.DriverPostgres,
				Location:   "db",
				User:       "kw",
				Password:   "it's",
				Database:   "kw",
				Timeout:    5 * time.Second,
				Attributes: map[string]string{"sslmode": "disable"},
			},
			want: `connect_timeout=5 dbname=kw host=db password='it\'s' port=5432 sslmode=disable user=kw`,
		},
		{
			name: "mssql",
			cfg: storage.Config{
				Source:   "ms",
				Driver:   storage.DriverMSSQL,
				Location: "db",
				Port:     1444,
				User:     "sa",
				Password: "pass",
				Database: "kw",
			},
			want: "sqlserver://sa:pass@db:1444?database=kw",
		},
		{
			name: "oracle",
			cfg: storage.Config{
				Source:   "ora",
				Driver:   storage.DriverOracle,
				Location: "db",
				User:     "kw",
				Password: "pass",
				Database: "XE",
			},
			want: `user="kw" password="pass" connectString="db:1521/XE"`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := LookupDriver(tc.cfg.Driver)
			require.NoError(t, err)
			dsn, err := d.DSN(tc.cfg)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.want, dsn)
		})
	}
}

func TestLookupDriver(t *testing.T) {
	_, err := LookupDriver("mongo")
	assert.Equal(t, errs.NewErrUnknownDriver("mongo"), err)
}

func TestIsDuplicate(t *testing.T) {
	testCases := []struct {
		name   string
		driver string
		err    error
		want   bool
	}{
		{
			name:   "mysql duplicate",
			driver: storage.DriverMySQL,
			err:    &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'PRIMARY'"},
			want:   true,
		},
		{
			name:   "mysql other",
			driver: storage.DriverMySQL,
			err:    &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"},
		},
		{
			name:   "postgres duplicate",
			driver: storage.DriverPostgres,
			err:    &pq.Error{Code: "23505"},
			want:   true,
		},
		{
			name:   "sqlite primary key",
			driver: storage.DriverSQLite,
			err:    sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey},
			want:   true,
		},
		{
			name:   "sqlite not null",
			driver: storage.DriverSQLite,
			err:    sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull},
		},
		{
			name:   "oracle",
			driver: storage.DriverOracle,
			err:    errors.New("ORA-00001: unique constraint violated"),
			want:   true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := LookupDriver(tc.driver)
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.IsDuplicate(tc.err))
		})
	}
}
