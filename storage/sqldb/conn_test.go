package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/storage"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mysqlCfg = storage.Config{
	Source: "mysql1",
	Driver: storage.DriverMySQL,
}

func newMockConn(t *testing.T, opts ...ConnOption) (*Conn, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	c, err := NewConn(mysqlCfg, append([]ConnOption{WithDB(db)}, opts...)...)
	require.NoError(t, err)
	return c, mock
}

func TestConn_Query(t *testing.T) {
	testCases := []struct {
		name     string
		mockOf   func(mock sqlmock.Sqlmock)
		sql      string
		params   map[string]any
		wantRows []storage.Row
		wantErr  error
	}{
		{
			name:     "empty sql",
			mockOf:   func(mock sqlmock.Sqlmock) {},
			wantRows: []storage.Row{},
		},
		{
			name: "rows",
			mockOf: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name"}).
					AddRow(int64(1), []byte("Alice")).
					AddRow(int64(2), nil)
				mock.ExpectQuery("SELECT `id`, `name` FROM `kmpt` WHERE `name` = ?;").
					WithArgs("Alice").WillReturnRows(rows)
			},
			sql:    "SELECT `id`, `name` FROM `kmpt` WHERE `name` = :name_0;",
			params: map[string]any{":name_0": "Alice"},
			wantRows: []storage.Row{
				{"id": int64(1), "name": "Alice"},
				{"id": int64(2), "name": nil},
			},
		},
		{
			name: "query error",
			mockOf: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT * FROM `kmpt`;").WillReturnError(errors.New("gone away"))
			},
			sql:     "SELECT * FROM `kmpt`;",
			wantErr: errs.NewErrStorage("query", errors.New("gone away")),
		},
		{
			name:    "missing param",
			mockOf:  func(mock sqlmock.Sqlmock) {},
			sql:     "SELECT * FROM `kmpt` WHERE `id` = :id_0;",
			wantErr: errs.NewErrMissingParam(":id_0"),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, mock := newMockConn(t)
			tc.mockOf(mock)
			rows, err := c.Query(context.Background(), tc.sql, tc.params)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantRows, rows)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConn_Exec(t *testing.T) {
	testCases := []struct {
		name    string
		mockOf  func(mock sqlmock.Sqlmock)
		sql     string
		params  map[string]any
		want    bool
		wantErr error
	}{
		{
			name:   "empty sql",
			mockOf: func(mock sqlmock.Sqlmock) {},
		},
		{
			name: "affected",
			mockOf: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO `kmpt` SET `name` = ?;").
					WithArgs("Alice").WillReturnResult(sqlmock.NewResult(12, 1))
			},
			sql:    "INSERT INTO `kmpt` SET `name` = :name_0;",
			params: map[string]any{":name_0": "Alice"},
			want:   true,
		},
		{
			name: "nothing affected",
			mockOf: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM `kmpt` WHERE `id` = ?;").
					WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			sql:    "DELETE FROM `kmpt` WHERE `id` = :id_0;",
			params: map[string]any{":id_0": 3},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, mock := newMockConn(t)
			tc.mockOf(mock)
			ok, err := c.Exec(context.Background(), tc.sql, tc.params)
			assert.Equal(t, tc.wantErr, err)
			assert.Equal(t, tc.want, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConn_LastInsertID(t *testing.T) {
	c, mock := newMockConn(t)
	_, ok := c.LastInsertID()
	assert.False(t, ok)
	_, ok = c.RowCount()
	assert.False(t, ok)

	mock.ExpectExec("INSERT INTO `kmpt` SET `name` = ?;").
		WithArgs("Bob").WillReturnResult(sqlmock.NewResult(42, 1))
	_, err := c.Exec(context.Background(), "INSERT INTO `kmpt` SET `name` = :name_0;", map[string]any{":name_0": "Bob"})
	require.NoError(t, err)

	id, ok := c.LastInsertID()
	assert.True(t, ok)
	assert.Equal(t, "42", id)
	cnt, ok := c.RowCount()
	assert.True(t, ok)
	assert.Equal(t, int64(1), cnt)
}

func TestConn_DuplicateKey(t *testing.T) {
	c, mock := newMockConn(t)
	mock.ExpectExec("INSERT INTO `kmpt` SET `id` = ?;").
		WithArgs(1).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'PRIMARY'"})
	ok, err := c.Exec(context.Background(), "INSERT INTO `kmpt` SET `id` = :id_0;", map[string]any{":id_0": 1})
	assert.False(t, ok)
	assert.ErrorIs(t, err, errs.ErrDuplicateKey)
	assert.ErrorIs(t, err, errs.ErrStorage)
	var me *mysql.MySQLError
	assert.True(t, errors.As(err, &me))
}

func TestConn_Transaction(t *testing.T) {
	c, mock := newMockConn(t)
	ctx := context.Background()

	assert.Equal(t, errs.ErrNoTransaction, c.Commit())
	assert.Equal(t, errs.ErrNoTransaction, c.Rollback())

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `kmpt` SET `name` = ?;").WithArgs("x").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	require.NoError(t, c.Begin(ctx))
	assert.Equal(t, errs.ErrTxInProgress, c.Begin(ctx))
	ok, err := c.Exec(ctx, "UPDATE `kmpt` SET `name` = :name_0;", map[string]any{":name_0": "x"})
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, c.Commit())

	require.NoError(t, c.Begin(ctx))
	require.NoError(t, c.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_Reconnect(t *testing.T) {
	c, mock := newMockConn(t)
	assert.True(t, c.IsConnected())
	mock.ExpectClose()
	require.NoError(t, c.Reconnect())
	assert.False(t, c.IsConnected())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_LazyConnect(t *testing.T) {
	_, mock, err := sqlmock.NewWithDSN("lazy_connect_dsn", sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	d, err := LookupDriver(storage.DriverMySQL)
	require.NoError(t, err)
	d.SQLDriver = "sqlmock"

	c, err := NewConn(mysqlCfg, WithDriver(d), WithDSN("lazy_connect_dsn"))
	require.NoError(t, err)
	assert.False(t, c.IsConnected())

	mock.ExpectQuery("SELECT 1;").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	rows, err := c.Query(context.Background(), "SELECT 1;", nil)
	require.NoError(t, err)
	assert.Equal(t, []storage.Row{{"1": int64(1)}}, rows)
	assert.True(t, c.IsConnected())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewConn(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     storage.Config
		opts    []ConnOption
		wantErr error
	}{
		{
			name:    "unknown driver",
			cfg:     storage.Config{Source: "m", Driver: "mongo"},
			wantErr: errs.NewErrUnknownDriver("mongo"),
		},
		{
			// 没有引入 sqlserver 的 driver
			name:    "driver not registered",
			cfg:     storage.Config{Source: "ms", Driver: storage.DriverMSSQL},
			wantErr: errs.NewErrMissingCapability(storage.DriverMSSQL, "sqlserver"),
		},
		{
			name: "registered",
			cfg:  storage.Config{Source: "lite", Driver: storage.DriverSQLite, Location: ":memory:"},
		},
		{
			name: "opened outside",
			cfg:  storage.Config{Source: "ms", Driver: storage.DriverMSSQL},
			opts: []ConnOption{WithDB(&sql.DB{})},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConn(tc.cfg, tc.opts...)
			assert.Equal(t, tc.wantErr, err)
		})
	}
}

func TestConn_StatementCache(t *testing.T) {
	c, mock := newMockConn(t, WithStatementCache(1))
	ctx := context.Background()

	prep := mock.ExpectPrepare("DELETE FROM `kmpt` WHERE `id` = ?;")
	prep.ExpectExec().WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 1))
	// 容量是 1，第二条语句会把第一条淘汰
	mock.ExpectPrepare("DELETE FROM `kmpt` WHERE `name` = ?;").
		ExpectExec().WithArgs("x").WillReturnResult(sqlmock.NewResult(0, 0))

	for _, id := range []int{1, 2} {
		ok, err := c.Exec(ctx, "DELETE FROM `kmpt` WHERE `id` = :id_0;", map[string]any{":id_0": id})
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := c.Exec(ctx, "DELETE FROM `kmpt` WHERE `name` = :name_0;", map[string]any{":name_0": "x"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_Middlewares(t *testing.T) {
	var got []*storage.QueryContext
	mdl := func(next storage.Handler) storage.Handler {
		return func(ctx context.Context, qc *storage.QueryContext) *storage.QueryResult {
			got = append(got, qc)
			return next(ctx, qc)
		}
	}
	c, mock := newMockConn(t, WithMiddlewares(mdl))
	mock.ExpectExec("DELETE FROM `kmpt`;").WillReturnResult(sqlmock.NewResult(0, 1))
	_, err := c.Exec(context.Background(), "DELETE FROM `kmpt`;", nil)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "DELETE", got[0].Type)
	assert.Equal(t, "mysql1", got[0].Source)
	assert.Equal(t, storage.DriverMySQL, got[0].Driver)
	assert.True(t, got[0].Exec)
}

func TestDatabases(t *testing.T) {
	sources, err := storage.NewSources(
		storage.Config{Source: "lite", Driver: storage.DriverSQLite, Location: ":memory:"},
	)
	require.NoError(t, err)
	dbs := NewDatabases(sources)

	c1, err := dbs.Get("lite")
	require.NoError(t, err)
	c2, err := dbs.Get("lite")
	require.NoError(t, err)
	assert.Same(t, c1, c2)

	_, err = dbs.Get("nope")
	assert.Equal(t, errs.NewErrUnknownSource("nope"), err)

	mc, mock := newMockConn(t)
	dbs.Set("mysql1", mc)
	c3, err := dbs.Get("mysql1")
	require.NoError(t, err)
	assert.Same(t, mc, c3)

	mock.ExpectClose()
	assert.NoError(t, dbs.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
