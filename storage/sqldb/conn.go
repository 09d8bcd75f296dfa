package sqldb

import (
	"context"
	"database/sql"
	"strconv"
	"sync"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/query"
	"github.com/coderi421/mapper/storage"
	"github.com/gotomicro/ekit/slice"
	lru "github.com/hashicorp/golang-lru"
)

var _ storage.Connector = &Conn{}

type ConnOption func(c *Conn)

// Conn 基于 database/sql 的 storage.Connector
// 第一次执行的时候才会打开连接，同一时间只能有一个事务
type Conn struct {
	cfg    storage.Config
	driver Driver
	dsn    string

	lock sync.Mutex
	db   *sql.DB
	tx   *sql.Tx

	lastResult sql.Result
	rowCount   int64
	hasCount   bool

	stmtSize int
	stmts    *lru.Cache

	mdls    []storage.Middleware
	handler storage.Handler
}

func NewConn(cfg storage.Config, opts ...ConnOption) (*Conn, error) {
	d, err := LookupDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	c := &Conn{
		cfg:    cfg,
		driver: d,
	}
	for _, opt := range opts {
		opt(c)
	}
	// 在构造的时候就检查 driver 有没有注册，而不是等到第一次使用
	if c.db == nil && !slice.Contains[string](sql.Drivers(), c.driver.SQLDriver) {
		return nil, errs.NewErrMissingCapability(cfg.Driver, c.driver.SQLDriver)
	}
	if c.stmtSize > 0 {
		c.stmts, err = lru.NewWithEvict(c.stmtSize, func(key, value any) {
			_ = value.(*sql.Stmt).Close()
		})
		if err != nil {
			return nil, err
		}
	}
	c.handler = storage.Chain(c.execute, c.mdls...)
	return c, nil
}

// WithDB 使用已经打开的 *sql.DB
func WithDB(db *sql.DB) ConnOption {
	return func(c *Conn) {
		c.db = db
	}
}

// WithDriver 替换内置的 Driver，例如接入别的 database/sql driver
func WithDriver(d Driver) ConnOption {
	return func(c *Conn) {
		c.driver = d
	}
}

// WithDSN 不使用配置生成 DSN
func WithDSN(dsn string) ConnOption {
	return func(c *Conn) {
		c.dsn = dsn
	}
}

// WithStatementCache 缓存 size 个 prepared statement，被淘汰的会被关闭
// 事务里面不使用缓存
func WithStatementCache(size int) ConnOption {
	return func(c *Conn) {
		c.stmtSize = size
	}
}

func WithMiddlewares(mdls ...storage.Middleware) ConnOption {
	return func(c *Conn) {
		c.mdls = append(c.mdls, mdls...)
	}
}

func (c *Conn) Config() storage.Config {
	return c.cfg
}

// Query 空的 SQL 直接返回空结果
func (c *Conn) Query(ctx context.Context, sqlText string, params map[string]any) ([]storage.Row, error) {
	if sqlText == "" {
		return []storage.Row{}, nil
	}
	res := c.handler(ctx, c.queryContext(sqlText, params, false))
	if res.Err != nil {
		return nil, res.Err
	}
	rows, _ := res.Result.([]storage.Row)
	return rows, nil
}

// Exec 空的 SQL 返回 false
func (c *Conn) Exec(ctx context.Context, sqlText string, params map[string]any) (bool, error) {
	if sqlText == "" {
		return false, nil
	}
	res := c.handler(ctx, c.queryContext(sqlText, params, true))
	if res.Err != nil {
		return false, res.Err
	}
	ok, _ := res.Result.(bool)
	return ok, nil
}

func (c *Conn) queryContext(sqlText string, params map[string]any, exec bool) *storage.QueryContext {
	return &storage.QueryContext{
		Type:   storage.StatementType(sqlText),
		Source: c.cfg.Source,
		Driver: c.cfg.Driver,
		Query: &query.Query{
			SQL:    sqlText,
			Params: params,
		},
		Exec: exec,
	}
}

// execute 中间件链的最后一环
func (c *Conn) execute(ctx context.Context, qc *storage.QueryContext) *storage.QueryResult {
	sqlText, args, err := bind(qc.Query.SQL, qc.Query.Params, c.driver.Placeholder)
	if err != nil {
		return &storage.QueryResult{Err: err}
	}
	if qc.Exec {
		res, err := c.exec(ctx, sqlText, args)
		if err != nil {
			return &storage.QueryResult{Err: c.wrap("exec", err)}
		}
		affected, err := res.RowsAffected()
		c.lock.Lock()
		c.lastResult = res
		c.rowCount, c.hasCount = affected, err == nil
		c.lock.Unlock()
		// driver 不支持 RowsAffected 的时候认为成功
		return &storage.QueryResult{Result: err != nil || affected > 0}
	}
	rows, err := c.query(ctx, sqlText, args)
	if err != nil {
		return &storage.QueryResult{Err: c.wrap("query", err)}
	}
	res, err := scanRows(rows)
	if err != nil {
		return &storage.QueryResult{Err: c.wrap("query", err)}
	}
	c.lock.Lock()
	c.rowCount, c.hasCount = int64(len(res)), true
	c.lock.Unlock()
	return &storage.QueryResult{Result: res}
}

// session 返回当前的事务或者连接，没有连接的时候打开
func (c *Conn) session(ctx context.Context) (*sql.DB, *sql.Tx, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.tx != nil {
		return c.db, c.tx, nil
	}
	if err := c.connectLocked(ctx); err != nil {
		return nil, nil, err
	}
	return c.db, nil, nil
}

func (c *Conn) exec(ctx context.Context, sqlText string, args []any) (sql.Result, error) {
	db, tx, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	if tx != nil {
		return tx.ExecContext(ctx, sqlText, args...)
	}
	if c.stmts == nil {
		return db.ExecContext(ctx, sqlText, args...)
	}
	stmt, err := c.prepared(ctx, db, sqlText)
	if err != nil {
		return nil, err
	}
	return stmt.ExecContext(ctx, args...)
}

func (c *Conn) query(ctx context.Context, sqlText string, args []any) (*sql.Rows, error) {
	db, tx, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	if tx != nil {
		return tx.QueryContext(ctx, sqlText, args...)
	}
	if c.stmts == nil {
		return db.QueryContext(ctx, sqlText, args...)
	}
	stmt, err := c.prepared(ctx, db, sqlText)
	if err != nil {
		return nil, err
	}
	return stmt.QueryContext(ctx, args...)
}

func (c *Conn) prepared(ctx context.Context, db *sql.DB, sqlText string) (*sql.Stmt, error) {
	if val, ok := c.stmts.Get(sqlText); ok {
		return val.(*sql.Stmt), nil
	}
	stmt, err := db.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	c.stmts.Add(sqlText, stmt)
	return stmt, nil
}

func (c *Conn) connectLocked(ctx context.Context) error {
	if c.db != nil {
		return nil
	}
	dsn := c.dsn
	if dsn == "" {
		var err error
		dsn, err = c.driver.DSN(c.cfg)
		if err != nil {
			return err
		}
	}
	db, err := sql.Open(c.driver.SQLDriver, dsn)
	if err != nil {
		return errs.NewErrStorage("connect", err)
	}
	if c.driver.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.driver.MaxOpenConns)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return errs.NewErrStorage("connect", err)
	}
	for _, stmt := range c.driver.AfterConnect {
		if _, err = db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return errs.NewErrStorage("connect", err)
		}
	}
	c.db = db
	return nil
}

// wrap 唯一键冲突的错误同时是 ErrDuplicateKey 和 ErrStorage
func (c *Conn) wrap(op string, err error) error {
	res := errs.NewErrStorage(op, err)
	if c.driver.IsDuplicate != nil && c.driver.IsDuplicate(err) {
		return errs.NewErrDuplicateKey(res)
	}
	return res
}

func (c *Conn) Begin(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.tx != nil {
		return errs.ErrTxInProgress
	}
	if err := c.connectLocked(ctx); err != nil {
		return err
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.NewErrStorage("begin", err)
	}
	c.tx = tx
	return nil
}

func (c *Conn) Commit() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.tx == nil {
		return errs.ErrNoTransaction
	}
	err := c.tx.Commit()
	c.tx = nil
	if err != nil {
		return errs.NewErrStorage("commit", err)
	}
	return nil
}

func (c *Conn) Rollback() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.tx == nil {
		return errs.ErrNoTransaction
	}
	err := c.tx.Rollback()
	c.tx = nil
	if err != nil && err != sql.ErrTxDone {
		return errs.NewErrStorage("rollback", err)
	}
	return nil
}

func (c *Conn) LastInsertID() (string, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.lastResult == nil {
		return "", false
	}
	id, err := c.lastResult.LastInsertId()
	if err != nil {
		return "", false
	}
	return strconv.FormatInt(id, 10), true
}

func (c *Conn) RowCount() (int64, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.rowCount, c.hasCount
}

func (c *Conn) IsConnected() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.db != nil
}

// Reconnect 关闭当前的连接，没有提交的事务会被回滚
func (c *Conn) Reconnect() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.closeLocked()
}

func (c *Conn) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.closeLocked()
}

func (c *Conn) closeLocked() error {
	if c.stmts != nil {
		c.stmts.Purge()
	}
	if c.tx != nil {
		_ = c.tx.Rollback()
		c.tx = nil
	}
	c.lastResult = nil
	c.hasCount = false
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	if err != nil {
		return errs.NewErrStorage("close", err)
	}
	return nil
}

// scanRows 读取所有的行，[]byte 转换成 string
func scanRows(rows *sql.Rows) ([]storage.Row, error) {
	defer func() {
		_ = rows.Close()
	}()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res := make([]storage.Row, 0, 8)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(storage.Row, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = vals[i]
		}
		res = append(res, row)
	}
	return res, rows.Err()
}
