package mapper

import (
	"github.com/coderi421/mapper/dialect"
	"github.com/coderi421/mapper/storage"
	"github.com/coderi421/mapper/storage/sqldb"
)

type EnvOption func(e *Env)

// Env mapper 创建的时候需要的全部依赖，一般一个进程一个
type Env struct {
	Sources   *storage.Sources
	Databases *sqldb.Databases
	Dialects  *dialect.Factory
}

func NewEnv(sources *storage.Sources, opts ...EnvOption) *Env {
	e := &Env{
		Sources:  sources,
		Dialects: dialect.NewFactory(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Databases == nil {
		e.Databases = sqldb.NewDatabases(sources)
	}
	return e
}

// WithConnOptions 每个连接都会使用的选项，例如中间件和语句缓存
func WithConnOptions(opts ...sqldb.ConnOption) EnvOption {
	return func(e *Env) {
		e.Databases = sqldb.NewDatabases(e.Sources, opts...)
	}
}

func WithDialects(f *dialect.Factory) EnvOption {
	return func(e *Env) {
		e.Dialects = f
	}
}

// side 一个 source 上面的连接和方言
type side struct {
	source  string
	conn    storage.Connector
	dialect dialect.Dialect
}

func (e *Env) side(source string) (side, error) {
	cfg, err := e.Sources.Get(source)
	if err != nil {
		return side{}, err
	}
	d, err := e.Dialects.Get(cfg.Driver)
	if err != nil {
		return side{}, err
	}
	conn, err := e.Databases.Get(source)
	if err != nil {
		return side{}, err
	}
	return side{
		source:  source,
		conn:    conn,
		dialect: d,
	}, nil
}
