package mapper

// Option 所有 mapper 共用的选项，和具体存储无关的选项会被忽略
type Option func(o *options)

type options struct {
	before map[Op][]Hook
	after  map[Op][]Hook
	fks    []ForeignKey

	alias string

	// database
	readSource  string
	writeSource string

	// file table
	orderFromFirst bool
}

func newOptions(opts []Option) *options {
	o := &options{
		before:         make(map[Op][]Hook, 4),
		after:          make(map[Op][]Hook, 4),
		orderFromFirst: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithBefore 按照注册的顺序执行，遇到 false 或者 error 就停止
func WithBefore(op Op, hooks ...Hook) Option {
	return func(o *options) {
		o.before[op] = append(o.before[op], hooks...)
	}
}

func WithAfter(op Op, hooks ...Hook) Option {
	return func(o *options) {
		o.after[op] = append(o.after[op], hooks...)
	}
}

// WithForeignKey 注册一个外键，remote 在 join 的时候才会调用
// 两边的字段是不是存在也是在 join 的时候才检查
func WithForeignKey(alias string, remote func() Mapper, localKey, remoteKey string) Option {
	return func(o *options) {
		for i, fk := range o.fks {
			if fk.Alias == alias {
				o.fks = append(o.fks[:i], o.fks[i+1:]...)
				break
			}
		}
		o.fks = append(o.fks, ForeignKey{
			Alias:     alias,
			LocalKey:  localKey,
			RemoteKey: remoteKey,
			remote:    remote,
		})
	}
}

// WithAlias 覆盖默认的别名，默认是表名
func WithAlias(alias string) Option {
	return func(o *options) {
		o.alias = alias
	}
}

// WithReadSource 读写分离的时候读的 source，默认是 model 的 source
func WithReadSource(source string) Option {
	return func(o *options) {
		o.readSource = source
	}
}

// WithWriteSource 读写分离的时候写的 source
func WithWriteSource(source string) Option {
	return func(o *options) {
		o.writeSource = source
	}
}

// WithOrderFromFirst 文件表插入新的行的时候放在最后面（true）还是最前面
func WithOrderFromFirst(fromFirst bool) Option {
	return func(o *options) {
		o.orderFromFirst = fromFirst
	}
}

// WithSplitSources 同时设置读写两个 source
func WithSplitSources(read, write string) Option {
	return func(o *options) {
		o.readSource = read
		o.writeSource = write
	}
}
