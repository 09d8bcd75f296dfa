package sqldb

import (
	"sync"

	"github.com/coderi421/mapper/storage"
)

// Databases 每个 source 一个 Conn，第一次使用的时候创建
type Databases struct {
	sources *storage.Sources
	opts    []ConnOption

	lock  sync.Mutex
	conns map[string]*Conn
}

// NewDatabases opts 会用在每一个创建的 Conn 上
func NewDatabases(sources *storage.Sources, opts ...ConnOption) *Databases {
	return &Databases{
		sources: sources,
		opts:    opts,
		conns:   make(map[string]*Conn, 4),
	}
}

func (d *Databases) Get(source string) (*Conn, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if c, ok := d.conns[source]; ok {
		return c, nil
	}
	cfg, err := d.sources.Get(source)
	if err != nil {
		return nil, err
	}
	c, err := NewConn(cfg, d.opts...)
	if err != nil {
		return nil, err
	}
	d.conns[source] = c
	return c, nil
}

// Set 使用外部创建的 Conn，测试的时候比较方便
func (d *Databases) Set(source string, c *Conn) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.conns[source] = c
}

// Close 关闭所有的连接，返回遇到的第一个错误
func (d *Databases) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	var first error
	for name, c := range d.conns {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
		delete(d.conns, name)
	}
	return first
}
