package file

import (
	"context"
	"sync"
	"time"

	"github.com/coderi421/mapper/internal/errs"
	cache "github.com/patrickmn/go-cache"
)

// Memory 内容放在进程内存里面，可以设置过期时间
type Memory struct {
	mutex      sync.RWMutex
	c          *cache.Cache
	expiration time.Duration
}

// NewMemory expiration 为 cache.NoExpiration 的时候永不过期
func NewMemory(expiration time.Duration) *Memory {
	return &Memory{
		c:          cache.New(expiration, time.Minute),
		expiration: expiration,
	}
}

func (m *Memory) Load(ctx context.Context, path string) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	val, ok := m.c.Get(path)
	if !ok {
		return nil, errs.ErrNotExist
	}
	// 返回副本，调用者修改不会影响缓存
	return append([]byte(nil), val.([]byte)...), nil
}

func (m *Memory) Save(ctx context.Context, path string, content []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.c.Set(path, append([]byte(nil), content...), m.expiration)
	return nil
}

func (m *Memory) Remove(ctx context.Context, path string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.c.Delete(path)
	return nil
}
