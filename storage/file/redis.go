package file

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coderi421/mapper/internal/errs"
	redis "github.com/redis/go-redis/v9"
)

// RedisOption is a function type for configuring a Redis.
type RedisOption func(r *Redis)

// Redis 每个文件一个 string key
type Redis struct {
	prefix     string // redis 中 key 的前缀
	client     redis.Cmdable
	expiration time.Duration // 0 表示不过期
}

func NewRedis(client redis.Cmdable, opts ...RedisOption) *Redis {
	res := &Redis{
		client: client,
		prefix: "mapper",
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

func WithExpiration(expiration time.Duration) RedisOption {
	return func(r *Redis) {
		r.expiration = expiration
	}
}

func (r *Redis) key(path string) string {
	return fmt.Sprintf("%s_%s", r.prefix, path)
}

func (r *Redis) Load(ctx context.Context, path string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errs.ErrNotExist
	}
	if err != nil {
		return nil, errs.NewErrStorage("load", err)
	}
	return data, nil
}

func (r *Redis) Save(ctx context.Context, path string, content []byte) error {
	if err := r.client.Set(ctx, r.key(path), content, r.expiration).Err(); err != nil {
		return errs.NewErrStorage("save", err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, path string) error {
	if err := r.client.Del(ctx, r.key(path)).Err(); err != nil {
		return errs.NewErrStorage("remove", err)
	}
	return nil
}
