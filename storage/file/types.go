// Package file 文件表的原始内容放在哪里
package file

import "context"

// Storage 按照路径读写整个文件，不关心内容的格式
// 内容不存在的时候 Load 返回 errs.ErrNotExist
type Storage interface {
	Load(ctx context.Context, path string) ([]byte, error)
	Save(ctx context.Context, path string, content []byte) error
	Remove(ctx context.Context, path string) error
}
