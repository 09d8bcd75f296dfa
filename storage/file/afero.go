package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/spf13/afero"
)

type AferoOption func(a *Afero)

// Afero 本地文件，测试的时候可以换成 afero.NewMemMapFs
type Afero struct {
	fs   afero.Fs
	base string
	perm os.FileMode
}

func NewAfero(fs afero.Fs, opts ...AferoOption) *Afero {
	res := &Afero{
		fs:   fs,
		perm: 0o644,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// WithBaseDir 相对路径都基于这个目录
func WithBaseDir(dir string) AferoOption {
	return func(a *Afero) {
		a.base = dir
	}
}

func WithPerm(perm os.FileMode) AferoOption {
	return func(a *Afero) {
		a.perm = perm
	}
}

func (a *Afero) path(path string) string {
	if a.base == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.base, path)
}

func (a *Afero) Load(ctx context.Context, path string) ([]byte, error) {
	data, err := afero.ReadFile(a.fs, a.path(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, errs.ErrNotExist
	}
	if err != nil {
		return nil, errs.NewErrStorage("load", err)
	}
	return data, nil
}

func (a *Afero) Save(ctx context.Context, path string, content []byte) error {
	full := a.path(path)
	if err := a.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errs.NewErrStorage("save", err)
	}
	if err := afero.WriteFile(a.fs, full, content, a.perm); err != nil {
		return errs.NewErrStorage("save", err)
	}
	return nil
}

func (a *Afero) Remove(ctx context.Context, path string) error {
	err := a.fs.Remove(a.path(path))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errs.NewErrStorage("remove", err)
	}
	return nil
}
