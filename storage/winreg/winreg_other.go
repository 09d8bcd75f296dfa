//go:build !windows

package winreg

import (
	"context"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/storage"
)

var _ storage.Registry = &Registry{}

// Registry 非 windows 平台上所有操作都失败
type Registry struct{}

func New(cfg storage.Config) (*Registry, error) {
	return nil, errs.NewErrMissingCapability(storage.DriverWinRegistry, "windows")
}

func (r *Registry) Values(ctx context.Context, part, key string) ([]storage.RegistryValue, error) {
	return nil, errs.NewErrMissingCapability(storage.DriverWinRegistry, "windows")
}

func (r *Registry) Subtree(ctx context.Context, part, key string) ([]string, error) {
	return nil, errs.NewErrMissingCapability(storage.DriverWinRegistry, "windows")
}

func (r *Registry) Exec(ctx context.Context, action storage.Action, part, key string, value storage.RegistryValue) (bool, error) {
	return false, errs.NewErrMissingCapability(storage.DriverWinRegistry, "windows")
}
