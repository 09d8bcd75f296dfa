//go:build windows

package winreg

import (
	"context"
	"errors"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/storage"
	"golang.org/x/sys/windows/registry"
)

var _ storage.Registry = &Registry{}

var roots = map[string]registry.Key{
	ClassesRoot:   registry.CLASSES_ROOT,
	CurrentConfig: registry.CURRENT_CONFIG,
	CurrentUser:   registry.CURRENT_USER,
	LocalMachine:  registry.LOCAL_MACHINE,
	Users:         registry.USERS,
}

// Registry 每一次操作都单独打开和关闭 key
type Registry struct{}

func New(cfg storage.Config) (*Registry, error) {
	return &Registry{}, nil
}

func (r *Registry) open(part, key string, access uint32) (registry.Key, error) {
	if err := checkPart(part); err != nil {
		return 0, err
	}
	k, err := registry.OpenKey(roots[part], key, access)
	if err != nil {
		return 0, errs.NewErrRegistryAccess(key, err)
	}
	return k, nil
}

func (r *Registry) Values(ctx context.Context, part, key string) ([]storage.RegistryValue, error) {
	if key == "" {
		return []storage.RegistryValue{}, nil
	}
	k, err := r.open(part, key, registry.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer k.Close()

	names, err := k.ReadValueNames(-1)
	if err != nil {
		return nil, errs.NewErrRegistryAccess(key, err)
	}
	res := make([]storage.RegistryValue, 0, len(names))
	for _, name := range names {
		val, err := read(k, name)
		if err != nil {
			return nil, errs.NewErrRegistryAccess(key, err)
		}
		res = append(res, val)
	}
	return res, nil
}

func read(k registry.Key, name string) (storage.RegistryValue, error) {
	_, typ, err := k.GetValue(name, nil)
	if err != nil {
		return storage.RegistryValue{}, err
	}
	res := storage.RegistryValue{Name: name, Type: typ}
	switch typ {
	case TypeString, TypeExpandSZ:
		res.Content, _, err = k.GetStringValue(name)
	case TypeMultiSZ:
		res.Content, _, err = k.GetStringsValue(name)
	case TypeDWord, TypeQWord:
		res.Content, _, err = k.GetIntegerValue(name)
	case TypeBinary:
		res.Content, _, err = k.GetBinaryValue(name)
	}
	// 其他类型只返回名字
	if errors.Is(err, registry.ErrUnexpectedType) {
		err = nil
	}
	return res, err
}

func (r *Registry) Subtree(ctx context.Context, part, key string) ([]string, error) {
	if key == "" {
		return []string{}, nil
	}
	k, err := r.open(part, key, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, err
	}
	defer k.Close()
	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, errs.NewErrRegistryAccess(key, err)
	}
	return names, nil
}

func (r *Registry) Exec(ctx context.Context, action storage.Action, part, key string, value storage.RegistryValue) (bool, error) {
	if key == "" {
		return false, nil
	}
	if err := checkPart(part); err != nil {
		return false, err
	}
	if err := checkType(value.Type); err != nil {
		return false, err
	}
	switch action {
	case storage.ActionInsert, storage.ActionUpdate:
	case storage.ActionDelete:
		return false, errs.NewErrRegistryDelete(key)
	default:
		return false, nil
	}

	k, err := r.open(part, key, registry.SET_VALUE)
	if err != nil {
		return false, err
	}
	defer k.Close()
	if err = write(k, value); err != nil {
		return false, errs.NewErrRegistryAccess(key, err)
	}
	return true, nil
}

func write(k registry.Key, value storage.RegistryValue) error {
	switch value.Type {
	case TypeString:
		return k.SetStringValue(value.Name, toString(value.Content))
	case TypeExpandSZ:
		return k.SetExpandStringValue(value.Name, toString(value.Content))
	case TypeMultiSZ:
		return k.SetStringsValue(value.Name, toStrings(value.Content))
	case TypeDWord:
		n, err := toUint64(value.Content)
		if err != nil {
			return err
		}
		return k.SetDWordValue(value.Name, uint32(n))
	case TypeQWord:
		n, err := toUint64(value.Content)
		if err != nil {
			return err
		}
		return k.SetQWordValue(value.Name, n)
	case TypeBinary:
		return k.SetBinaryValue(value.Name, toBytes(value.Content))
	}
	return k.SetBinaryValue(value.Name, []byte{})
}
