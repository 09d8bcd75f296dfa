// Package config 从配置文件里面读取所有的 source
//
//	sources:
//	  mysql1:
//	    driver: mysql
//	    location: 127.0.0.1
//	    port: 3306
//	    user: root
//	    password: ${MYSQL_PASSWORD}
//	    database: kw
//	    timeout: 5s
//	    attributes:
//	      charset: utf8mb4
//
// 注意 viper 的 key 是大小写不敏感的，所以 source 的名字都会变成小写
package config

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/storage"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const sourcesKey = "sources"

type LoaderOption func(l *Loader)

type Loader struct {
	v        *viper.Viper
	envFiles []string
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		v: viper.New(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WithEnvFiles 在读取配置之前先把这些 .env 文件加载到环境变量里面
// 已经存在的环境变量不会被覆盖
func WithEnvFiles(files ...string) LoaderOption {
	return func(l *Loader) {
		l.envFiles = files
	}
}

// WithEnvPrefix 允许用环境变量覆盖配置，例如 prefix 为 MAPPER 的时候
// MAPPER_SOURCES_MYSQL1_PASSWORD 覆盖 sources.mysql1.password
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.v.SetEnvPrefix(prefix)
		l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		l.v.AutomaticEnv()
	}
}

// WithFs 从指定的文件系统读取配置文件，测试的时候用 afero.NewMemMapFs
func WithFs(fs afero.Fs) LoaderOption {
	return func(l *Loader) {
		l.v.SetFs(fs)
	}
}

// Load 读取 path 指向的配置文件，格式由扩展名决定
func Load(path string, opts ...LoaderOption) (*storage.Sources, error) {
	return NewLoader(opts...).Load(path)
}

func (l *Loader) Load(path string) (*storage.Sources, error) {
	if err := l.loadEnv(); err != nil {
		return nil, err
	}
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, errs.NewErrReadConfig(path, err)
	}
	return l.sources()
}

// Read 从 r 里面读取配置，typ 是 yaml / json / toml 这一类
func (l *Loader) Read(r io.Reader, typ string) (*storage.Sources, error) {
	if err := l.loadEnv(); err != nil {
		return nil, err
	}
	l.v.SetConfigType(typ)
	if err := l.v.ReadConfig(r); err != nil {
		return nil, errs.NewErrReadConfig(typ, err)
	}
	return l.sources()
}

func (l *Loader) loadEnv() error {
	if len(l.envFiles) == 0 {
		return nil
	}
	if err := godotenv.Load(l.envFiles...); err != nil {
		return errs.NewErrReadConfig(strings.Join(l.envFiles, ","), err)
	}
	return nil
}

func (l *Loader) sources() (*storage.Sources, error) {
	names := make([]string, 0)
	for name := range l.v.GetStringMap(sourcesKey) {
		names = append(names, name)
	}
	sort.Strings(names)

	res, _ := storage.NewSources()
	for _, name := range names {
		cfg, err := l.source(name)
		if err != nil {
			return nil, err
		}
		if err = res.Add(cfg); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (l *Loader) source(name string) (storage.Config, error) {
	key := func(field string) string {
		return sourcesKey + "." + name + "." + field
	}
	driver := l.v.GetString(key("driver"))
	if !storage.ValidDriver(driver) {
		return storage.Config{}, errs.NewErrUnknownDriver(driver)
	}
	raw := os.ExpandEnv(l.v.GetString(key("location")))
	location, err := homedir.Expand(raw)
	if err != nil {
		return storage.Config{}, errs.NewErrReadConfig(key("location"), err)
	}
	// sqlite 的 location 是目录，Expand 会去掉结尾的 /
	if strings.HasSuffix(raw, "/") && !strings.HasSuffix(location, "/") {
		location += "/"
	}
	return storage.Config{
		Source:     name,
		Driver:     driver,
		Location:   location,
		Port:       l.v.GetInt(key("port")),
		User:       os.ExpandEnv(l.v.GetString(key("user"))),
		Password:   os.ExpandEnv(l.v.GetString(key("password"))),
		Database:   os.ExpandEnv(l.v.GetString(key("database"))),
		Persistent: l.v.GetBool(key("persistent")),
		Timeout:    l.v.GetDuration(key("timeout")),
		Attributes: l.v.GetStringMapString(key("attributes")),
	}, nil
}
