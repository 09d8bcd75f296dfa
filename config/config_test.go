package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/coderi421/mapper/storage"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sourcesYAML = `
sources:
  mysql1:
    driver: mysql
    location: 127.0.0.1
    port: 3306
    user: root
    password: ${KW_MYSQL_PASSWORD}
    database: kw
    timeout: 5s
    attributes:
      charset: utf8mb4
  local:
    driver: sqlite
    location: ~/data/
    database: kw.sqlite
    persistent: true
`

func TestLoad(t *testing.T) {
	t.Setenv("KW_MYSQL_PASSWORD", "secret")
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/mapper.yaml", []byte(sourcesYAML), 0o644))

	sources, err := Load("/etc/mapper.yaml", WithFs(fs))
	require.NoError(t, err)
	assert.Equal(t, []string{"local", "mysql1"}, sources.Names())

	mysql1, err := sources.Get("mysql1")
	require.NoError(t, err)
	assert.Equal(t, storage.Config{
		Source:     "mysql1",
		Driver:     storage.DriverMySQL,
		Location:   "127.0.0.1",
		Port:       3306,
		User:       "root",
		Password:   "secret",
		Database:   "kw",
		Timeout:    5 * time.Second,
		Attributes: map[string]string{"charset": "utf8mb4"},
	}, mysql1)

	local, err := sources.Get("local")
	require.NoError(t, err)
	wantLocation, err := homedir.Expand("~/data/")
	require.NoError(t, err)
	assert.Equal(t, wantLocation+"/", local.Location)
	assert.Equal(t, storage.DriverSQLite, local.Driver)
	assert.True(t, local.Persistent)
	assert.Empty(t, local.Attributes)
}

func TestLoader_Read(t *testing.T) {
	testCases := []struct {
		name      string
		typ       string
		content   string
		wantNames []string
		wantErr   error
	}{
		{
			name:      "json",
			typ:       "json",
			content:   `{"sources": {"pg": {"driver": "postgres", "location": "db", "port": 5432}}}`,
			wantNames: []string{"pg"},
		},
		{
			name:      "no sources",
			typ:       "yaml",
			content:   "other: 1\n",
			wantNames: []string{},
		},
		{
			name:    "unknown driver",
			typ:     "yaml",
			content: "sources:\n  x:\n    driver: mongo\n",
			wantErr: errs.NewErrUnknownDriver("mongo"),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sources, err := NewLoader().Read(strings.NewReader(tc.content), tc.typ)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantNames, sources.Names())
		})
	}
}

func TestLoad_EnvFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("KW_PG_USER=kwuser\n"), 0o600))
	t.Setenv("KW_PG_USER", "")
	require.NoError(t, os.Unsetenv("KW_PG_USER"))

	sources, err := NewLoader(WithEnvFiles(envFile)).
		Read(strings.NewReader("sources:\n  pg:\n    driver: postgres\n    user: ${KW_PG_USER}\n"), "yaml")
	require.NoError(t, err)
	pg, err := sources.Get("pg")
	require.NoError(t, err)
	assert.Equal(t, "kwuser", pg.User)

	_, err = NewLoader(WithEnvFiles(filepath.Join(dir, "missing.env"))).
		Read(strings.NewReader("sources: {}\n"), "yaml")
	assert.ErrorIs(t, err, errs.ErrConfig)
}

func TestLoad_EnvPrefix(t *testing.T) {
	t.Setenv("KWTEST_SOURCES_PG_PASSWORD", "from-env")
	sources, err := NewLoader(WithEnvPrefix("KWTEST")).
		Read(strings.NewReader("sources:\n  pg:\n    driver: postgres\n    password: from-file\n"), "yaml")
	require.NoError(t, err)
	pg, err := sources.Get("pg")
	require.NoError(t, err)
	assert.Equal(t, "from-env", pg.Password)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nowhere/mapper.yaml", WithFs(afero.NewMemMapFs()))
	assert.ErrorIs(t, err, errs.ErrConfig)
}
