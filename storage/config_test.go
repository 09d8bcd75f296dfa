package storage

import (
	"testing"

	"github.com/coderi421/mapper/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSources(t *testing.T) {
	s, err := NewSources(
		Config{Source: "mysql1", Driver: DriverMySQL, Location: "localhost", Port: 3306},
		Config{Source: "lite", Driver: DriverSQLite, Location: ":memory:"},
	)
	require.NoError(t, err)

	testCases := []struct {
		name    string
		source  string
		want    Config
		wantErr error
	}{
		{
			name:   "found",
			source: "lite",
			want:   Config{Source: "lite", Driver: DriverSQLite, Location: ":memory:"},
		},
		{
			name:    "unknown",
			source:  "pg",
			wantErr: errs.NewErrUnknownSource("pg"),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := s.Get(tc.source)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				assert.ErrorIs(t, err, errs.ErrConfig)
				return
			}
			assert.Equal(t, tc.want, cfg)
		})
	}
	assert.Equal(t, []string{"lite", "mysql1"}, s.Names())
}

func TestSources_Add(t *testing.T) {
	s, err := NewSources()
	require.NoError(t, err)
	assert.Equal(t, errs.ErrEmptySource, s.Add(Config{Driver: DriverMySQL}))

	require.NoError(t, s.Add(Config{Source: "a", Driver: DriverMySQL}))
	require.NoError(t, s.Add(Config{Source: "a", Driver: DriverPostgres}))
	cfg, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Driver)

	_, err = NewSources(Config{})
	assert.Equal(t, errs.ErrEmptySource, err)
}
