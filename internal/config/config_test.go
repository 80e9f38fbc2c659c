package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "netenum.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
source: postgres
random: true
seed: 42
limit: 1000
postgres:
  dsn: postgres://ipam@localhost/ipam?sslmode=disable
  network_ids: [1, 3]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, SourcePostgres, cfg.Source)
	assert.True(t, cfg.Random)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 1000, cfg.Limit)
	assert.Equal(t, []int64{1, 3}, cfg.Postgres.NetworkIDs)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "netenum:ranges", cfg.Redis.Key)
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown field":   "sorce: stdin\n",
		"unknown source":  "source: kafka\n",
		"postgres no dsn": "source: postgres\n",
		"negative limit":  "limit: -1\n",
		"malformed yaml":  "source: [stdin\n",
		"wrong type":      "limit: many\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
