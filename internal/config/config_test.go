package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestLoadFromLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bracket-engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_path: /var/lib/brackets.db
http_addr: ":9000"
log_level: debug
confirmed_statuses: [CONFIRMED_BOTH_PAID]
`), 0o600))

	t.Setenv("HTTP_ADDR", ":9100")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("CONFIRMED_STATUSES", "A, B,,C")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/brackets.db", cfg.DatabasePath)
	assert.Equal(t, ":9100", cfg.HTTPAddr, "env wins over yaml")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, []string{"A", "B", "C"}, cfg.ConfirmedStatuses)
}

func TestLoadFromRejectsInvalid(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		yaml string
	}{
		{name: "unknown log level", env: map[string]string{"LOG_LEVEL": "verbose"}},
		{name: "bad bool", env: map[string]string{"MIGRATE_ON_START": "sometimes"}},
		{name: "empty status list", yaml: "confirmed_statuses: []\n"},
		{name: "malformed yaml", yaml: "http_addr: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if tc.yaml != "" {
				require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o600))
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := LoadFrom(path)
			assert.Error(t, err)
		})
	}
}
