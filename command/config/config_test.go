package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func TestReadConfigFile(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "hcl",
			file: "config.hcl",
			content: `
endpoint = "wss://rpc.example.org"
log_level = "DEBUG"
ss58_prefix = 2
era_period = 128
storage {
  backend = "boltdb"
}
telemetry {
  prometheus_addr = "127.0.0.1:5001"
}
type_aliases {
  "Balance" = "u64"
}
`,
		},
		{
			name: "json",
			file: "config.json",
			content: `{
  "endpoint": "wss://rpc.example.org",
  "log_level": "DEBUG",
  "ss58_prefix": 2,
  "era_period": 128,
  "storage": {"backend": "boltdb"},
  "telemetry": {"prometheus_addr": "127.0.0.1:5001"},
  "type_aliases": {"Balance": "u64"}
}`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `
endpoint: wss://rpc.example.org
log_level: DEBUG
ss58_prefix: 2
era_period: 128
storage:
  backend: boltdb
telemetry:
  prometheus_addr: 127.0.0.1:5001
type_aliases:
  Balance: u64
`,
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := ReadConfigFile(writeConfig(t, c.file, c.content))
			require.NoError(t, err)

			assert.Equal(t, "wss://rpc.example.org", cfg.Endpoint)
			assert.Equal(t, "DEBUG", cfg.LogLevel)
			assert.Equal(t, 2, cfg.SS58Prefix)
			assert.Equal(t, 128, cfg.EraPeriod)
			assert.Equal(t, StorageBoltDB, cfg.Storage.Backend)
			assert.Equal(t, "127.0.0.1:5001", cfg.Telemetry.PrometheusAddr)
			assert.Equal(t, map[string]string{"Balance": "u64"}, cfg.TypeAliases)

			// untouched values keep their defaults
			assert.Equal(t, DefaultDataDir, cfg.DataDir)
			assert.Equal(t, "ed25519", cfg.KeyType)
			assert.Equal(t, DefaultWaitTimeout, cfg.WaitTimeout)

			require.NoError(t, cfg.Validate())
		})
	}
}

func TestReadConfigFile_Durations(t *testing.T) {
	t.Parallel()

	cfg, err := ReadConfigFile(writeConfig(t, "config.yml", "call_timeout: 5s\nwait_timeout: 1m\n"))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.CallTimeout)
	assert.Equal(t, time.Minute, cfg.WaitTimeout)
}

func TestReadConfigFile_Errors(t *testing.T) {
	t.Parallel()

	_, err := ReadConfigFile(writeConfig(t, "config.toml", "endpoint = 1"))
	assert.ErrorContains(t, err, "neither hcl, json, yaml nor yml")

	_, err = ReadConfigFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = ReadConfigFile(writeConfig(t, "config.json", "{"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Endpoint = "http://127.0.0.1:9933"
	assert.ErrorContains(t, cfg.Validate(), "not a websocket url")

	cfg = DefaultConfig()
	cfg.Storage.Backend = "rocksdb"
	assert.ErrorContains(t, cfg.Validate(), "unknown storage backend")

	cfg = DefaultConfig()
	cfg.Subkey = &Subkey{Scheme: "sr25519"}
	assert.ErrorContains(t, cfg.Validate(), "secret uri")
}
