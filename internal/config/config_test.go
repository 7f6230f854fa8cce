package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	require.Equal(t, "8081", cfg.Port)
	require.Equal(t, "memory", cfg.DataBackend)
	require.Equal(t, "koopera", cfg.AMQPExchange)
	require.Equal(t, "ledger_events", cfg.AMQPQueue)
	require.Equal(t, 10, cfg.ExportBatchSize)
	require.Equal(t, 30*time.Second, cfg.ExportInterval)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", t.TempDir()+"/ledger.db")
	t.Setenv("EXPORT_INTERVAL", "2m")

	cfg := Load()
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "sqlite", cfg.DataBackend)
	require.Equal(t, 2*time.Minute, cfg.ExportInterval)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = "nope" }},
		{"port out of range", func(c *Config) { c.Port = "70000" }},
		{"unknown backend", func(c *Config) { c.DataBackend = "sheets" }},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }},
		{"empty queue with amqp", func(c *Config) { c.AMQPQueue = "" }},
		{"zero batch size", func(c *Config) { c.ExportBatchSize = 0 }},
		{"interval too short", func(c *Config) { c.ExportInterval = 100 * time.Millisecond }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Load()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
