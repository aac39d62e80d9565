package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Writes_Default_Config_When_Missing(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(nil, path)
	req.NoError(err)
	req.Equal(path, resolved)
	req.Equal(Default(), cfg)

	data, err := os.ReadFile(path)
	req.NoError(err)
	req.Contains(string(data), "3000")
	req.Contains(string(data), "driver: sqlite")
}

func TestLoad_Reads_File_Values(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	req.NoError(os.WriteFile(path, []byte(`
addr: ":4000"
shutdown_timeout: 2s
rate_limit_per_minute: 30
store:
  driver: postgres
  postgres_dsn: postgres://relay@localhost/relay
`), 0o600))

	cfg, _, err := Load(nil, path)
	req.NoError(err)
	req.Equal(":4000", cfg.Addr)
	req.Equal(2*time.Second, cfg.ShutdownTimeout)
	req.Equal(30, cfg.RateLimitPerMinute)
	req.Equal(DriverPostgres, cfg.Store.Driver)
	req.Equal("postgres://relay@localhost/relay", cfg.Store.PostgresDSN)
	req.NoError(cfg.Validate())
}

func TestLoad_Env_Overrides_File(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	req.NoError(os.WriteFile(path, []byte("addr: \":4000\"\n"), 0o600))

	t.Setenv("DMRELAY_ADDR", ":5000")
	t.Setenv("DMRELAY_STORE_SQLITE_PATH", "/tmp/relay.db")

	cfg, _, err := Load(nil, path)
	req.NoError(err)
	req.Equal(":5000", cfg.Addr)
	req.Equal("/tmp/relay.db", cfg.Store.SQLitePath)
}

func TestLoad_Default_Path_From_Env(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	t.Setenv(envConfigDefaultPath, dir)

	_, resolved, err := Load(nil, "")
	req.NoError(err)
	req.Equal(filepath.Join(dir, defaultConfigName), resolved)
	req.FileExists(resolved)
}

func TestValidate_Rejects_Bad_Values(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = DriverPostgres }},
		{"sqlite without path", func(c *Config) { c.Store.SQLitePath = "" }},
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"negative rate limit", func(c *Config) { c.RateLimitPerMinute = -1 }},
		{"zero max message", func(c *Config) { c.MaxMessageBytes = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestUpdateFrom_Overrides_Only_Set_Fields(t *testing.T) {
	req := require.New(t)
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":9000", Store: StoreConfig{Driver: DriverPostgres}})

	req.Equal(":9000", cfg.Addr)
	req.Equal(DriverPostgres, cfg.Store.Driver)
	req.Equal("dmrelay.db", cfg.Store.SQLitePath)
	req.Equal("info", cfg.LogLevel)
}
