package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "system", cfg.Printer.Backend)
	assert.Equal(t, "memory", cfg.Journal.Engine)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, 1000, cfg.Logging.ChannelSize)
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "batchprint.yaml")

	cfg := DefaultConfig()
	cfg.Printer.Name = "Office LaserJet"
	cfg.Printer.Backend = "dry-run"
	cfg.Journal.Engine = "secure"
	cfg.Watch.FlushInterval = 750 * time.Millisecond

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Office LaserJet", loaded.Printer.Name)
	assert.Equal(t, "dry-run", loaded.Printer.Backend)
	assert.Equal(t, 750*time.Millisecond, loaded.Watch.FlushInterval)

	// relative paths are anchored next to the config file
	assert.Equal(t, filepath.Join(dir, "nested", "data"), loaded.General.DataDir)
	assert.Equal(t, filepath.Join(dir, "nested", "data", "journal.db"), loaded.Journal.Path)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("printer:\n  name: Front Desk\ngeneral:\n  logLevel: debug\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Front Desk", cfg.Printer.Name)
	assert.Equal(t, "debug", cfg.General.LogLevel)
	assert.Equal(t, "system", cfg.Printer.Backend)
	assert.Equal(t, 8631, cfg.HTTP.Port)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorContains(t, err, "config file not found")
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("printer: [unclosed"), 0644))

		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "failed to parse config file")
	})
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"log level", func(c *Config) { c.General.LogLevel = "verbose" }, "invalid log level"},
		{"backend", func(c *Config) { c.Printer.Backend = "ipp" }, "invalid printer backend"},
		{"timeout", func(c *Config) { c.Printer.SubmitTimeout = -time.Second }, "invalid submit timeout"},
		{"journal engine", func(c *Config) { c.Journal.Engine = "badger" }, "invalid journal engine"},
		{"secure journal path", func(c *Config) { c.Journal.Engine = "secure"; c.Journal.Path = "" }, "no path specified"},
		{"port", func(c *Config) { c.HTTP.Port = 70000 }, "invalid HTTP port"},
		{"jwt secret", func(c *Config) { c.Security.EnableAuthentication = true; c.Security.JWT.Secret = "" }, "JWT secret is empty"},
		{"watch dir", func(c *Config) { c.Watch.Enabled = true }, "watch enabled but no directory"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
		{"log output", func(c *Config) { c.Logging.Output = "syslog" }, "invalid log output"},
		{"log file", func(c *Config) { c.Logging.Output = "file" }, "no file path specified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}

	t.Run("disabled http ignores port", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.HTTP.Enabled = false
		cfg.HTTP.Port = 0
		assert.NoError(t, cfg.Validate())
	})
}
