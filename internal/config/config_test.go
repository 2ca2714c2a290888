package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "040", cfg.Encode.ServiceType)
	assert.Equal(t, "utf-8", cfg.Batch.Charset)
	assert.Positive(t, cfg.Batch.Workers)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "trace" },
			wantErr: "invalid log level",
		},
		{
			name:    "bad output format",
			mutate:  func(c *Config) { c.Output.Format = "xml" },
			wantErr: "invalid output format",
		},
		{
			name:    "bad charset",
			mutate:  func(c *Config) { c.Batch.Charset = "ebcdic" },
			wantErr: "invalid batch charset",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Batch.Workers = 0 },
			wantErr: "invalid batch workers",
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.Server.RateLimitPerMin = -1 },
			wantErr: "invalid rate limit",
		},
		{
			name: "malformed service type key",
			mutate: func(c *Config) {
				c.Encode.ServiceTypes = map[string]string{"ABC": "Broken"}
			},
			wantErr: "invalid service type identifier",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoader_LoadWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "imbgen.yaml")

	doc := map[string]interface{}{
		"log_level": "debug",
		"encode": map[string]interface{}{
			"service_type": "240",
			"strict":       true,
			"service_types": map[string]string{
				"961": "Test Mail",
			},
		},
		"batch": map[string]interface{}{
			"workers": 2,
			"columns": map[string]string{
				"mailer_id": "mid",
			},
		},
	}
	raw, err := yaml.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	loader := NewLoaderWith(viper.New())
	cfg, err := loader.LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "240", cfg.Encode.ServiceType)
	assert.True(t, cfg.Encode.Strict)
	assert.Equal(t, "Test Mail", cfg.Encode.ServiceTypes["961"])
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.Equal(t, "mid", cfg.Batch.Columns.MailerID)

	// Untouched keys fall back to defaults.
	assert.Equal(t, "00", cfg.Encode.BarcodeID)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "routing_code", cfg.Batch.Columns.RoutingCode)
}

func TestLoader_LoadWithFile_Missing(t *testing.T) {
	loader := NewLoaderWith(viper.New())
	_, err := loader.LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoader_RejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "imbgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: shout\n"), 0o600))

	loader := NewLoaderWith(viper.New())
	_, err := loader.LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoader_EnvironmentOverride(t *testing.T) {
	t.Setenv("IMBGEN_LOG_LEVEL", "warn")
	t.Setenv("IMBGEN_SERVER_PORT", "9090")

	loader := NewLoaderWith(viper.New())
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "generated.yaml")
	require.NoError(t, GenerateDefaultConfigFile(path))

	loader := NewLoaderWith(viper.New())
	cfg, err := loader.LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
}

func TestGetConfigSearchPaths(t *testing.T) {
	paths := GetConfigSearchPaths()
	assert.Contains(t, paths, ".")
	assert.Contains(t, paths, "/etc/imbgen")
}
