package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
[aws]
region = "eu-west-1"
profile = "production"

[output]
dir = "mirror"

[sync]
kinds = ["vpcs", "alarms"]

[plugins]
disabled = true

[plugins.interpreters]
".py" = ["python3"]
".rb" = ["bundle", "exec", "ruby"]

[browse]
addr = "127.0.0.1:4000"
open = false

[search]
workers = 2

[log]
level = "debug"

[otel]
endpoint = "collector:4317"
insecure = true
`
	path := writeTempConfig(t, content)
	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, "production", cfg.AWS.Profile)
	assert.Equal(t, "mirror", cfg.Output.Dir)
	assert.Equal(t, []string{"vpcs", "alarms"}, cfg.Sync.Kinds)
	assert.True(t, cfg.Plugins.Disabled)
	assert.Equal(t, "127.0.0.1:4000", cfg.Browse.Addr)
	assert.False(t, cfg.OpenBrowser())
	assert.Equal(t, 2, cfg.Search.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, map[string][]string{".py": {"python3"}, ".rb": {"bundle", "exec", "ruby"}}, cfg.Plugins.Interpreters)
	assert.Equal(t, "collector:4317", cfg.OTel.Endpoint)
	assert.True(t, cfg.OTel.Insecure)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	content := `
[aws]
region = "us-east-1"
`
	path := writeTempConfig(t, content)
	cfg, err := Load(path)

	require.NoError(t, err)
	// Check defaults are applied
	assert.Equal(t, ".cfs", cfg.Output.Dir)
	assert.Equal(t, "localhost:3000", cfg.Browse.Addr)
	assert.True(t, cfg.OpenBrowser())
	assert.Equal(t, 8, cfg.Search.Workers)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Plugins.Disabled)
	assert.Empty(t, cfg.Sync.Kinds)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ".cfs", cfg.Output.Dir)
	assert.Empty(t, cfg.AWS.Region)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	require.Error(t, err)
}

func TestLoad_InvalidTOML(t *testing.T) {
	content := `
[aws
region = ["not", "a", "string"]
`
	path := writeTempConfig(t, content)
	_, err := Load(path)
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		value    string
		disabled bool
	}{
		{"", false},
		{"0", false},
		{"false", false},
		{"1", true},
		{"true", true},
		{" TRUE ", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg := Default()
			cfg.ApplyEnv(func(key string) string {
				if key == DisablePluginsEnv {
					return tt.value
				}
				return ""
			})
			assert.Equal(t, tt.disabled, cfg.Plugins.Disabled)
		})
	}
}

func TestApplyEnv_OTLPEndpoint(t *testing.T) {
	env := func(key string) string {
		if key == OTLPEndpointEnv {
			return "env-collector:4317"
		}
		return ""
	}

	cfg := Default()
	cfg.ApplyEnv(env)
	assert.Equal(t, "env-collector:4317", cfg.OTel.Endpoint)

	cfg = Default()
	cfg.OTel.Endpoint = "file-collector:4317"
	cfg.ApplyEnv(env)
	assert.Equal(t, "file-collector:4317", cfg.OTel.Endpoint)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty dir",
			mutate:  func(c *Config) { c.Output.Dir = " " },
			wantErr: "output: dir",
		},
		{
			name:    "empty addr",
			mutate:  func(c *Config) { c.Browse.Addr = "" },
			wantErr: "browse: addr",
		},
		{
			name:    "no workers",
			mutate:  func(c *Config) { c.Search.Workers = -1 },
			wantErr: "search: workers",
		},
		{
			name:    "bad level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: `invalid level "loud"`,
		},
		{
			name:    "interpreter extension without dot",
			mutate:  func(c *Config) { c.Plugins.Interpreters = map[string][]string{"py": {"python3"}} },
			wantErr: `extension "py"`,
		},
		{
			name:    "interpreter without command",
			mutate:  func(c *Config) { c.Plugins.Interpreters = map[string][]string{".py": {}} },
			wantErr: `interpreter for ".py"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}
