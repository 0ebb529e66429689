package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphql-sample/userview/graphql"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "userview.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	return filename
}

func TestReadAndValidateConfig_Defaults(t *testing.T) {
	cfg, err := ReadAndValidateConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, "1", cfg.UserID)
	assert.Equal(t, graphql.CacheFirst, cfg.Policy())
	assert.Equal(t, graphql.DefaultCacheSize, cfg.CacheSize)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestReadAndValidateConfig_File(t *testing.T) {
	filename := writeConfig(t, `
endpoint: https://example.com/graphql
user_id: "2"
fetch_policy: network-only
cache_size: 16
timeout: 3s
log:
  level: debug
  format: json
server:
  addr: ":9090"
  allowed_origins: [http://localhost:3000]
`)

	cfg, err := ReadAndValidateConfig(filename)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/graphql", cfg.Endpoint)
	assert.Equal(t, "2", cfg.UserID)
	assert.Equal(t, graphql.NetworkOnly, cfg.Policy())
	assert.Equal(t, 16, cfg.CacheSize)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
}

func TestReadAndValidateConfig_EnvOverridesFile(t *testing.T) {
	filename := writeConfig(t, "user_id: \"2\"\n")
	t.Setenv("USERVIEW_USER_ID", "3")
	t.Setenv("USERVIEW_FETCH_POLICY", "no-cache")
	t.Setenv("USERVIEW_LOG_LEVEL", "warn")
	t.Setenv("USERSERVER_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := ReadAndValidateConfig(filename)
	require.NoError(t, err)

	assert.Equal(t, "3", cfg.UserID)
	assert.Equal(t, graphql.NoCache, cfg.Policy())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
}

func TestReadAndValidateConfig_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: "endpoit: http://x/graphql\n"},
		{name: "relative endpoint", content: "endpoint: /graphql\n"},
		{name: "bad scheme", content: "endpoint: ftp://x/graphql\n"},
		{name: "bad policy", content: "fetch_policy: sometimes\n"},
		{name: "negative cache", content: "cache_size: -1\n"},
		{name: "bad log level", content: "log:\n  level: loud\n"},
		{name: "bad log format", content: "log:\n  format: xml\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadAndValidateConfig(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestReadAndValidateConfig_MissingFile(t *testing.T) {
	_, err := ReadAndValidateConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "unreadable config file")
}
