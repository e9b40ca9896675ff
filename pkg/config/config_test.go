package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TRIPKEEPER_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "tripkeeper", cfg.Realm)
	assert.Equal(t, 480, cfg.TokenTTL)
	assert.Equal(t, 8*time.Minute, cfg.TokenLifetime())
	assert.Equal(t, 1000, cfg.FetchLimitMax)
	assert.True(t, cfg.AuditEnabled)
	assert.Equal(t, []string{"basic", "token"}, cfg.Authenticators)
	for _, name := range attributeNames() {
		assert.Equal(t, "default", cfg.Source(name), name)
	}
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	dir := writeConfigFile(t, `
store: memory
token_ttl: 60
audit_enabled: false
trusted_proxies:
  - 10.0.0.0/8
`)
	t.Setenv("TRIPKEEPER_CONFIG_PATH", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.ConfigFilePath())
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "file", cfg.Source("store"))
	assert.Equal(t, 60, cfg.TokenTTL)
	assert.False(t, cfg.AuditEnabled)
	assert.Equal(t, "file", cfg.Source("audit_enabled"))
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
	assert.Equal(t, "default", cfg.Source("realm"))
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := writeConfigFile(t, "store: memory\nfetch_limit_max: 10\n")
	t.Setenv("TRIPKEEPER_CONFIG_PATH", dir)
	t.Setenv("TRIPKEEPER_STORE", "postgres")
	t.Setenv("TRIPKEEPER_AUTHENTICATORS", "basic, ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "environment", cfg.Source("store"))
	assert.Equal(t, 10, cfg.FetchLimitMax)
	assert.Equal(t, []string{"basic"}, cfg.Authenticators)
	assert.True(t, cfg.IsAuthenticatorEnabled("basic"))
	assert.False(t, cfg.IsAuthenticatorEnabled("token"))
}

func TestLoad_InvalidFile(t *testing.T) {
	t.Setenv("TRIPKEEPER_CONFIG_PATH", writeConfigFile(t, "store: [unclosed"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "bad store", mutate: func(c *Config) { c.Store = "mongo" }, wantErr: "invalid store"},
		{name: "bad proxy", mutate: func(c *Config) { c.TrustedProxies = []string{"nope"} }, wantErr: "invalid trusted_proxies"},
		{name: "plain ip proxy", mutate: func(c *Config) { c.TrustedProxies = []string{"10.1.2.3"} }},
		{name: "zero ttl", mutate: func(c *Config) { c.TokenTTL = 0 }, wantErr: "invalid token_ttl"},
		{name: "zero limit", mutate: func(c *Config) { c.FetchLimitMax = 0 }, wantErr: "invalid fetch_limit_max"},
		{name: "bad authenticator", mutate: func(c *Config) { c.Authenticators = []string{"ldap"} }, wantErr: "invalid authenticator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestIsTrustedProxy(t *testing.T) {
	cfg := newDefault()
	assert.False(t, cfg.IsTrustedProxy("10.0.0.1"))

	cfg.TrustedProxies = []string{"10.0.0.0/8", "192.168.1.5"}
	assert.True(t, cfg.IsTrustedProxy("10.20.30.40"))
	assert.True(t, cfg.IsTrustedProxy("192.168.1.5"))
	assert.False(t, cfg.IsTrustedProxy("192.168.1.6"))
	assert.False(t, cfg.IsTrustedProxy("garbage"))
}

func TestFormat(t *testing.T) {
	cfg := newDefault()

	text := cfg.FormatText()
	assert.Contains(t, text, "NAME")
	assert.Contains(t, text, "fetch_limit_max")
	assert.Contains(t, text, "(not set)")

	out, err := cfg.FormatJSON()
	require.NoError(t, err)

	var decoded struct {
		Attributes []Attribute `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded.Attributes, len(attributeNames()))
}

func TestReload(t *testing.T) {
	t.Setenv("TRIPKEEPER_CONFIG_PATH", writeConfigFile(t, "realm: trips\n"))
	require.NoError(t, Reload())
	assert.Equal(t, "trips", Get().Realm)

	t.Setenv("TRIPKEEPER_CONFIG_PATH", writeConfigFile(t, "store: mongo\n"))
	assert.Error(t, Reload())
	assert.Equal(t, "trips", Get().Realm)
}
