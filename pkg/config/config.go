package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/tripkeeper"
	ConfigFileName    = "tripkeeper.yml"
)

// Store backends
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// ValidStores is the list of valid store backends
var ValidStores = []string{StorePostgres, StoreMemory}

// ValidAuthenticators is the list of valid authenticator names
var ValidAuthenticators = []string{"basic", "token"}

// Config holds all tripkeeper configuration settings
type Config struct {
	// Store selects the document store backend
	Store string `yaml:"store" json:"store"`

	// Realm is sent in the WWW-Authenticate challenge
	Realm string `yaml:"realm" json:"realm"`

	// TrustedProxies is a list of CIDR ranges for trusted proxies
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// TokenTTL is the lifetime of session tokens in seconds
	TokenTTL int `yaml:"token_ttl" json:"token_ttl"`

	// FetchLimitMax caps the number of documents returned by a search
	FetchLimitMax int `yaml:"fetch_limit_max" json:"fetch_limit_max"`

	// AuditEnabled turns the audit log on or off
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// Authenticators is a list of enabled authenticators
	Authenticators []string `yaml:"authenticators" json:"authenticators"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors Config for YAML decoding; pointers tell unset keys
// apart from zero values
type fileConfig struct {
	Store          *string  `yaml:"store"`
	Realm          *string  `yaml:"realm"`
	TrustedProxies []string `yaml:"trusted_proxies"`
	TokenTTL       *int     `yaml:"token_ttl"`
	FetchLimitMax  *int     `yaml:"fetch_limit_max"`
	AuditEnabled   *bool    `yaml:"audit_enabled"`
	Authenticators []string `yaml:"authenticators"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *Config {
	return &Config{
		Store:          StorePostgres,
		Realm:          "tripkeeper",
		TrustedProxies: []string{},
		TokenTTL:       480,
		FetchLimitMax:  1000,
		AuditEnabled:   true,
		Authenticators: []string{"basic", "token"},
		sources:        make(map[string]string),
	}
}

// Default returns the built-in configuration without reading file or
// environment
func Default() *Config {
	cfg := newDefault()
	for _, name := range attributeNames() {
		cfg.sources[name] = "default"
	}
	return cfg
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*Config, error) {
	config := Default()

	configPath := os.Getenv("TRIPKEEPER_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"store", "realm", "trusted_proxies", "token_ttl",
		"fetch_limit_max", "audit_enabled", "authenticators",
	}
}

func (c *Config) applyFileConfig(file *fileConfig) {
	if file.Store != nil {
		c.Store = *file.Store
		c.sources["store"] = "file"
	}
	if file.Realm != nil {
		c.Realm = *file.Realm
		c.sources["realm"] = "file"
	}
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
	if file.TokenTTL != nil {
		c.TokenTTL = *file.TokenTTL
		c.sources["token_ttl"] = "file"
	}
	if file.FetchLimitMax != nil {
		c.FetchLimitMax = *file.FetchLimitMax
		c.sources["fetch_limit_max"] = "file"
	}
	if file.AuditEnabled != nil {
		c.AuditEnabled = *file.AuditEnabled
		c.sources["audit_enabled"] = "file"
	}
	if len(file.Authenticators) > 0 {
		c.Authenticators = file.Authenticators
		c.sources["authenticators"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("TRIPKEEPER_STORE"); val != "" {
		c.Store = val
		c.sources["store"] = "environment"
	}
	if val := os.Getenv("TRIPKEEPER_REALM"); val != "" {
		c.Realm = val
		c.sources["realm"] = "environment"
	}
	if val := os.Getenv("TRIPKEEPER_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
	if val := os.Getenv("TRIPKEEPER_TOKEN_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.TokenTTL = i
			c.sources["token_ttl"] = "environment"
		}
	}
	if val := os.Getenv("TRIPKEEPER_FETCH_LIMIT_MAX"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.FetchLimitMax = i
			c.sources["fetch_limit_max"] = "environment"
		}
	}
	if val := os.Getenv("TRIPKEEPER_AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = val == "true" || val == "1"
		c.sources["audit_enabled"] = "environment"
	}
	if val := os.Getenv("TRIPKEEPER_AUTHENTICATORS"); val != "" {
		c.Authenticators = splitAndTrim(val)
		c.sources["authenticators"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// TokenLifetime returns the session token TTL as a duration
func (c *Config) TokenLifetime() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

// IsAuthenticatorEnabled checks if an authenticator is enabled
func (c *Config) IsAuthenticatorEnabled(authenticator string) bool {
	for _, a := range c.Authenticators {
		if a == authenticator {
			return true
		}
	}
	return false
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *Config) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !contains(ValidStores, c.Store) {
		return fmt.Errorf("invalid store: %s", c.Store)
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid token_ttl: %d", c.TokenTTL)
	}
	if c.FetchLimitMax <= 0 {
		return fmt.Errorf("invalid fetch_limit_max: %d", c.FetchLimitMax)
	}

	for _, auth := range c.Authenticators {
		if !contains(ValidAuthenticators, auth) {
			return fmt.Errorf("invalid authenticator: %s", auth)
		}
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "store", Value: c.Store, Source: c.Source("store")},
		{Name: "realm", Value: c.Realm, Source: c.Source("realm")},
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "token_ttl", Value: strconv.Itoa(c.TokenTTL), Source: c.Source("token_ttl")},
		{Name: "fetch_limit_max", Value: strconv.Itoa(c.FetchLimitMax), Source: c.Source("fetch_limit_max")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
		{Name: "authenticators", Value: strings.Join(c.Authenticators, ","), Source: c.Source("authenticators")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-20s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-20s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-20s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
