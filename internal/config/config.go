package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the vecgate gateway configuration. Environment variables are
// the authoritative surface; an optional YAML base file supplies the same
// fields and is overridden by the environment.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Content   ContentConfig   `yaml:"content"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	Stream    StreamConfig    `yaml:"stream"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. An empty token disables
// authentication.
type AuthConfig struct {
	SecretToken string `yaml:"secret_token"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	ShutdownSec     int    `yaml:"shutdown_timeout_sec"`
}

// StoreConfig holds the hosted vector index connection settings.
type StoreConfig struct {
	APIKey            string `yaml:"api_key"`
	Index             string `yaml:"index"`
	Host              string `yaml:"host"` // data-plane base URL
	Namespace         string `yaml:"namespace"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
	RetryMax          int    `yaml:"retry_max"` // extra attempts after the first, 0 disables retries
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Enabled    *bool  `yaml:"enabled"`
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
}

// SearchConfig holds search operation settings.
type SearchConfig struct {
	DefaultTopK int `yaml:"default_top_k"`
}

// ContentConfig holds metadata text resolution and content bounds.
type ContentConfig struct {
	TextKeys        string `yaml:"text_keys"` // comma-separated, probed in order
	MaxContentChars int    `yaml:"max_content_chars"`
	SnippetChars    int    `yaml:"snippet_chars"`
}

// CacheConfig holds the optional embedding cache settings. An empty address
// disables the cache.
type CacheConfig struct {
	Addr                string `yaml:"addr"`
	Password            string `yaml:"password"`
	TTLSec              int    `yaml:"ttl_sec"`
	ReadinessTimeoutSec int    `yaml:"readiness_timeout_sec"`
}

// StreamConfig holds streaming adapter settings.
type StreamConfig struct {
	HeartbeatSec int `yaml:"heartbeat_sec"`
}

// Load builds the configuration: optional YAML base file, then environment
// overrides, then defaults and validation. The base file comes from
// VECGATE_CONFIG or, when unset, from config/<env>.yaml if that exists.
func Load() (Config, error) {
	var cfg Config

	if path := configPath(); path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}

		// Substitute env variables of the form ${VAR}
		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// EmbeddingEnabled reports whether query vectorization is switched on.
func (c *Config) EmbeddingEnabled() bool {
	return c.Embedding.Enabled == nil || *c.Embedding.Enabled
}

// TextKeyList parses the comma-separated candidate keys, dropping blanks.
func (c ContentConfig) TextKeyList() []string {
	parts := strings.Split(c.TextKeys, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// applyEnv overlays environment variables onto the config. Unset variables
// leave the current value alone.
func (c *Config) applyEnv() error {
	setString("HOST", &c.HTTP.Host)
	setString("PINECONE_API_KEY", &c.Store.APIKey)
	setString("PINECONE_INDEX", &c.Store.Index)
	setString("PINECONE_HOST", &c.Store.Host)
	setString("NAMESPACE", &c.Store.Namespace)
	setString("EMBEDDING_PROVIDER", &c.Embedding.Provider)
	setString("EMBEDDING_MODEL", &c.Embedding.Model)
	setString("OPENAI_API_KEY", &c.Embedding.APIKey)
	setString("OPENAI_BASE_URL", &c.Embedding.BaseURL)
	setString("METADATA_TEXT_KEYS", &c.Content.TextKeys)
	setString("CACHE_ADDR", &c.Cache.Addr)
	setString("CACHE_PASSWORD", &c.Cache.Password)
	setString("SECRET_TOKEN", &c.Auth.SecretToken)
	setString("LOG_LEVEL", &c.Logging.Level)

	intVars := []struct {
		name string
		dst  *int
	}{
		{"PORT", &c.HTTP.Port},
		{"SHUTDOWN_TIMEOUT_SEC", &c.HTTP.ShutdownSec},
		{"REQUEST_TIMEOUT_SEC", &c.Store.RequestTimeoutSec},
		{"RETRY_MAX", &c.Store.RetryMax},
		{"EMBEDDING_DIMENSIONS", &c.Embedding.Dimensions},
		{"DEFAULT_TOP_K", &c.Search.DefaultTopK},
		{"MAX_CONTENT_CHARS", &c.Content.MaxContentChars},
		{"CACHE_TTL_SEC", &c.Cache.TTLSec},
		{"HEARTBEAT_SEC", &c.Stream.HeartbeatSec},
	}
	for _, v := range intVars {
		if err := setInt(v.name, v.dst); err != nil {
			return err
		}
	}

	return setBool("ENABLE_EMBEDDING", &c.Embedding.Enabled)
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Host == "" {
		c.HTTP.Host = "0.0.0.0"
	}
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Store.Namespace == "" {
		c.Store.Namespace = "__default__"
	}
	if c.Store.RequestTimeoutSec <= 0 {
		c.Store.RequestTimeoutSec = 15
	}
	if c.Store.RetryMax < 0 {
		c.Store.RetryMax = 0
	}
	if c.Embedding.Enabled == nil {
		enabled := true
		c.Embedding.Enabled = &enabled
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-large"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 3072
	}
	if c.Search.DefaultTopK <= 0 {
		c.Search.DefaultTopK = 8
	}
	if c.Content.TextKeys == "" {
		c.Content.TextKeys = "text,chunk,content"
	}
	if c.Content.MaxContentChars <= 0 {
		c.Content.MaxContentChars = 50000
	}
	if c.Content.SnippetChars <= 0 {
		c.Content.SnippetChars = 200
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 86400
	}
	if c.Cache.ReadinessTimeoutSec <= 0 {
		c.Cache.ReadinessTimeoutSec = 10
	}
	if c.Stream.HeartbeatSec <= 0 {
		c.Stream.HeartbeatSec = 15
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Store.APIKey == "" {
		return fmt.Errorf("store.api_key is required (PINECONE_API_KEY)")
	}
	if c.Store.Index == "" {
		return fmt.Errorf("store.index is required (PINECONE_INDEX)")
	}
	if c.Store.Host == "" {
		return fmt.Errorf("store.host is required (PINECONE_HOST)")
	}
	if !strings.HasPrefix(c.Store.Host, "http://") && !strings.HasPrefix(c.Store.Host, "https://") {
		return fmt.Errorf("store.host must be an http(s) URL, got %q", c.Store.Host)
	}
	if c.Search.DefaultTopK < 1 || c.Search.DefaultTopK > 25 {
		return fmt.Errorf("search.default_top_k must be between 1 and 25, got %d", c.Search.DefaultTopK)
	}
	if c.Content.MaxContentChars < 1000 {
		return fmt.Errorf("content.max_content_chars must be at least 1000, got %d", c.Content.MaxContentChars)
	}
	if len(c.Content.TextKeyList()) == 0 {
		return fmt.Errorf("content.text_keys must name at least one key")
	}
	if c.EmbeddingEnabled() {
		if c.Embedding.Provider != "openai" {
			return fmt.Errorf("embedding.provider %q is not supported", c.Embedding.Provider)
		}
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("embedding.api_key is required when embedding is enabled (OPENAI_API_KEY)")
		}
	}
	return nil
}

// configPath locates the optional base file. VECGATE_CONFIG wins; otherwise
// config/<env>.yaml is used when present. "" means env-only configuration.
func configPath() string {
	if path := os.Getenv("VECGATE_CONFIG"); path != "" {
		return path
	}

	filename := fmt.Sprintf("%s.yaml", GetEnv())

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	*dst = n
	return nil
}

func setBool(key string, dst **bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	*dst = &b
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
