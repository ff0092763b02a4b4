package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		Store: StoreConfig{
			APIKey: "pc-key",
			Index:  "docs",
			Host:   "https://docs-abc.svc.pinecone.io",
		},
		Embedding: EmbeddingConfig{APIKey: "sk-test"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Host != "0.0.0.0" {
		t.Errorf("expected Host=0.0.0.0, got %q", cfg.HTTP.Host)
	}
	if cfg.HTTP.Port != 8000 {
		t.Errorf("expected Port=8000, got %d", cfg.HTTP.Port)
	}
	if cfg.Store.Namespace != "__default__" {
		t.Errorf("expected Namespace=__default__, got %q", cfg.Store.Namespace)
	}
	if cfg.Store.RequestTimeoutSec != 15 {
		t.Errorf("expected RequestTimeoutSec=15, got %d", cfg.Store.RequestTimeoutSec)
	}
	if !cfg.EmbeddingEnabled() {
		t.Error("expected embedding enabled by default")
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("expected Provider=openai, got %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Model != "text-embedding-3-large" {
		t.Errorf("expected Model=text-embedding-3-large, got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 3072 {
		t.Errorf("expected Dimensions=3072, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Search.DefaultTopK != 8 {
		t.Errorf("expected DefaultTopK=8, got %d", cfg.Search.DefaultTopK)
	}
	if cfg.Content.MaxContentChars != 50000 {
		t.Errorf("expected MaxContentChars=50000, got %d", cfg.Content.MaxContentChars)
	}
	if cfg.Content.SnippetChars != 200 {
		t.Errorf("expected SnippetChars=200, got %d", cfg.Content.SnippetChars)
	}
	if cfg.Content.TextKeys != "text,chunk,content" {
		t.Errorf("expected default text keys, got %q", cfg.Content.TextKeys)
	}
	if cfg.Cache.TTLSec != 86400 {
		t.Errorf("expected TTLSec=86400, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Stream.HeartbeatSec != 15 {
		t.Errorf("expected HeartbeatSec=15, got %d", cfg.Stream.HeartbeatSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	disabled := false
	cfg := Config{
		HTTP:      HTTPConfig{Host: "127.0.0.1", Port: 9000, ShutdownSec: 5},
		Store:     StoreConfig{Namespace: "prod", RequestTimeoutSec: 3},
		Embedding: EmbeddingConfig{Enabled: &disabled, Model: "text-embedding-3-small", Dimensions: 1536},
		Search:    SearchConfig{DefaultTopK: 5},
		Content:   ContentConfig{TextKeys: "body", MaxContentChars: 2000, SnippetChars: 100},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Host != "127.0.0.1" || cfg.HTTP.Port != 9000 {
		t.Errorf("listen address overridden: %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	}
	if cfg.Store.Namespace != "prod" {
		t.Errorf("expected Namespace=prod, got %q", cfg.Store.Namespace)
	}
	if cfg.EmbeddingEnabled() {
		t.Error("explicit Enabled=false must survive defaults")
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("expected Dimensions=1536, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Search.DefaultTopK != 5 {
		t.Errorf("expected DefaultTopK=5, got %d", cfg.Search.DefaultTopK)
	}
	if cfg.Content.TextKeys != "body" {
		t.Errorf("expected TextKeys=body, got %q", cfg.Content.TextKeys)
	}
}

func TestValidate_MissingStoreSettings(t *testing.T) {
	for _, clear := range []struct {
		name  string
		apply func(*Config)
	}{
		{"api key", func(c *Config) { c.Store.APIKey = "" }},
		{"index", func(c *Config) { c.Store.Index = "" }},
		{"host", func(c *Config) { c.Store.Host = "" }},
	} {
		t.Run(clear.name, func(t *testing.T) {
			cfg := validConfig()
			clear.apply(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error for missing store %s", clear.name)
			}
		})
	}
}

func TestValidate_HostScheme(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Host = "docs-abc.svc.pinecone.io"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for host without scheme")
	}
}

func TestValidate_TopKRange(t *testing.T) {
	for _, topK := range []int{0, 26, -3} {
		cfg := validConfig()
		cfg.Search.DefaultTopK = topK
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for default_top_k=%d", topK)
		}
	}
}

func TestValidate_ContentFloor(t *testing.T) {
	cfg := validConfig()
	cfg.Content.MaxContentChars = 999
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for max_content_chars below 1000")
	}
}

func TestValidate_EmbeddingProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Provider = "acme"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestValidate_EmbeddingKeyRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding api key")
	}

	// при выключенном embedding ключ не нужен
	disabled := false
	cfg.Embedding.Enabled = &disabled
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with embedding disabled: %v", err)
	}
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("PINECONE_API_KEY", "env-key")
	t.Setenv("PORT", "9100")
	t.Setenv("DEFAULT_TOP_K", "12")
	t.Setenv("ENABLE_EMBEDDING", "false")
	t.Setenv("METADATA_TEXT_KEYS", "body, passage")

	cfg := Config{Store: StoreConfig{APIKey: "file-key"}}
	if err := cfg.applyEnv(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Store.APIKey != "env-key" {
		t.Errorf("env must win over file value, got %q", cfg.Store.APIKey)
	}
	if cfg.HTTP.Port != 9100 {
		t.Errorf("expected Port=9100, got %d", cfg.HTTP.Port)
	}
	if cfg.Search.DefaultTopK != 12 {
		t.Errorf("expected DefaultTopK=12, got %d", cfg.Search.DefaultTopK)
	}
	if cfg.EmbeddingEnabled() {
		t.Error("expected embedding disabled via env")
	}
	keys := cfg.Content.TextKeyList()
	if len(keys) != 2 || keys[0] != "body" || keys[1] != "passage" {
		t.Errorf("unexpected text keys: %v", keys)
	}
}

func TestApplyEnv_BadInteger(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	cfg := Config{}
	if err := cfg.applyEnv(); err == nil {
		t.Fatal("expected error for non-integer PORT")
	}
}

func TestTextKeyList_DropsBlanks(t *testing.T) {
	c := ContentConfig{TextKeys: " text,, chunk ,  "}
	keys := c.TextKeyList()
	if len(keys) != 2 || keys[0] != "text" || keys[1] != "chunk" {
		t.Errorf("unexpected keys: %v", keys)
	}
}

func TestLoad_BaseFileWithEnvExpansion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base.yaml")
	body := `
http:
  port: ${VECGATE_TEST_PORT:-8100}
store:
  api_key: ${VECGATE_TEST_PC_KEY}
  index: docs
  host: https://docs-abc.svc.pinecone.io
embedding:
  enabled: false
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("VECGATE_CONFIG", path)
	t.Setenv("VECGATE_TEST_PC_KEY", "pc-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8100 {
		t.Errorf("expected default-expanded port 8100, got %d", cfg.HTTP.Port)
	}
	if cfg.Store.APIKey != "pc-secret" {
		t.Errorf("expected expanded api key, got %q", cfg.Store.APIKey)
	}
	if cfg.EmbeddingEnabled() {
		t.Error("expected embedding disabled from file")
	}
	if cfg.Store.Namespace != "__default__" {
		t.Errorf("defaults must still apply, namespace=%q", cfg.Store.Namespace)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base.yaml")
	body := `
store:
  api_key: file-key
  index: docs
  host: https://docs-abc.svc.pinecone.io
embedding:
  enabled: false
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("VECGATE_CONFIG", path)
	t.Setenv("PINECONE_API_KEY", "env-key")
	t.Setenv("NAMESPACE", "team-a")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.APIKey != "env-key" {
		t.Errorf("env must override file, got %q", cfg.Store.APIKey)
	}
	if cfg.Store.Namespace != "team-a" {
		t.Errorf("expected namespace team-a, got %q", cfg.Store.Namespace)
	}
}
