package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/repolens/pkg/cache"
	rlerrors "github.com/matzehuels/repolens/pkg/errors"
	"github.com/matzehuels/repolens/pkg/oracle"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GITHUB_TOKEN", "GEMINI_API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"REPOLENS_ORACLE_PROVIDER", "REPOLENS_ORACLE_MODEL", "REPOLENS_CACHE_BACKEND",
		"REPOLENS_CACHE_URL", "REPOLENS_CACHE_PATH", "REPOLENS_BATCH_SIZE",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repolens.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Scoring.BatchSize != 5 {
		t.Errorf("BatchSize = %d, want 5", cfg.Scoring.BatchSize)
	}
	if cfg.Oracle.Delay != 500*time.Millisecond {
		t.Errorf("Delay = %v, want 500ms", cfg.Oracle.Delay)
	}
	if cfg.Cache.Backend != cache.BackendFile {
		t.Errorf("Backend = %q, want file", cfg.Cache.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_GEMINI_KEY", "g-123")

	path := writeConfig(t, `
oracle:
  provider: gemini
  api_key: ${TEST_GEMINI_KEY}
  delay: 2s
cache:
  backend: sqlite
  path: /tmp/rl
  ttl:
    score: 1h
scoring:
  batch_size: 8
fingerprint:
  skip_archive: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Oracle.APIKey != "g-123" {
		t.Errorf("env var not expanded: got %q", cfg.Oracle.APIKey)
	}
	if cfg.Oracle.Delay != 2*time.Second {
		t.Errorf("Delay = %v, want 2s", cfg.Oracle.Delay)
	}
	if cfg.Scoring.BatchSize != 8 || cfg.Scoring.TopK != 3 {
		t.Errorf("Scoring = %+v, want batch 8 and default top_k", cfg.Scoring)
	}
	if !cfg.Fingerprint.SkipArchive {
		t.Error("SkipArchive not read")
	}
	if got := cfg.TTLs().For(cache.CategoryScore); got != time.Hour {
		t.Errorf("score TTL = %v, want 1h", got)
	}
	if got := cfg.TTLs().For(cache.CategoryFingerprint); got != 7*24*time.Hour {
		t.Errorf("fingerprint TTL = %v, want default", got)
	}
	if got := cfg.CacheOptions().Path; got != filepath.Join("/tmp/rl", "cache.db") {
		t.Errorf("sqlite path = %q", got)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_env")
	t.Setenv("REPOLENS_ORACLE_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("REPOLENS_BATCH_SIZE", "3")

	cfg, err := Load(writeConfig(t, "github:\n  token: from-file\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GitHub.Token != "ghp_env" {
		t.Errorf("Token = %q, want env value", cfg.GitHub.Token)
	}
	got := cfg.OracleOptions()
	want := oracle.Config{
		Provider:    oracle.ProviderOpenAI,
		APIKey:      "sk-env",
		BaseURL:     "http://localhost:11434/v1",
		Temperature: 0.2,
		Timeout:     90 * time.Second,
		Retries:     3,
	}
	if got != want {
		t.Errorf("OracleOptions() = %+v, want %+v", got, want)
	}
	if cfg.Scoring.BatchSize != 3 {
		t.Errorf("BatchSize = %d, want 3", cfg.Scoring.BatchSize)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Oracle.Provider != oracle.ProviderGemini {
		t.Errorf("Provider = %q", cfg.Oracle.Provider)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "scoring: [not, a, map]")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero batch size", func(c *Config) { c.Scoring.BatchSize = 0 }},
		{"zero top k", func(c *Config) { c.Scoring.TopK = 0 }},
		{"too many skills", func(c *Config) { c.Scoring.MaxSkills = 7 }},
		{"zero oracle concurrency", func(c *Config) { c.Oracle.Concurrency = 0 }},
		{"negative delay", func(c *Config) { c.Oracle.Delay = -time.Second }},
		{"unknown provider", func(c *Config) { c.Oracle.Provider = "llama" }},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "etcd" }},
		{"redis without url", func(c *Config) { c.Cache.Backend = cache.BackendRedis }},
		{"file without path", func(c *Config) { c.Cache.Path = "" }},
		{"zero ttl", func(c *Config) { c.Cache.TTL = map[string]time.Duration{"score": 0} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !rlerrors.Is(err, rlerrors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}
