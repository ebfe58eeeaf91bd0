// Package config loads repolens settings from defaults, an optional YAML
// file and the environment, in that order of increasing precedence.
//
// YAML values may reference environment variables (${GITHUB_TOKEN}); they
// are expanded before parsing. A .env file in the working directory is read
// by [LoadDotEnv] and never overrides variables already set.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/repolens/pkg/cache"
	"github.com/matzehuels/repolens/pkg/enrich"
	rlerrors "github.com/matzehuels/repolens/pkg/errors"
	"github.com/matzehuels/repolens/pkg/fingerprint"
	"github.com/matzehuels/repolens/pkg/oracle"
	"github.com/matzehuels/repolens/pkg/scoring"
)

// Config holds all repolens configuration.
type Config struct {
	GitHub      GitHubConfig      `yaml:"github"`
	Oracle      OracleConfig      `yaml:"oracle"`
	Cache       CacheConfig       `yaml:"cache"`
	Fingerprint FingerprintConfig `yaml:"fingerprint"`
	Scoring     ScoringConfig     `yaml:"scoring"`
}

// GitHubConfig configures the repository host client.
type GitHubConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

// OracleConfig selects the completion backend and paces calls to it.
type OracleConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	Delay       time.Duration `yaml:"delay"`
	Concurrency int           `yaml:"concurrency"`
	Retries     int           `yaml:"retries"`

	// RawCache memoizes raw prompt/response pairs in addition to the
	// per-stage caches.
	RawCache bool `yaml:"raw_cache"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend    string                   `yaml:"backend"`
	URL        string                   `yaml:"url"`
	Path       string                   `yaml:"path"`
	Database   string                   `yaml:"database"`
	Collection string                   `yaml:"collection"`
	MaxEntries int                      `yaml:"max_entries"`
	TTL        map[string]time.Duration `yaml:"ttl"`
}

// FingerprintConfig tunes repository fingerprinting.
type FingerprintConfig struct {
	ReadmeLimit     int   `yaml:"readme_limit"`
	SkipArchive     bool  `yaml:"skip_archive"`
	Concurrency     int   `yaml:"concurrency"`
	MaxArchiveBytes int64 `yaml:"max_archive_bytes"`
	IncludeForks    bool  `yaml:"include_forks"`
	IncludeArchived bool  `yaml:"include_archived"`
}

// ScoringConfig tunes batch scoring and enrichment.
type ScoringConfig struct {
	BatchSize int `yaml:"batch_size"`
	TopK      int `yaml:"top_k"`
	MaxSkills int `yaml:"max_skills"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Oracle: OracleConfig{
			Provider:    oracle.ProviderGemini,
			Temperature: 0.2,
			Timeout:     90 * time.Second,
			Delay:       500 * time.Millisecond,
			Concurrency: 1,
			Retries:     3,
		},
		Cache: CacheConfig{
			Backend:    cache.BackendFile,
			Path:       DefaultCacheDir(),
			Database:   "repolens",
			Collection: "cache",
		},
		Fingerprint: FingerprintConfig{
			ReadmeLimit: fingerprint.DefaultReadmeLimit,
			Concurrency: fingerprint.DefaultConcurrency,
		},
		Scoring: ScoringConfig{
			BatchSize: scoring.DefaultBatchSize,
			TopK:      3,
			MaxSkills: enrich.DefaultMaxSkills,
		},
	}
}

// DefaultCacheDir returns the per-user cache directory for the file backend.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "repolens")
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// Load reads the YAML file at path, if any, over the defaults and applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from well-known environment variables.
func (c *Config) applyEnv() {
	setString(&c.GitHub.Token, "GITHUB_TOKEN")
	setString(&c.Oracle.Provider, "REPOLENS_ORACLE_PROVIDER")
	setString(&c.Oracle.Model, "REPOLENS_ORACLE_MODEL")
	setString(&c.Cache.Backend, "REPOLENS_CACHE_BACKEND")
	setString(&c.Cache.URL, "REPOLENS_CACHE_URL")
	setString(&c.Cache.Path, "REPOLENS_CACHE_PATH")
	setInt(&c.Scoring.BatchSize, "REPOLENS_BATCH_SIZE")

	if c.Oracle.APIKey == "" {
		switch c.Oracle.Provider {
		case oracle.ProviderOpenAI:
			setString(&c.Oracle.APIKey, "OPENAI_API_KEY")
			setString(&c.Oracle.BaseURL, "OPENAI_BASE_URL")
		default:
			setString(&c.Oracle.APIKey, "GEMINI_API_KEY")
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Scoring.BatchSize <= 0:
		return invalid("scoring.batch_size must be positive, got %d", c.Scoring.BatchSize)
	case c.Scoring.TopK <= 0:
		return invalid("scoring.top_k must be positive, got %d", c.Scoring.TopK)
	case c.Scoring.MaxSkills <= 0:
		return invalid("scoring.max_skills must be positive, got %d", c.Scoring.MaxSkills)
	case c.Scoring.MaxSkills > enrich.DefaultMaxSkills:
		return invalid("scoring.max_skills cannot exceed %d, got %d", enrich.DefaultMaxSkills, c.Scoring.MaxSkills)
	case c.Oracle.Concurrency <= 0:
		return invalid("oracle.concurrency must be positive, got %d", c.Oracle.Concurrency)
	case c.Oracle.Delay < 0:
		return invalid("oracle.delay cannot be negative")
	case c.Oracle.Retries < 0:
		return invalid("oracle.retries cannot be negative")
	case c.Fingerprint.Concurrency <= 0:
		return invalid("fingerprint.concurrency must be positive, got %d", c.Fingerprint.Concurrency)
	case c.Fingerprint.ReadmeLimit < 0:
		return invalid("fingerprint.readme_limit cannot be negative")
	}

	switch c.Oracle.Provider {
	case oracle.ProviderGemini, oracle.ProviderOpenAI:
	default:
		return invalid("unknown oracle provider %q", c.Oracle.Provider)
	}

	switch c.Cache.Backend {
	case cache.BackendRedis, cache.BackendMongo:
		if c.Cache.URL == "" {
			return invalid("cache backend %s requires cache.url", c.Cache.Backend)
		}
	case cache.BackendSQLite, cache.BackendFile:
		if c.Cache.Path == "" {
			return invalid("cache backend %s requires cache.path", c.Cache.Backend)
		}
	case cache.BackendMemory, cache.BackendNone:
	default:
		return invalid("unknown cache backend %q", c.Cache.Backend)
	}

	for category, ttl := range c.Cache.TTL {
		if ttl <= 0 {
			return invalid("cache.ttl.%s must be positive", category)
		}
	}
	return nil
}

// CacheOptions converts the cache section for [cache.Open].
func (c *Config) CacheOptions() cache.Options {
	path := c.Cache.Path
	if c.Cache.Backend == cache.BackendSQLite && filepath.Ext(path) == "" {
		path = filepath.Join(path, "cache.db")
	}
	return cache.Options{
		Backend:    c.Cache.Backend,
		URL:        c.Cache.URL,
		Path:       path,
		Database:   c.Cache.Database,
		Collection: c.Cache.Collection,
		MaxEntries: c.Cache.MaxEntries,
	}
}

// TTLs returns the default TTL table with the configured overrides.
func (c *Config) TTLs() cache.TTLs {
	return cache.DefaultTTLs().With(c.Cache.TTL)
}

// OracleOptions converts the oracle section for [oracle.New].
func (c *Config) OracleOptions() oracle.Config {
	return oracle.Config{
		Provider:    c.Oracle.Provider,
		Model:       c.Oracle.Model,
		APIKey:      c.Oracle.APIKey,
		BaseURL:     c.Oracle.BaseURL,
		Temperature: c.Oracle.Temperature,
		Timeout:     c.Oracle.Timeout,
		Retries:     c.Oracle.Retries,
	}
}

func invalid(format string, args ...any) error {
	return rlerrors.New(rlerrors.ErrCodeInvalidConfig, format, args...)
}
