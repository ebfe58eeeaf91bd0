package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/repolens/pkg/buildinfo"
	"github.com/matzehuels/repolens/pkg/cache"
	"github.com/matzehuels/repolens/pkg/config"
	"github.com/matzehuels/repolens/pkg/integrations/github"
	"github.com/matzehuels/repolens/pkg/oracle"
	"github.com/matzehuels/repolens/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "repolens"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "repolens ranks a developer's repositories against a job description",
		Long: `repolens fingerprints every public repository of a GitHub user, scores the
fingerprints against a requirement document with an LLM and turns the best
matches into resume-ready bullets. Results are cached per repository version,
so repeated runs only pay for what changed.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the persistent cache")

	root.AddCommand(c.profileCommand())
	root.AddCommand(c.fingerprintCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads .env, the config file and the environment.
func (c *CLI) loadConfig() (*config.Config, error) {
	config.LoadDotEnv()
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.noCache {
		cfg.Cache.Backend = cache.BackendNone
	}
	return cfg, nil
}

// openStore opens the configured backend. A backend that cannot be opened
// degrades to an in-process cache for this run.
func (c *CLI) openStore(ctx context.Context, cfg *config.Config) *cache.Store {
	backend, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		c.Logger.Warn("cache backend unavailable, using memory", "backend", cfg.Cache.Backend, "err", err)
		backend = cache.NewMemoryCache(cfg.Cache.MaxEntries)
	}
	return cache.NewStore(backend, cache.StoreOptions{
		TTLs:   cfg.TTLs(),
		Logger: c.Logger,
	})
}

func newSource(cfg *config.Config) *github.Client {
	client := github.NewClient(cfg.GitHub.Token)
	if cfg.GitHub.BaseURL != "" {
		client.WithBaseURL(cfg.GitHub.BaseURL)
	}
	if cfg.Fingerprint.MaxArchiveBytes > 0 {
		client.MaxArchiveBytes = cfg.Fingerprint.MaxArchiveBytes
	}
	return client
}

func newOracle(ctx context.Context, cfg *config.Config, store *cache.Store) (oracle.Oracle, error) {
	opts := cfg.OracleOptions()
	o, err := oracle.New(ctx, opts)
	if err != nil {
		return nil, err
	}
	if cfg.Oracle.RawCache {
		o = oracle.NewCached(o, store, opts.Provider+":"+opts.Model)
	}
	return o, nil
}

// newRunner creates a pipeline runner for CLI use. Commands that never
// reach the oracle pass withOracle=false and need no API key.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, withOracle bool) (*pipeline.Runner, error) {
	store := c.openStore(ctx, cfg)

	var o oracle.Oracle
	if withOracle {
		var err error
		if o, err = newOracle(ctx, cfg, store); err != nil {
			store.Close()
			return nil, err
		}
	}

	r := pipeline.NewRunner(newSource(cfg), store, o, c.Logger)
	r.Builder.ReadmeLimit = cfg.Fingerprint.ReadmeLimit
	r.Builder.SkipArchive = cfg.Fingerprint.SkipArchive
	r.Builder.Concurrency = cfg.Fingerprint.Concurrency
	r.Scorer.BatchSize = cfg.Scoring.BatchSize
	r.Scorer.Concurrency = cfg.Oracle.Concurrency
	r.Scorer.Delay = cfg.Oracle.Delay
	r.Enricher.TopK = cfg.Scoring.TopK
	r.Enricher.MaxSkills = cfg.Scoring.MaxSkills
	r.Enricher.Concurrency = cfg.Oracle.Concurrency
	return r, nil
}
