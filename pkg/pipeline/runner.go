package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/repolens/pkg/cache"
	"github.com/matzehuels/repolens/pkg/enrich"
	"github.com/matzehuels/repolens/pkg/fingerprint"
	"github.com/matzehuels/repolens/pkg/integrations/github"
	"github.com/matzehuels/repolens/pkg/oracle"
	"github.com/matzehuels/repolens/pkg/scoring"
)

// Source is the repository host a Runner reads from.
type Source interface {
	fingerprint.Fetcher

	// GetRepository returns the identity of one repository.
	GetRepository(ctx context.Context, owner, repo string) (fingerprint.Identity, error)

	// GetUser returns the public profile of login.
	GetUser(ctx context.Context, login string) (*github.User, error)
}

// Runner executes profile runs. Its stages share one Store and Logger.
//
// A Runner holds no per-run state; multiple goroutines may call Run
// concurrently with different options.
type Runner struct {
	Source   Source
	Store    *cache.Store
	Builder  *fingerprint.Builder
	Scorer   *scoring.Scorer
	Enricher *enrich.Enricher
	Logger   *log.Logger
}

// NewRunner creates a runner whose stages use src, store and o.
// A nil store disables caching; a nil logger uses log.Default().
// Stage fields may be tuned on the returned Runner before the first run.
func NewRunner(src Source, store *cache.Store, o oracle.Oracle, logger *log.Logger) *Runner {
	if store == nil {
		store = cache.NewStore(nil, cache.StoreOptions{})
	}
	if logger == nil {
		logger = log.Default()
	}

	builder := fingerprint.NewBuilder(src, store)
	builder.Logger = logger
	scorer := scoring.NewScorer(o, store)
	scorer.Logger = logger
	enricher := enrich.NewEnricher(o, store)
	enricher.Logger = logger

	return &Runner{
		Source:   src,
		Store:    store,
		Builder:  builder,
		Scorer:   scorer,
		Enricher: enricher,
		Logger:   logger,
	}
}

// Run profiles opts.User against opts.Document.
//
// Per-repository and per-chunk failures never fail the run: they become
// skipped entries or fallback scores. Run fails when the repository listing
// cannot be read or ctx is cancelled; cache entries written before
// cancellation remain valid.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{RunID: uuid.NewString()}
	logger := r.Logger.With("run", result.RunID[:8])

	// Stage 1: List
	start := time.Now()
	user, err := r.Source.GetUser(ctx, opts.User)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("user profile unavailable", "user", opts.User, "err", err)
	}
	result.User = userInfo(opts.User, user)
	if user != nil {
		result.Stats.PublicRepos = user.PublicRepos
	}

	all, err := r.Repositories(ctx, opts.User, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	ids, dropped := Filter(all, opts)
	result.Stats.Listed = len(all)
	result.Stats.Filtered = dropped
	result.Stats.ListTime = time.Since(start)
	logger.Info("listed repositories",
		"user", opts.User,
		"listed", len(all),
		"kept", len(ids),
		"duration", result.Stats.ListTime)

	// Stage 2: Fingerprint
	start = time.Now()
	fps, report, err := r.Builder.BuildAll(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}
	result.Skipped = report.Skipped
	result.Stats.Built = report.Built
	result.Stats.Cached = report.Cached
	result.Stats.Skipped = len(report.Skipped)
	result.Stats.FingerprintTime = time.Since(start)
	logger.Info("built fingerprints",
		"built", report.Built,
		"cached", report.Cached,
		"skipped", len(report.Skipped),
		"duration", result.Stats.FingerprintTime)

	// Stage 3: Score
	start = time.Now()
	scored, err := r.Scorer.ScoreBatch(ctx, opts.Document, fps)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	result.Projects = scored
	result.Skills = enrich.SkillSet(scored)
	result.Stats.Scored = len(scored)
	for _, p := range scored {
		if p.IsFallback() {
			result.Stats.Fallbacks++
		}
	}
	result.Stats.ScoreTime = time.Since(start)
	logger.Info("scored projects",
		"scored", len(scored),
		"fallbacks", result.Stats.Fallbacks,
		"duration", result.Stats.ScoreTime)

	// Stage 4: Enrich
	start = time.Now()
	result.Resume = r.Enricher.EnrichTop(ctx, opts.Document, scored, opts.TopK)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}
	result.Stats.EnrichTime = time.Since(start)
	logger.Info("enriched projects",
		"projects", len(result.Resume.Projects),
		"duration", result.Stats.EnrichTime)

	return result, nil
}

// Repositories returns the repositories of user, from the cache unless
// refresh is set. Listing failures are returned and never cached.
func (r *Runner) Repositories(ctx context.Context, user string, refresh bool) ([]fingerprint.Identity, error) {
	key := cache.Key(cache.CategoryRepos, user)
	var ids []fingerprint.Identity
	if !refresh && r.Store.Get(ctx, key, &ids) {
		return ids, nil
	}
	ids, err := r.Source.ListUserRepositories(ctx, user)
	if err != nil {
		return nil, err
	}
	r.Store.Set(ctx, cache.CategoryRepos, key, ids)
	return ids, nil
}

// Fingerprint builds the fingerprint of one repository by full name.
func (r *Runner) Fingerprint(ctx context.Context, owner, repo string) (*fingerprint.Fingerprint, error) {
	id, err := r.Source.GetRepository(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	return r.Builder.Build(ctx, id)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Store != nil {
		return r.Store.Close()
	}
	return nil
}
