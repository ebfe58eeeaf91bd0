package fingerprint

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/repolens/pkg/cache"
	rlerrors "github.com/matzehuels/repolens/pkg/errors"
	"github.com/matzehuels/repolens/pkg/manifest"
	"github.com/matzehuels/repolens/pkg/observability"
	"github.com/matzehuels/repolens/pkg/symbols"
)

// DefaultConcurrency bounds how many repositories [Builder.BuildAll]
// fingerprints at once.
const DefaultConcurrency = 4

// State is a step of the per-repository build.
type State string

const (
	StateStart                  State = "start"
	StateFetchingMetadata       State = "fetching_metadata"
	StateExtractingDependencies State = "extracting_dependencies"
	StateDownloadingArchive     State = "downloading_archive"
	StateExtractingSymbols      State = "extracting_symbols"
	StateAssembled              State = "assembled"
	StateCached                 State = "cached"
)

// Builder computes fingerprints. The zero value is not usable; create one
// with [NewBuilder] and adjust fields before the first build.
type Builder struct {
	Fetcher    Fetcher
	Store      *cache.Store
	Registry   *manifest.Registry
	Summarizer *symbols.Summarizer
	Logger     *log.Logger

	// ReadmeLimit bounds the readme excerpt in bytes.
	ReadmeLimit int

	// SkipArchive disables archive download and symbol extraction.
	SkipArchive bool

	// Concurrency bounds parallel repositories in BuildAll.
	Concurrency int

	// TempDir is the parent for archive extraction. Empty uses os.TempDir.
	TempDir string
}

// NewBuilder returns a Builder with the default registry, summarizer and
// limits. A nil store disables caching.
func NewBuilder(f Fetcher, store *cache.Store) *Builder {
	if store == nil {
		store = cache.NewStore(nil, cache.StoreOptions{})
	}
	return &Builder{
		Fetcher:     f,
		Store:       store,
		Registry:    manifest.Default(),
		Summarizer:  symbols.NewSummarizer(),
		Logger:      log.NewWithOptions(io.Discard, log.Options{}),
		ReadmeLimit: DefaultReadmeLimit,
		Concurrency: DefaultConcurrency,
	}
}

// Key returns the cache key of the fingerprint for id.
func Key(id Identity) string {
	return cache.Key(cache.CategoryFingerprint, id.FullName(), id.PushedAt)
}

// Build returns the fingerprint of id, from the cache when a fingerprint for
// the same PushedAt marker exists. An invalid identity yields an
// INVALID_REPOSITORY error and no fingerprint.
func (b *Builder) Build(ctx context.Context, id Identity) (*Fingerprint, error) {
	fp, _, err := b.build(ctx, id)
	return fp, err
}

func (b *Builder) build(ctx context.Context, id Identity) (*Fingerprint, bool, error) {
	if err := id.Validate(); err != nil {
		return nil, false, err
	}
	repo := id.FullName()
	hooks := observability.Fingerprint()
	hooks.OnBuildStart(ctx, repo)
	start := time.Now()
	b.enter(ctx, repo, StateStart)

	key := Key(id)
	var cached Fingerprint
	if b.Store.Get(ctx, key, &cached) {
		cached.normalize()
		b.Logger.Debug("fingerprint cache hit", "repo", repo, "pushed_at", id.PushedAt)
		hooks.OnBuildComplete(ctx, repo, true, time.Since(start), nil)
		return &cached, true, nil
	}

	fp := b.assemble(ctx, id)
	if err := ctx.Err(); err != nil {
		// Sub-results are empty after cancellation; never store them.
		hooks.OnBuildComplete(ctx, repo, false, time.Since(start), err)
		return nil, false, err
	}
	b.enter(ctx, repo, StateAssembled)

	b.Store.Set(ctx, cache.CategoryFingerprint, key, fp)
	b.enter(ctx, repo, StateCached)

	d := time.Since(start)
	b.Logger.Debug("fingerprint built", "repo", repo, "deps", len(fp.Dependencies), "markers", len(fp.Markers), "duration", d)
	hooks.OnBuildComplete(ctx, repo, false, d, nil)
	return fp, false, nil
}

func (b *Builder) assemble(ctx context.Context, id Identity) *Fingerprint {
	repo := id.FullName()
	fp := &Fingerprint{
		Owner:         id.Owner,
		Name:          id.Name,
		DefaultBranch: id.DefaultBranch,
		PushedAt:      id.PushedAt,
		Description:   id.Description,
		Topics:        id.Topics,
	}

	b.enter(ctx, repo, StateFetchingMetadata)
	var listing []string
	var readme string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		readme = cache.Cached(gctx, b.Store, cache.CategoryReadme, repo, func(ctx context.Context) (string, error) {
			return b.Fetcher.GetReadme(ctx, id.Owner, id.Name)
		}, id.PushedAt)
		return nil
	})
	g.Go(func() error {
		fp.Languages = cache.Cached(gctx, b.Store, cache.CategoryLanguages, repo, func(ctx context.Context) (map[string]int, error) {
			return b.Fetcher.GetLanguages(ctx, id.Owner, id.Name)
		}, id.PushedAt)
		return nil
	})
	g.Go(func() error {
		listing = cache.Cached(gctx, b.Store, cache.CategoryStructure, repo, func(ctx context.Context) ([]string, error) {
			return b.Fetcher.GetDirectoryListing(ctx, id.Owner, id.Name)
		}, id.PushedAt)
		return nil
	})
	_ = g.Wait()
	fp.Readme = truncate(readme, b.ReadmeLimit)

	b.enter(ctx, repo, StateExtractingDependencies)
	fp.Dependencies = cache.Cached(ctx, b.Store, cache.CategoryDependencies, repo, func(ctx context.Context) ([]string, error) {
		return b.dependencies(ctx, id, listing)
	}, id.PushedAt)
	fp.Markers = Markers(listing)

	if !b.SkipArchive {
		fp.Code = b.extractSymbols(ctx, id)
	}
	fp.normalize()
	return fp
}

// dependencies fetches every root file the registry knows and merges the
// parsed names in listing order.
func (b *Builder) dependencies(ctx context.Context, id Identity, listing []string) ([]string, error) {
	var files []string
	for _, entry := range listing {
		if !strings.HasSuffix(entry, "/") && b.Registry.Lookup(entry) != nil {
			files = append(files, entry)
		}
	}

	lists := make([][]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultConcurrency)
	for i, file := range files {
		g.Go(func() error {
			text, err := b.Fetcher.GetFileRaw(gctx, id.Owner, id.Name, file)
			if err != nil {
				b.Logger.Warn("manifest fetch failed", "repo", id.FullName(), "file", file, "err", err)
				return nil
			}
			names, err := b.Registry.ExtractChecked(file, text)
			if err != nil {
				b.Logger.Warn("manifest unreadable", "repo", id.FullName(), "file", file, "err", err)
				return nil
			}
			lists[i] = names
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deps := manifest.Merge(lists...)
	if deps == nil {
		deps = []string{}
	}
	return deps, nil
}

// extractSymbols downloads the archive into a private temp dir, summarizes it and
// removes the dir on every path. Failures give an empty summary.
func (b *Builder) extractSymbols(ctx context.Context, id Identity) symbols.CodeSummary {
	repo := id.FullName()
	b.enter(ctx, repo, StateDownloadingArchive)

	dir, err := os.MkdirTemp(b.TempDir, "repolens-*")
	if err != nil {
		b.Logger.Warn("archive temp dir failed", "repo", repo, "err", err)
		return symbols.EmptySummary()
	}
	defer os.RemoveAll(dir)

	root, err := b.Fetcher.DownloadArchive(ctx, id.Owner, id.Name, id.DefaultBranch, dir)
	if err != nil {
		b.Logger.Warn("archive download failed", "repo", repo, "err", err)
		return symbols.EmptySummary()
	}

	b.enter(ctx, repo, StateExtractingSymbols)
	return b.Summarizer.Summarize(ctx, root)
}

func (b *Builder) enter(ctx context.Context, repo string, s State) {
	b.Logger.Debug("fingerprint state", "repo", repo, "state", s)
	observability.Fingerprint().OnStage(ctx, repo, string(s))
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "")
}

// Skipped records a repository that produced no fingerprint.
type Skipped struct {
	Repo   string        `json:"repo"`
	Code   rlerrors.Code `json:"code,omitempty"`
	Reason string        `json:"reason"`
}

// Report summarizes a [Builder.BuildAll] run.
type Report struct {
	Built   int       `json:"built"`
	Cached  int       `json:"cached"`
	Skipped []Skipped `json:"skipped,omitempty"`
}

// BuildAll fingerprints ids with bounded concurrency. Output keeps input
// order and omits repositories that failed; those are listed in the report.
// The returned error is non-nil only when ctx was cancelled.
func (b *Builder) BuildAll(ctx context.Context, ids []Identity) ([]*Fingerprint, Report, error) {
	results := make([]*Fingerprint, len(ids))
	errs := make([]error, len(ids))
	var built, hits atomic.Int32

	g := new(errgroup.Group)
	g.SetLimit(max(b.Concurrency, 1))
	for i, id := range ids {
		if ctx.Err() != nil {
			errs[i] = ctx.Err()
			continue
		}
		g.Go(func() error {
			fp, cached, err := b.build(ctx, id)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = fp
			if cached {
				hits.Add(1)
			} else {
				built.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	var report Report
	out := make([]*Fingerprint, 0, len(ids))
	for i, fp := range results {
		if fp != nil {
			out = append(out, fp)
			continue
		}
		name := ids[i].FullName()
		b.Logger.Warn("repository skipped", "repo", name, "err", errs[i])
		report.Skipped = append(report.Skipped, Skipped{
			Repo:   name,
			Code:   rlerrors.GetCode(errs[i]),
			Reason: rlerrors.UserMessage(errs[i]),
		})
	}
	report.Built = int(built.Load())
	report.Cached = int(hits.Load())
	return out, report, ctx.Err()
}
