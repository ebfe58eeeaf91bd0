package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/repolens/pkg/document"
	"github.com/matzehuels/repolens/pkg/observability"
	"github.com/matzehuels/repolens/pkg/pipeline"
)

// profileOpts holds flags for the profile command.
type profileOpts struct {
	document        string
	output          string
	top             int
	maxRepos        int
	show            int
	includeForks    bool
	includeArchived bool
	refresh         bool
	asJSON          bool
}

// profileCommand creates the profile command.
func (c *CLI) profileCommand() *cobra.Command {
	opts := profileOpts{show: 10}

	cmd := &cobra.Command{
		Use:   "profile <user>",
		Short: "Rank a user's repositories against a requirement document",
		Long: `Profile lists the public repositories of a GitHub user, fingerprints each
one, scores the fingerprints against a job description and writes
resume-ready sections for the best matches.

The document may be plain text, Markdown or PDF.`,
		Example: `  repolens profile octocat --jd job.md
  repolens profile octocat --jd job.pdf --top 5 --json -o profile.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runProfile(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.document, "jd", "", "requirement document (.txt, .md or .pdf)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the result to a file instead of stdout")
	cmd.Flags().IntVar(&opts.top, "top", 0, "number of projects to enrich (default from config)")
	cmd.Flags().IntVar(&opts.maxRepos, "max-repos", 0, "bound the repositories fingerprinted (0 = all)")
	cmd.Flags().IntVar(&opts.show, "show", opts.show, "ranked projects to display (0 = all)")
	cmd.Flags().BoolVar(&opts.includeForks, "include-forks", false, "include forked repositories")
	cmd.Flags().BoolVar(&opts.includeArchived, "include-archived", false, "include archived repositories")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-read the repository listing")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("jd")

	return cmd
}

func (c *CLI) runProfile(cmd *cobra.Command, user string, opts profileOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	doc, err := document.Load(opts.document)
	if err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.includeForks {
		cfg.Fingerprint.IncludeForks = true
	}
	if opts.includeArchived {
		cfg.Fingerprint.IncludeArchived = true
	}
	top := opts.top
	if top == 0 {
		top = cfg.Scoring.TopK
	}

	runner, err := c.newRunner(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	cacheStats := observability.NewCacheCounters()
	oracleStats := &observability.OracleCounters{}
	observability.SetCacheHooks(cacheStats)
	observability.SetOracleHooks(oracleStats)
	defer observability.Reset()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Profiling %s...", user))
	spinner.Start()
	result, err := runner.Run(ctx, pipeline.Options{
		User:            user,
		Document:        doc,
		TopK:            top,
		MaxRepos:        opts.maxRepos,
		IncludeForks:    cfg.Fingerprint.IncludeForks,
		IncludeArchived: cfg.Fingerprint.IncludeArchived,
		Refresh:         opts.refresh,
	})
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Profiled %s", user))

	hits, misses := cacheStats.Totals()
	calls, failed, fallbacks := oracleStats.Snapshot()
	logger.Debug("run summary",
		"cache_hits", hits,
		"cache_misses", misses,
		"oracle_calls", calls,
		"oracle_failures", failed,
		"fallbacks", fallbacks)
	if failures := runner.Store.BackendFailures(); failures > 0 {
		logger.Warn("cache backend errors during run", "count", failures)
	}
	for _, s := range result.Skipped {
		logger.Debug("skipped repository", "repo", s.Repo, "code", s.Code, "reason", s.Reason)
	}

	return writeResult(result, opts)
}

func writeResult(result *pipeline.Result, opts profileOpts) error {
	var w io.Writer = os.Stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	} else {
		renderProfile(w, result, opts.show)
	}

	if opts.output != "" {
		printSuccess("Profile written")
		printFile(opts.output)
	}
	if result.Stats.Fallbacks > 0 {
		printWarning("%d projects received fallback scores", result.Stats.Fallbacks)
	}
	return nil
}
