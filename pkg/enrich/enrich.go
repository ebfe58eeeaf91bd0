// Package enrich turns the best scored projects into resume-ready sections.
//
// Work splits into two tiers. The per-repository base (bullets and an
// explicit technology list) does not depend on the requirement document and
// is cached per repository version, so it is generated once and reused for
// every future document. The document-specific part is a professional
// summary, cached per (skill set, document), and a rule-based skill
// alignment computed on every call without asking the oracle.
package enrich

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/repolens/pkg/cache"
	rlerrors "github.com/matzehuels/repolens/pkg/errors"
	"github.com/matzehuels/repolens/pkg/observability"
	"github.com/matzehuels/repolens/pkg/oracle"
	"github.com/matzehuels/repolens/pkg/scoring"
)

// DefaultTopK is the number of projects enriched per run.
const DefaultTopK = 3

// Base is the document-independent part of an enriched project.
type Base struct {
	Name    string   `json:"name"`
	Bullets []string `json:"bullets"`
	Tech    []string `json:"tech"`
}

// EnrichedProject is a scored project rewritten for a resume.
type EnrichedProject struct {
	Name           string   `json:"name"`
	Repo           string   `json:"repo"`
	Bullets        []string `json:"bullets"`
	Skills         []string `json:"skills"`
	RelevanceScore float64  `json:"relevance_score"`
}

// Profile is the resume-ready output of [Enricher.EnrichTop].
type Profile struct {
	Summary  string            `json:"summary"`
	Skills   []string          `json:"skills"`
	Projects []EnrichedProject `json:"projects"`
}

// Enricher produces resume sections for the best scored projects.
type Enricher struct {
	Oracle oracle.Oracle
	Store  *cache.Store
	Logger *log.Logger

	// TopK is used when EnrichTop is called with k <= 0.
	TopK int

	// MaxSkills bounds each project's aligned skill list. Values above
	// DefaultMaxSkills are capped.
	MaxSkills int

	// Concurrency bounds project bases generated at once.
	Concurrency int
}

// NewEnricher returns an Enricher with the default limits.
func NewEnricher(o oracle.Oracle, store *cache.Store) *Enricher {
	if store == nil {
		store = cache.NewStore(nil, cache.StoreOptions{})
	}
	return &Enricher{
		Oracle:      o,
		Store:       store,
		Logger:      log.NewWithOptions(io.Discard, log.Options{}),
		TopK:        DefaultTopK,
		MaxSkills:   DefaultMaxSkills,
		Concurrency: 1,
	}
}

// SummaryKey returns the cache key of the summary for skills and document.
// The order of skills does not matter.
func SummaryKey(skills []string, document string) string {
	sorted := append([]string(nil), skills...)
	sort.Strings(sorted)
	return cache.Key(cache.CategorySummary, append(sorted, cache.HashString(document))...)
}

// BaseKey returns the cache key of the project base for one repository version.
func BaseKey(repo, pushedAt string) string {
	return cache.Key(cache.CategoryProjectBase, repo, pushedAt)
}

// EnrichTop enriches the k highest-scoring projects of scored. Oracle
// failures degrade to an empty summary or a base without bullets; the
// project description stands in for missing bullets.
func (e *Enricher) EnrichTop(ctx context.Context, document string, scored []scoring.ScoredProject, k int) Profile {
	if k <= 0 {
		k = e.TopK
	}
	top := append([]scoring.ScoredProject(nil), scored...)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].RelevanceScore > top[j].RelevanceScore
	})
	top = top[:min(k, len(top))]

	skills := SkillSet(scored)
	profile := Profile{Skills: skills, Projects: make([]EnrichedProject, len(top))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.Concurrency, 1))
	g.Go(func() error {
		profile.Summary = e.summary(gctx, document, skills, top)
		return nil
	})
	for i, p := range top {
		g.Go(func() error {
			base := e.base(gctx, p)
			bullets := base.Bullets
			if len(bullets) == 0 && p.Description != "" {
				bullets = []string{p.Description}
			}
			if bullets == nil {
				bullets = []string{}
			}
			profile.Projects[i] = EnrichedProject{
				Name:           p.Name,
				Repo:           p.Repo,
				Bullets:        bullets,
				Skills:         Align(base.Tech, p.Skills, document, min(max(e.MaxSkills, 1), DefaultMaxSkills)),
				RelevanceScore: p.RelevanceScore,
			}
			return nil
		})
	}
	_ = g.Wait()
	return profile
}

// SkillSet returns the sorted, case-insensitively unique union of the
// skills of projects. The first spelling seen wins.
func SkillSet(projects []scoring.ScoredProject) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range projects {
		for _, s := range p.Skills {
			key := strings.ToLower(strings.TrimSpace(s))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, strings.TrimSpace(s))
		}
	}
	sort.Strings(out)
	return out
}

func (e *Enricher) summary(ctx context.Context, document string, skills []string, top []scoring.ScoredProject) string {
	key := SummaryKey(skills, document)
	var out string
	if e.Store.Get(ctx, key, &out) {
		return out
	}

	names := make([]string, 0, len(top))
	for _, p := range top {
		names = append(names, p.Name)
	}
	raw, err := e.Oracle.Complete(ctx, summaryPrompt(document, skills, names))
	if err != nil {
		if ctx.Err() == nil {
			e.Logger.Warn("summary request failed", "err", err)
			observability.Oracle().OnFallback(ctx, "summary", err.Error())
		}
		return ""
	}
	out = strings.TrimSpace(raw)
	e.Store.Set(ctx, cache.CategorySummary, key, out)
	return out
}

func (e *Enricher) base(ctx context.Context, p scoring.ScoredProject) Base {
	key := BaseKey(p.Repo, p.PushedAt)
	var out Base
	if e.Store.Get(ctx, key, &out) {
		return out.normalize(p.Name)
	}

	err := oracle.CompleteInto(ctx, e.Oracle, basePrompt(p), &out)
	switch {
	case ctx.Err() != nil:
		return Base{Name: p.Name}.normalize(p.Name)
	case err != nil && !rlerrors.Is(err, rlerrors.ErrCodeOracleContract):
		// Transport failures are retried on the next run.
		e.Logger.Warn("project base request failed", "repo", p.Repo, "err", err)
		return Base{Name: p.Name}.normalize(p.Name)
	case err != nil:
		e.Logger.Debug("project base fallback", "repo", p.Repo, "err", err)
		observability.Oracle().OnFallback(ctx, "project_base", err.Error())
		out = Base{Name: p.Name}
	}
	out = out.normalize(p.Name)
	e.Store.Set(ctx, cache.CategoryProjectBase, key, out)
	return out
}

func (b Base) normalize(name string) Base {
	if strings.TrimSpace(b.Name) == "" {
		b.Name = name
	}
	b.Bullets = nonEmpty(b.Bullets)
	b.Tech = nonEmpty(b.Tech)
	return b
}

func nonEmpty(items []string) []string {
	out := []string{}
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func summaryPrompt(document string, skills, projects []string) string {
	return fmt.Sprintf(`You are an ATS-friendly resume writer.

Requirement document:
%s

Candidate skills: %s
Candidate projects: %s

Write a crisp 3-4 line professional summary tailored to the document.
Highlight the closest-matching skills and their impact. Keep it factual and buzzword-light.
Return only the summary text.
`, document, strings.Join(skills, ", "), strings.Join(projects, ", "))
}

func basePrompt(p scoring.ScoredProject) string {
	return fmt.Sprintf(`You are rewriting a GitHub project into resume-ready bullets, independent of any job.

Project: %s
Description: %s
Known skills: %s
Context: %s

Write 2-4 bullets. Start each with an action verb, name technologies explicitly,
state outcomes where the context supports them, and keep each under 20 words.
Return only JSON of the form:
{"name": %q, "bullets": ["..."], "tech": ["..."]}
`, p.Name, p.Description, strings.Join(p.Skills, ", "), p.Reasoning, p.Name)
}
