// Package pipeline wires the repolens stages into one profile run.
//
// A run lists the repositories of a user, fingerprints them, scores the
// fingerprints against a requirement document and enriches the best matches
// into resume-ready sections:
//
//  1. List: read the user's repositories and drop forks and archives
//  2. Fingerprint: build or load one fingerprint per repository version
//  3. Score: rate fingerprints against the document in cached batches
//  4. Enrich: turn the top projects into bullets, aligned skills and a summary
//
// Every stage reads and writes the same [cache.Store], so a repeated run
// for an unchanged user and document makes no remote or oracle calls.
//
// # Usage
//
//	runner := pipeline.NewRunner(githubClient, store, oracle, logger)
//	result, err := runner.Run(ctx, pipeline.Options{
//	    User:     "octocat",
//	    Document: jd,
//	})
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/repolens/pkg/enrich"
	rlerrors "github.com/matzehuels/repolens/pkg/errors"
	"github.com/matzehuels/repolens/pkg/fingerprint"
	"github.com/matzehuels/repolens/pkg/integrations/github"
	"github.com/matzehuels/repolens/pkg/scoring"
)

// DefaultTopK is the number of projects enriched per run.
const DefaultTopK = enrich.DefaultTopK

// Options configures one profile run.
type Options struct {
	// User is the login whose repositories are profiled.
	User string `json:"user"`

	// Document is the requirement document text.
	Document string `json:"-"`

	// TopK bounds the enriched projects. Zero uses DefaultTopK.
	TopK int `json:"top_k,omitempty"`

	// MaxRepos bounds the repositories fingerprinted after filtering.
	// Zero means no bound.
	MaxRepos int `json:"max_repos,omitempty"`

	IncludeForks    bool `json:"include_forks,omitempty"`
	IncludeArchived bool `json:"include_archived,omitempty"`

	// Refresh re-reads the repository listing instead of using the cache.
	// Fingerprints stay keyed by version and are reused regardless.
	Refresh bool `json:"refresh,omitempty"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
func (o *Options) ValidateAndSetDefaults() error {
	o.User = strings.TrimSpace(o.User)
	if o.User == "" {
		return rlerrors.New(rlerrors.ErrCodeInvalidInput, "user is required")
	}
	if strings.ContainsAny(o.User, "/ ") {
		return rlerrors.New(rlerrors.ErrCodeInvalidInput, "invalid user %q", o.User)
	}
	if strings.TrimSpace(o.Document) == "" {
		return rlerrors.New(rlerrors.ErrCodeInvalidInput, "requirement document is empty")
	}
	if o.TopK < 0 || o.MaxRepos < 0 {
		return rlerrors.New(rlerrors.ErrCodeInvalidInput, "top_k and max_repos cannot be negative")
	}
	if o.TopK == 0 {
		o.TopK = DefaultTopK
	}
	return nil
}

// Result is the profile produced by a run.
type Result struct {
	RunID    string                  `json:"run_id"`
	User     UserInfo                `json:"user_info"`
	Skills   []string                `json:"skills"`
	Projects []scoring.ScoredProject `json:"projects"`
	Stats    Stats                   `json:"stats"`
	Resume   enrich.Profile          `json:"resume_ready"`
	Skipped  []fingerprint.Skipped   `json:"skipped,omitempty"`
}

// UserInfo is the public profile of the profiled user.
type UserInfo struct {
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	HTMLURL   string `json:"html_url,omitempty"`
}

func userInfo(login string, u *github.User) UserInfo {
	if u == nil {
		return UserInfo{Login: login}
	}
	info := UserInfo{
		Login:     u.Login,
		Name:      u.Name,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		HTMLURL:   u.HTMLURL,
	}
	if info.Login == "" {
		info.Login = login
	}
	return info
}

// Stats describes the work done by a run.
type Stats struct {
	PublicRepos int `json:"public_repos"`
	Listed      int `json:"listed"`
	Filtered    int `json:"filtered"`
	Built       int `json:"fingerprints_built"`
	Cached      int `json:"fingerprints_cached"`
	Skipped     int `json:"skipped"`
	Scored      int `json:"scored"`
	Fallbacks   int `json:"fallbacks"`

	ListTime        time.Duration `json:"-"`
	FingerprintTime time.Duration `json:"-"`
	ScoreTime       time.Duration `json:"-"`
	EnrichTime      time.Duration `json:"-"`
}

// Total returns the wall time of all stages.
func (s Stats) Total() time.Duration {
	return s.ListTime + s.FingerprintTime + s.ScoreTime + s.EnrichTime
}

// String summarizes the stats on one line.
func (s Stats) String() string {
	return fmt.Sprintf("%d repos listed, %d filtered, %d built, %d cached, %d skipped, %d scored (%d fallback)",
		s.Listed, s.Filtered, s.Built, s.Cached, s.Skipped, s.Scored, s.Fallbacks)
}

// Filter drops forks and archived repositories unless opts includes them,
// then applies MaxRepos. It returns the kept identities and the number
// dropped by the fork and archive rules.
func Filter(ids []fingerprint.Identity, opts Options) ([]fingerprint.Identity, int) {
	out := make([]fingerprint.Identity, 0, len(ids))
	dropped := 0
	for _, id := range ids {
		if (id.Fork && !opts.IncludeForks) || (id.Archived && !opts.IncludeArchived) {
			dropped++
			continue
		}
		out = append(out, id)
	}
	if opts.MaxRepos > 0 && len(out) > opts.MaxRepos {
		out = out[:opts.MaxRepos]
	}
	return out, dropped
}
