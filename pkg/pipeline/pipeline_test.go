package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/repolens/pkg/cache"
	rlerrors "github.com/matzehuels/repolens/pkg/errors"
	"github.com/matzehuels/repolens/pkg/fingerprint"
	"github.com/matzehuels/repolens/pkg/integrations/github"
	"github.com/matzehuels/repolens/pkg/oracle"
)

const jd = "Looking for a backend engineer with Redis and Flask."

type fakeSource struct {
	mu      sync.Mutex
	calls   map[string]int
	repos   []fingerprint.Identity
	listErr error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		calls: make(map[string]int),
		repos: []fingerprint.Identity{
			{Owner: "octo", Name: "api", PushedAt: "2024-01-01T00:00:00Z", Description: "REST API"},
			{Owner: "octo", Name: "fork", PushedAt: "2024-01-02T00:00:00Z", Fork: true},
			{Owner: "octo", Name: "old", PushedAt: "2020-01-01T00:00:00Z", Archived: true},
			{Owner: "octo", Name: "tool", PushedAt: "2024-02-01T00:00:00Z", Description: "CLI tool"},
		},
	}
}

func (f *fakeSource) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeSource) count(ops ...string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, op := range ops {
		n += f.calls[op]
	}
	return n
}

func (f *fakeSource) ListUserRepositories(context.Context, string) ([]fingerprint.Identity, error) {
	f.record("list")
	return f.repos, f.listErr
}

func (f *fakeSource) GetRepository(_ context.Context, owner, repo string) (fingerprint.Identity, error) {
	f.record("repo")
	for _, id := range f.repos {
		if id.Owner == owner && id.Name == repo {
			return id, nil
		}
	}
	return fingerprint.Identity{}, errors.New("not found")
}

func (f *fakeSource) GetUser(_ context.Context, login string) (*github.User, error) {
	f.record("user")
	return &github.User{Login: login, Name: "Octo Cat", PublicRepos: 4}, nil
}

func (f *fakeSource) GetReadme(context.Context, string, string) (string, error) {
	f.record("readme")
	return "# readme", nil
}

func (f *fakeSource) GetLanguages(_ context.Context, _, repo string) (map[string]int, error) {
	f.record("languages")
	if repo == "api" {
		return map[string]int{"Python": 900}, nil
	}
	return map[string]int{"Go": 500}, nil
}

func (f *fakeSource) GetDirectoryListing(_ context.Context, _, repo string) ([]string, error) {
	f.record("listing")
	if repo == "api" {
		return []string{"requirements.txt", "tests/"}, nil
	}
	return []string{"go.mod"}, nil
}

func (f *fakeSource) GetFileRaw(_ context.Context, _, _, path string) (string, error) {
	f.record("file")
	switch path {
	case "requirements.txt":
		return "flask==2.0.1\nredis>=4\n", nil
	case "go.mod":
		return "module example.com/tool\n\ngo 1.22\n\nrequire github.com/spf13/cobra v1.8.0\n", nil
	}
	return "", errors.New("not found")
}

func (f *fakeSource) DownloadArchive(context.Context, string, string, string, string) (string, error) {
	f.record("archive")
	return "", errors.New("archives disabled in tests")
}

func (f *fakeSource) remote() int {
	return f.count("list", "readme", "languages", "listing", "file", "archive")
}

// fakeOracle scores "api" above everything else and answers enrichment
// prompts with fixed text.
func fakeOracle(t *testing.T, calls *atomic.Int32) oracle.Oracle {
	return oracle.Func(func(_ context.Context, prompt string) (string, error) {
		calls.Add(1)
		switch {
		case strings.Contains(prompt, "Repositories (JSON list):"):
			_, rest, _ := strings.Cut(prompt, "Repositories (JSON list):\n")
			var repos []fingerprint.Fingerprint
			if err := json.NewDecoder(strings.NewReader(rest)).Decode(&repos); err != nil {
				t.Errorf("decode scoring prompt: %v", err)
				return "", err
			}
			var items []string
			for _, r := range repos {
				score := 0.4
				if r.Name == "api" {
					score = 0.8
				}
				items = append(items, fmt.Sprintf(`{"name": %q, "skills": ["Python", "Redis"], "relevance_score": %v, "reasoning": "ok"}`, r.Name, score))
			}
			return "[" + strings.Join(items, ",") + "]", nil
		case strings.HasPrefix(prompt, "You are an ATS-friendly"):
			return "Backend engineer.", nil
		default:
			return `{"bullets": ["Built an API"], "tech": ["Flask", "Redis"]}`, nil
		}
	})
}

func newRunner(t *testing.T, src *fakeSource, calls *atomic.Int32) *Runner {
	t.Helper()
	r := NewRunner(src, cache.NewMemoryStore(), fakeOracle(t, calls), log.New(io.Discard))
	r.Builder.SkipArchive = true
	return r
}

func TestRun(t *testing.T) {
	src := newFakeSource()
	var calls atomic.Int32
	r := newRunner(t, src, &calls)

	result, err := r.Run(context.Background(), Options{User: "octo", Document: jd})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, UserInfo{Login: "octo", Name: "Octo Cat"}, result.User)

	require.Len(t, result.Projects, 2)
	assert.Equal(t, "api", result.Projects[0].Name)
	assert.Equal(t, "octo/api", result.Projects[0].Repo)
	assert.Equal(t, "tool", result.Projects[1].Name)
	assert.Equal(t, []string{"Python", "Redis"}, result.Skills)

	assert.Equal(t, Stats{
		PublicRepos:     4,
		Listed:          4,
		Filtered:        2,
		Built:           2,
		Scored:          2,
		ListTime:        result.Stats.ListTime,
		FingerprintTime: result.Stats.FingerprintTime,
		ScoreTime:       result.Stats.ScoreTime,
		EnrichTime:      result.Stats.EnrichTime,
	}, result.Stats)

	assert.Equal(t, "Backend engineer.", result.Resume.Summary)
	require.Len(t, result.Resume.Projects, 2)
	api := result.Resume.Projects[0]
	assert.Equal(t, []string{"Built an API"}, api.Bullets)
	assert.Equal(t, []string{"Flask", "Redis", "Python"}, api.Skills)

	// One scoring chunk, one summary, two project bases.
	assert.EqualValues(t, 4, calls.Load())
}

func TestRunIsIdempotent(t *testing.T) {
	src := newFakeSource()
	var calls atomic.Int32
	r := newRunner(t, src, &calls)
	opts := Options{User: "octo", Document: jd}

	first, err := r.Run(context.Background(), opts)
	require.NoError(t, err)
	remote, oracleCalls := src.remote(), calls.Load()

	second, err := r.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, remote, src.remote(), "second run must not fetch")
	assert.Equal(t, oracleCalls, calls.Load(), "second run must not ask the oracle")
	assert.Equal(t, first.Projects, second.Projects)
	assert.Equal(t, first.Resume, second.Resume)
	assert.Equal(t, 2, second.Stats.Cached)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRunNewVersionRefetches(t *testing.T) {
	src := newFakeSource()
	var calls atomic.Int32
	r := newRunner(t, src, &calls)

	_, err := r.Run(context.Background(), Options{User: "octo", Document: jd})
	require.NoError(t, err)

	src.repos[0].PushedAt = "2024-03-01T00:00:00Z"
	result, err := r.Run(context.Background(), Options{User: "octo", Document: jd, Refresh: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Built)
	assert.Equal(t, 1, result.Stats.Cached)
}

func TestRunSkipsInvalidRepositories(t *testing.T) {
	src := newFakeSource()
	src.repos = append(src.repos, fingerprint.Identity{Owner: "octo", Name: ""})
	var calls atomic.Int32
	r := newRunner(t, src, &calls)

	result, err := r.Run(context.Background(), Options{User: "octo", Document: jd})
	require.NoError(t, err)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, rlerrors.ErrCodeInvalidRepository, result.Skipped[0].Code)
	assert.Len(t, result.Projects, 2)
}

func TestRunListingFailure(t *testing.T) {
	src := newFakeSource()
	src.listErr = errors.New("boom")
	var calls atomic.Int32
	r := newRunner(t, src, &calls)

	_, err := r.Run(context.Background(), Options{User: "octo", Document: jd})
	require.Error(t, err)

	// The failure is not cached.
	src.listErr = nil
	_, err = r.Run(context.Background(), Options{User: "octo", Document: jd})
	require.NoError(t, err)
	assert.Equal(t, 2, src.count("list"))
}

func TestRunCancelled(t *testing.T) {
	src := newFakeSource()
	var calls atomic.Int32
	r := newRunner(t, src, &calls)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, Options{User: "octo", Document: jd})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestRunInvalidOptions(t *testing.T) {
	r := newRunner(t, newFakeSource(), new(atomic.Int32))
	for _, opts := range []Options{
		{Document: jd},
		{User: "a/b", Document: jd},
		{User: "octo", Document: "  "},
		{User: "octo", Document: jd, TopK: -1},
	} {
		_, err := r.Run(context.Background(), opts)
		assert.True(t, rlerrors.Is(err, rlerrors.ErrCodeInvalidInput), "%+v: %v", opts, err)
	}
}

func TestFingerprint(t *testing.T) {
	src := newFakeSource()
	r := newRunner(t, src, new(atomic.Int32))

	fp, err := r.Fingerprint(context.Background(), "octo", "api")
	require.NoError(t, err)
	assert.Equal(t, []string{"flask", "redis"}, fp.Dependencies)
	assert.Equal(t, []string{"has_tests"}, fp.Markers)

	_, err = r.Fingerprint(context.Background(), "octo", "missing")
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	ids := newFakeSource().repos
	names := func(ids []fingerprint.Identity) []string {
		var out []string
		for _, id := range ids {
			out = append(out, id.Name)
		}
		return out
	}

	tests := []struct {
		name        string
		opts        Options
		want        []string
		wantDropped int
	}{
		{"default", Options{}, []string{"api", "tool"}, 2},
		{"forks", Options{IncludeForks: true}, []string{"api", "fork", "tool"}, 1},
		{"everything", Options{IncludeForks: true, IncludeArchived: true}, []string{"api", "fork", "old", "tool"}, 0},
		{"bounded", Options{MaxRepos: 1}, []string{"api"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped := Filter(ids, tt.opts)
			assert.Equal(t, tt.want, names(got))
			assert.Equal(t, tt.wantDropped, dropped)
		})
	}
}
