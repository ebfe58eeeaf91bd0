package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/matzehuels/repolens/pkg/fingerprint"
	"github.com/matzehuels/repolens/pkg/integrations"
)

const (
	defaultBaseURL = "https://api.github.com"
	acceptJSON     = "application/vnd.github.v3+json"
	acceptRaw      = "application/vnd.github.v3.raw"

	perPage  = 100
	maxPages = 10
)

var repoURLPattern = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/?#]+)`)

// Client provides access to the GitHub REST API. It implements
// [fingerprint.Fetcher] and is safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string

	// MaxArchiveBytes bounds a downloaded zipball.
	MaxArchiveBytes int64
}

var _ fingerprint.Fetcher = (*Client)(nil)

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests (lower rate limits).
func NewClient(token string) *Client {
	headers := map[string]string{"Accept": acceptJSON}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:          integrations.NewClient(headers),
		baseURL:         defaultBaseURL,
		MaxArchiveBytes: DefaultMaxArchiveBytes,
	}
}

// WithBaseURL points the client at another API root, such as GitHub
// Enterprise or a test server.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimSuffix(base, "/")
	return c
}

// ListUserRepositories returns the repositories owned by owner, most
// recently updated first. At most maxPages pages are read.
func (c *Client) ListUserRepositories(ctx context.Context, owner string) ([]fingerprint.Identity, error) {
	var out []fingerprint.Identity
	for page := 1; page <= maxPages; page++ {
		u := fmt.Sprintf("%s/users/%s/repos?per_page=%d&type=owner&sort=updated&page=%d",
			c.baseURL, url.PathEscape(owner), perPage, page)

		var repos []apiRepoResponse
		if err := c.Get(ctx, u, &repos); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return nil, fmt.Errorf("%w: github user %s", err, owner)
			}
			return nil, err
		}
		for _, r := range repos {
			out = append(out, r.identity())
		}
		if len(repos) < perPage {
			break
		}
	}
	return out, nil
}

// GetRepository returns the identity of one repository.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (fingerprint.Identity, error) {
	var data apiRepoResponse
	if err := c.Get(ctx, c.repoURL(owner, repo, ""), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fingerprint.Identity{}, fmt.Errorf("%w: github repo %s/%s", err, owner, repo)
		}
		return fingerprint.Identity{}, err
	}
	return data.identity(), nil
}

// GetUser returns the public profile of login.
func (c *Client) GetUser(ctx context.Context, login string) (*User, error) {
	var u User
	if err := c.Get(ctx, c.baseURL+"/users/"+url.PathEscape(login), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetReadme returns the raw readme. A repository without one yields "".
func (c *Client) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	text, err := c.GetText(ctx, c.repoURL(owner, repo, "/readme"), map[string]string{"Accept": acceptRaw})
	if errors.Is(err, integrations.ErrNotFound) {
		return "", nil
	}
	return text, err
}

// GetLanguages returns bytes of code per language.
func (c *Client) GetLanguages(ctx context.Context, owner, repo string) (map[string]int, error) {
	langs := map[string]int{}
	if err := c.Get(ctx, c.repoURL(owner, repo, "/languages"), &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// GetDirectoryListing returns the names of the root entries. Directories
// carry a trailing "/".
func (c *Client) GetDirectoryListing(ctx context.Context, owner, repo string) ([]string, error) {
	var items []ContentItem
	if err := c.Get(ctx, c.repoURL(owner, repo, "/contents/"), &items); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			// Empty repositories have no contents.
			return []string{}, nil
		}
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type == "dir" {
			out = append(out, item.Name+"/")
		} else {
			out = append(out, item.Name)
		}
	}
	return out, nil
}

// GetFileRaw returns the raw content of path on the default branch.
func (c *Client) GetFileRaw(ctx context.Context, owner, repo, path string) (string, error) {
	return c.GetText(ctx, c.repoURL(owner, repo, "/contents/"+escapePath(path)), map[string]string{"Accept": acceptRaw})
}

func (c *Client) repoURL(owner, repo, suffix string) string {
	return fmt.Sprintf("%s/repos/%s/%s%s", c.baseURL, url.PathEscape(owner), url.PathEscape(repo), suffix)
}

func escapePath(p string) string {
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

// ExtractURL extracts owner and repository from a GitHub URL in any of the
// forms [integrations.NormalizeRepoURL] accepts.
func ExtractURL(raw string) (owner, repo string, ok bool) {
	return integrations.ExtractRepoURL(repoURLPattern, raw)
}
