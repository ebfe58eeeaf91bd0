package integrations

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a repository or resource doesn't exist on the remote.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned when the remote rejects the credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTooLarge is returned when a download exceeds its size limit.
	ErrTooLarge = errors.New("response too large")
)

// NewHTTPClient creates an HTTP client with a standard timeout for API requests.
// Redirects are followed (archive downloads redirect to a CDN).
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
)

// NormalizeRepoURL converts various repository URL formats to canonical HTTPS form.
// Handles git@, git://, and git+ prefixes, and removes .git suffixes.
// Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	return strings.TrimSuffix(s, ".git")
}

// ExtractRepoURL finds the owner and repository in a URL. The re parameter
// should match URLs and capture owner (group 1) and repo name (group 2).
// Sponsor pages are never treated as repositories.
func ExtractRepoURL(re *regexp.Regexp, raw string) (owner, repo string, ok bool) {
	u := NormalizeRepoURL(raw)
	if u == "" || strings.Contains(u, "/sponsors/") {
		return "", "", false
	}
	m := re.FindStringSubmatch(u)
	if len(m) < 3 {
		return "", "", false
	}
	return m[1], strings.TrimSuffix(m[2], ".git"), true
}
