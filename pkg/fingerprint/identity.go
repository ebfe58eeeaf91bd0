package fingerprint

import (
	"context"

	rlerrors "github.com/matzehuels/repolens/pkg/errors"
)

// Identity names one repository at one version. PushedAt is the
// last-modified marker and the only cache invalidation signal.
type Identity struct {
	Owner         string   `json:"owner"`
	Name          string   `json:"name"`
	DefaultBranch string   `json:"default_branch,omitempty"`
	PushedAt      string   `json:"pushed_at"`
	Description   string   `json:"description,omitempty"`
	Topics        []string `json:"topics,omitempty"`
	Language      string   `json:"language,omitempty"`
	Stars         int      `json:"stars,omitempty"`
	Fork          bool     `json:"fork,omitempty"`
	Archived      bool     `json:"archived,omitempty"`
}

// FullName returns "owner/name".
func (id Identity) FullName() string { return id.Owner + "/" + id.Name }

// Validate reports an INVALID_REPOSITORY error when owner or name is
// missing or malformed.
func (id Identity) Validate() error {
	return rlerrors.ValidateRepository(id.Owner, id.Name)
}

// Fetcher is the read-only view of a repository host the builder needs.
// Implementations must be safe for concurrent use.
type Fetcher interface {
	// ListUserRepositories returns the public repositories owned by owner.
	ListUserRepositories(ctx context.Context, owner string) ([]Identity, error)

	// GetReadme returns the raw readme text.
	GetReadme(ctx context.Context, owner, repo string) (string, error)

	// GetLanguages returns bytes of code per language.
	GetLanguages(ctx context.Context, owner, repo string) (map[string]int, error)

	// GetDirectoryListing returns the root entries. Directories carry a
	// trailing "/".
	GetDirectoryListing(ctx context.Context, owner, repo string) ([]string, error)

	// GetFileRaw returns the raw content of path.
	GetFileRaw(ctx context.Context, owner, repo, path string) (string, error)

	// DownloadArchive extracts the source archive of ref under dest and
	// returns the extracted top-level directory.
	DownloadArchive(ctx context.Context, owner, repo, ref, dest string) (string, error)
}
