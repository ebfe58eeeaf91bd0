package github

import (
	"time"

	"github.com/matzehuels/repolens/pkg/fingerprint"
)

// User represents a GitHub user.
type User struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url"`
	HTMLURL     string `json:"html_url"`
	Bio         string `json:"bio"`
	PublicRepos int    `json:"public_repos"`
}

// ContentItem represents an item in a repository directory listing.
type ContentItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file", "dir", "symlink" or "submodule"
	Size int    `json:"size"`
}

// apiRepoResponse is the GitHub API repository object.
type apiRepoResponse struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	FullName      string     `json:"full_name"`
	Description   string     `json:"description"`
	Private       bool       `json:"private"`
	Fork          bool       `json:"fork"`
	Archived      bool       `json:"archived"`
	DefaultBranch string     `json:"default_branch"`
	Language      string     `json:"language"`
	Stars         int        `json:"stargazers_count"`
	PushedAt      *time.Time `json:"pushed_at"`
	Topics        []string   `json:"topics"`
	Owner         struct {
		Login string `json:"login"`
	} `json:"owner"`
}

func (r apiRepoResponse) identity() fingerprint.Identity {
	id := fingerprint.Identity{
		Owner:         r.Owner.Login,
		Name:          r.Name,
		DefaultBranch: r.DefaultBranch,
		Description:   r.Description,
		Topics:        r.Topics,
		Language:      r.Language,
		Stars:         r.Stars,
		Fork:          r.Fork,
		Archived:      r.Archived,
	}
	if r.PushedAt != nil {
		id.PushedAt = r.PushedAt.UTC().Format(time.RFC3339)
	}
	return id
}
