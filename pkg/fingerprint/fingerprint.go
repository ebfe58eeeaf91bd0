package fingerprint

import (
	"encoding/json"

	"github.com/matzehuels/repolens/pkg/cache"
	"github.com/matzehuels/repolens/pkg/symbols"
)

// DefaultReadmeLimit bounds the readme excerpt in bytes.
const DefaultReadmeLimit = 3000

// Fingerprint is the immutable summary of a repository at one PushedAt
// marker. Slices are never nil so the JSON form is stable.
type Fingerprint struct {
	Owner         string              `json:"owner"`
	Name          string              `json:"name"`
	DefaultBranch string              `json:"default_branch,omitempty"`
	PushedAt      string              `json:"pushed_at"`
	Description   string              `json:"description"`
	Topics        []string            `json:"topics"`
	Languages     map[string]int      `json:"languages"`
	Dependencies  []string            `json:"dependencies"`
	Markers       []string            `json:"markers"`
	Readme        string              `json:"readme"`
	Code          symbols.CodeSummary `json:"code"`
}

// FullName returns "owner/name".
func (f *Fingerprint) FullName() string { return f.Owner + "/" + f.Name }

// Identity returns the identity the fingerprint was built from.
func (f *Fingerprint) Identity() Identity {
	return Identity{
		Owner:         f.Owner,
		Name:          f.Name,
		DefaultBranch: f.DefaultBranch,
		PushedAt:      f.PushedAt,
		Description:   f.Description,
		Topics:        f.Topics,
	}
}

// Hash returns the SHA-256 digest of the canonical JSON form. Struct fields
// encode in declaration order and map keys sorted, so equal fingerprints
// hash equally.
func (f *Fingerprint) Hash() string {
	data, err := json.Marshal(f)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// HasMarker reports whether m is among the structural markers.
func (f *Fingerprint) HasMarker(m string) bool {
	for _, have := range f.Markers {
		if have == m {
			return true
		}
	}
	return false
}

func (f *Fingerprint) normalize() {
	if f.Topics == nil {
		f.Topics = []string{}
	}
	if f.Languages == nil {
		f.Languages = map[string]int{}
	}
	if f.Dependencies == nil {
		f.Dependencies = []string{}
	}
	if f.Markers == nil {
		f.Markers = []string{}
	}
	if f.Code == nil {
		f.Code = symbols.EmptySummary()
	}
}
