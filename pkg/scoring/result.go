package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/repolens/pkg/fingerprint"
	"github.com/matzehuels/repolens/pkg/oracle"
)

// FallbackPrefix starts the reasoning of every fallback result.
const FallbackPrefix = "fallback: "

// ScoredProject is one repository rated against one document.
type ScoredProject struct {
	Name           string   `json:"name"`
	Repo           string   `json:"repo"`
	Skills         []string `json:"skills"`
	RelevanceScore float64  `json:"relevance_score"`
	Reasoning      string   `json:"reasoning"`
	Description    string   `json:"description,omitempty"`
	PushedAt       string   `json:"pushed_at,omitempty"`
}

// IsFallback reports whether p was substituted for a missing oracle answer.
func (p ScoredProject) IsFallback() bool {
	return strings.HasPrefix(p.Reasoning, FallbackPrefix)
}

// Result is the decoded answer for one requested repository: either a
// project or the reason none could be read.
type Result struct {
	project ScoredProject
	reason  string
	ok      bool
}

// Ok wraps a decoded project.
func Ok(p ScoredProject) Result { return Result{project: p, ok: true} }

// Fallback records why no project could be decoded.
func Fallback(reason string) Result { return Result{reason: reason} }

// OK reports whether r holds a decoded project.
func (r Result) OK() bool { return r.ok }

// Reason returns the fallback reason, or "" for decoded results.
func (r Result) Reason() string { return r.reason }

// Project resolves r against the fingerprint it answers. Identity fields
// always come from fp; a fallback becomes a zero-score project.
func (r Result) Project(fp *fingerprint.Fingerprint) ScoredProject {
	p := r.project
	if !r.ok {
		p = ScoredProject{Skills: []string{}, Reasoning: FallbackPrefix + r.reason}
	}
	if p.Name == "" {
		p.Name = fp.Name
	}
	p.Repo = fp.FullName()
	p.Description = fp.Description
	p.PushedAt = fp.PushedAt
	return p
}

// Decode reads an oracle response that should hold a JSON array of n
// objects. A response that is not such an array yields n fallbacks; an
// element that is not an object yields a fallback in its slot. Missing
// fields default to empty values and scores are clamped to [0, 1].
func Decode(raw string, n int) []Result {
	out := make([]Result, n)
	fail := func(reason string) []Result {
		for i := range out {
			out[i] = Fallback(reason)
		}
		return out
	}

	data, err := oracle.ExtractJSON(raw)
	if err != nil {
		return fail("response is not JSON")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fail("response is not a JSON array")
	}
	if len(items) != n {
		return fail(fmt.Sprintf("expected %d results, got %d", n, len(items)))
	}

	for i, item := range items {
		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			out[i] = Fallback(fmt.Sprintf("result %d is not an object", i))
			continue
		}
		out[i] = Ok(ScoredProject{
			Name:           stringField(obj["name"]),
			Skills:         stringList(obj["skills"]),
			RelevanceScore: clamp(number(obj["relevance_score"])),
			Reasoning:      stringField(obj["reasoning"]),
		})
	}
	return out
}

func stringField(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func stringList(v any) []string {
	out := []string{}
	items, _ := v.([]any)
	for _, item := range items {
		if s := stringField(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func clamp(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	return math.Min(f, 1)
}
