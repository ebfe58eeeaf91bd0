package enrich

import "strings"

// DefaultMaxSkills bounds the aligned skill list of a project.
const DefaultMaxSkills = 6

// Align orders a project's skills for document. Technologies from tech whose
// lowercase form occurs in the lowercase document come first, in tech order
// and original case. The project's skills follow, minus any already listed
// (compared case-insensitively). The result holds at most max entries.
func Align(tech, skills []string, document string, max int) []string {
	doc := strings.ToLower(document)
	seen := make(map[string]bool)
	out := []string{}

	add := func(s string) {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] || len(out) >= max {
			return
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(s))
	}

	for _, t := range tech {
		if t = strings.TrimSpace(t); t != "" && strings.Contains(doc, strings.ToLower(t)) {
			add(t)
		}
	}
	for _, s := range skills {
		add(s)
	}
	return out
}
