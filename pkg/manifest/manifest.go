// Package manifest extracts dependency names from package-manager manifest
// files.
//
// A [Registry] maps manifest filenames to [Parser] variants. Parsers are pure
// functions of the file text: they never panic and return an empty list when
// the text cannot be understood. Discovery is best effort; a repository's
// dependency list is the ordered-unique merge of every manifest found in its
// root.
//
// # Usage
//
//	reg := manifest.Default()
//	if reg.Lookup("requirements.txt") != nil {
//	    names := reg.Extract("requirements.txt", text)
//	}
package manifest

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/matzehuels/repolens/pkg/errors"
)

// Parser extracts dependency names from manifest text.
type Parser interface {
	// Type names the parser variant (e.g. "json", "requirements").
	Type() string
	// Parse returns dependency names in file order. Unparseable text yields
	// an empty list.
	Parse(text string) []string
}

// strictParser is implemented by parsers over structured formats that can
// tell malformed input apart from a manifest with no dependencies.
type strictParser interface {
	parseStrict(text string) ([]string, error)
}

// Entry binds a filename (or a glob such as "*.gemspec") to a parser.
type Entry struct {
	Filename  string
	Ecosystem string
	Parser    Parser
}

// Registry maps manifest filenames to parsers.
type Registry struct {
	exact    map[string]Entry
	patterns []Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{exact: make(map[string]Entry)}
}

// Register binds filename to parser. Filenames containing '*' are matched
// with path.Match against base names. Registering a name twice replaces the
// earlier entry.
func (r *Registry) Register(filename, ecosystem string, p Parser) {
	e := Entry{Filename: filename, Ecosystem: ecosystem, Parser: p}
	if strings.Contains(filename, "*") {
		for i, existing := range r.patterns {
			if existing.Filename == filename {
				r.patterns[i] = e
				return
			}
		}
		r.patterns = append(r.patterns, e)
		return
	}
	r.exact[filename] = e
}

// Lookup returns the entry for the base name of filename, or nil.
func (r *Registry) Lookup(filename string) *Entry {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if e, ok := r.exact[base]; ok {
		return &e
	}
	for _, e := range r.patterns {
		if ok, _ := path.Match(e.Filename, base); ok {
			return &e
		}
	}
	return nil
}

// Extract parses text with the parser registered for filename and returns
// ordered-unique names. Unknown filenames yield nil.
func (r *Registry) Extract(filename, text string) []string {
	names, _ := r.ExtractChecked(filename, text)
	return names
}

// ExtractChecked is Extract that also reports malformed structured manifests
// as MALFORMED_MANIFEST errors. The returned names are always usable.
func (r *Registry) ExtractChecked(filename, text string) (names []string, err error) {
	e := r.Lookup(filename)
	if e == nil {
		return nil, nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			names = nil
			err = errors.New(errors.ErrCodeMalformedManifest, "%s: parser panic: %v", filename, rec)
		}
	}()

	if sp, ok := e.Parser.(strictParser); ok {
		out, perr := sp.parseStrict(text)
		if perr != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedManifest, perr, "%s", filename)
		}
		return Merge(out), nil
	}
	return Merge(e.Parser.Parse(text)), nil
}

// Filenames returns every registered filename and pattern, sorted.
func (r *Registry) Filenames() []string {
	out := make([]string, 0, len(r.exact)+len(r.patterns))
	for name := range r.exact {
		out = append(out, name)
	}
	for _, e := range r.patterns {
		out = append(out, e.Filename)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered entries.
func (r *Registry) Len() int { return len(r.exact) + len(r.patterns) }

// String lists the registry contents for debugging.
func (r *Registry) String() string {
	var b strings.Builder
	for _, name := range r.Filenames() {
		e := r.Lookup(name)
		fmt.Fprintf(&b, "%s\t%s\t%s\n", name, e.Ecosystem, e.Parser.Type())
	}
	return b.String()
}

// Merge concatenates lists keeping the first occurrence of each trimmed,
// non-empty name.
func Merge(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, name := range list {
			name = strings.TrimSpace(name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
