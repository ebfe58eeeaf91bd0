// Package symbols extracts lightweight code signals from a source tree:
// function, class and import names, HTTP route declarations and a few
// keyword-based signals.
//
// Extraction is static and deliberately shallow. Python is parsed with
// tree-sitter, Go with go/parser, JavaScript and TypeScript with regular
// expressions. A file that fails to parse contributes nothing but is still
// counted.
package symbols

import (
	"regexp"
)

// Language keys of a [CodeSummary].
const (
	LangPython = "python"
	LangJSTS   = "js_ts"
	LangGo     = "go"
)

// SignalSQL marks source that mentions SQL statements.
const SignalSQL = "uses_sql_queries"

var sqlRE = regexp.MustCompile(`(?i)\b(?:SELECT|INSERT|UPDATE|DELETE)\b`)

// Symbols is the result of extracting one file.
type Symbols struct {
	Functions []string `json:"functions"`
	Classes   []string `json:"classes"`
	Imports   []string `json:"imports"`
	Routes    []string `json:"routes"`
	Signals   []string `json:"signals"`
}

// LanguageSummary aggregates the symbols of every file of one language.
// Lists are unique and keep first-seen order.
type LanguageSummary struct {
	Files     int      `json:"files"`
	Functions []string `json:"functions"`
	Classes   []string `json:"classes"`
	Imports   []string `json:"imports"`
	Routes    []string `json:"routes"`
	Signals   []string `json:"signals"`
}

// CodeSummary maps a language key to its aggregate. Every registered
// language is present, with Files == 0 when no file was seen.
type CodeSummary map[string]LanguageSummary

// Empty reports whether no source file of any language was seen.
func (c CodeSummary) Empty() bool {
	for _, s := range c {
		if s.Files > 0 {
			return false
		}
	}
	return true
}

// Extractor extracts symbols from the source of one file.
type Extractor interface {
	// Language returns the summary key this extractor contributes to.
	Language() string
	// Extensions lists handled file extensions, with the leading dot.
	Extensions() []string
	// Extract returns the symbols of src. It never panics; unparseable
	// source yields empty Symbols.
	Extract(src []byte) Symbols
}

// DefaultExtractors returns the Python, JS/TS and Go extractors.
func DefaultExtractors() []Extractor {
	return []Extractor{PythonExtractor{}, JSExtractor{}, GoExtractor{}}
}

// sqlSignals returns the keyword signals of src.
func sqlSignals(src []byte) []string {
	if sqlRE.Match(src) {
		return []string{SignalSQL}
	}
	return nil
}

// orderedSet accumulates unique strings in first-seen order.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func (s *orderedSet) add(values ...string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := s.seen[v]; ok {
			continue
		}
		s.seen[v] = struct{}{}
		s.items = append(s.items, v)
	}
}

// list returns the items, never nil.
func (s *orderedSet) list() []string {
	if s.items == nil {
		return []string{}
	}
	return s.items
}

// dedupe returns values unique in first-seen order.
func dedupe(values []string) []string {
	var s orderedSet
	s.add(values...)
	return s.items
}
