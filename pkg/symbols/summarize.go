package symbols

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSkipDirs are directory base names never descended into.
var DefaultSkipDirs = []string{
	".git", "node_modules", "dist", "build", ".venv", "venv",
	".mypy_cache", ".pytest_cache", "__pycache__", "vendor", "target",
	".next", ".cache",
}

// DefaultMaxFileSize skips generated or minified files larger than this.
const DefaultMaxFileSize = 1 << 20

// Summarizer walks a tree and aggregates extractor output per language.
type Summarizer struct {
	Extractors  []Extractor
	SkipDirs    []string
	MaxFileSize int64
}

// NewSummarizer returns a Summarizer with the default extractors and limits.
func NewSummarizer() *Summarizer {
	return &Summarizer{
		Extractors:  DefaultExtractors(),
		SkipDirs:    DefaultSkipDirs,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// Summarize summarizes root with the default [Summarizer].
func Summarize(root string) CodeSummary {
	return NewSummarizer().Summarize(context.Background(), root)
}

// Summarize walks root and returns the merged summary. Unreadable files and
// directories are skipped. Cancelling ctx stops the walk and returns what was
// gathered so far.
func (s *Summarizer) Summarize(ctx context.Context, root string) CodeSummary {
	byExt := make(map[string]Extractor)
	for _, e := range s.Extractors {
		for _, ext := range e.Extensions() {
			byExt[ext] = e
		}
	}
	skip := make(map[string]bool, len(s.SkipDirs))
	for _, d := range s.SkipDirs {
		skip[d] = true
	}

	acc := make(map[string]*accumulator, len(s.Extractors))
	for _, e := range s.Extractors {
		acc[e.Language()] = &accumulator{}
	}

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if d.IsDir() {
			if path != root && skip[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		ex, ok := byExt[ext]
		if !ok {
			return nil
		}
		a := acc[ex.Language()]
		a.files++

		if s.MaxFileSize > 0 {
			if info, err := d.Info(); err == nil && info.Size() > s.MaxFileSize {
				return nil
			}
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		a.merge(ex.Extract(src))
		return nil
	})

	out := make(CodeSummary, len(acc))
	for lang, a := range acc {
		out[lang] = a.summary()
	}
	return out
}

// EmptySummary returns a summary with every default language at zero.
func EmptySummary() CodeSummary {
	out := make(CodeSummary)
	for _, e := range DefaultExtractors() {
		out[e.Language()] = (&accumulator{}).summary()
	}
	return out
}

type accumulator struct {
	files int

	functions, classes, imports, routes, signals orderedSet
}

func (a *accumulator) merge(s Symbols) {
	a.functions.add(s.Functions...)
	a.classes.add(s.Classes...)
	a.imports.add(s.Imports...)
	a.routes.add(s.Routes...)
	a.signals.add(s.Signals...)
}

func (a *accumulator) summary() LanguageSummary {
	return LanguageSummary{
		Files:     a.files,
		Functions: a.functions.list(),
		Classes:   a.classes.list(),
		Imports:   a.imports.list(),
		Routes:    a.routes.list(),
		Signals:   a.signals.list(),
	}
}
