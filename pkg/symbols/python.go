package symbols

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

var flaskRouteRE = regexp.MustCompile(`@(?:app|bp)\.route\(['"][^'"]+['"]`)

// PythonExtractor parses Python with tree-sitter.
type PythonExtractor struct{}

func (PythonExtractor) Language() string     { return LangPython }
func (PythonExtractor) Extensions() []string { return []string{".py"} }

func (PythonExtractor) Extract(src []byte) (out Symbols) {
	defer func() {
		if recover() != nil {
			out = Symbols{}
		}
	}()
	if len(src) == 0 {
		return Symbols{}
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil || tree == nil {
		return Symbols{}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return Symbols{}
	}

	w := pyWalker{src: src}
	w.walk(root)

	if strings.Contains(string(src), "from flask") || strings.Contains(string(src), "import flask") {
		for _, m := range flaskRouteRE.FindAll(src, -1) {
			w.routes = append(w.routes, string(m))
		}
	}

	return Symbols{
		Functions: dedupe(w.functions),
		Classes:   dedupe(w.classes),
		Imports:   dedupe(w.imports),
		Routes:    dedupe(w.routes),
		Signals:   sqlSignals(src),
	}
}

type pyWalker struct {
	src       []byte
	functions []string
	classes   []string
	imports   []string
	routes    []string
}

func (w *pyWalker) walk(n *sitter.Node) {
	switch n.Type() {
	case "function_definition":
		if name := n.ChildByFieldName("name"); name != nil {
			w.functions = append(w.functions, name.Content(w.src))
		}
	case "class_definition":
		if name := n.ChildByFieldName("name"); name != nil {
			w.classes = append(w.classes, name.Content(w.src))
		}
	case "decorated_definition":
		w.decorated(n)
	case "import_statement":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c.Type() == "aliased_import" {
				c = c.ChildByFieldName("name")
			}
			if c != nil && c.Type() == "dotted_name" {
				w.imports = append(w.imports, importRoot(c.Content(w.src)))
			}
		}
	case "import_from_statement":
		if mod := n.ChildByFieldName("module_name"); mod != nil {
			w.imports = append(w.imports, w.fromModule(mod)...)
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i))
	}
}

// decorated records a route when a decorator registers the function with a
// Flask app or blueprint.
func (w *pyWalker) decorated(n *sitter.Node) {
	def := n.ChildByFieldName("definition")
	if def == nil || def.Type() != "function_definition" {
		return
	}
	name := def.ChildByFieldName("name")
	if name == nil {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "decorator" {
			continue
		}
		text := c.Content(w.src)
		if strings.Contains(text, "app.route(") || strings.Contains(text, "bp.route(") {
			w.routes = append(w.routes, name.Content(w.src))
			return
		}
	}
}

// fromModule returns the import root of a from-import module. Relative
// imports without a module name ("from . import x") yield nothing.
func (w *pyWalker) fromModule(mod *sitter.Node) []string {
	switch mod.Type() {
	case "dotted_name":
		return []string{importRoot(mod.Content(w.src))}
	case "relative_import":
		for i := 0; i < int(mod.NamedChildCount()); i++ {
			if c := mod.NamedChild(i); c.Type() == "dotted_name" {
				return []string{importRoot(c.Content(w.src))}
			}
		}
	}
	return nil
}

func importRoot(path string) string {
	root, _, _ := strings.Cut(strings.TrimSpace(path), ".")
	return root
}
