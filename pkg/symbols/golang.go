package symbols

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
)

// goRouteMethods are call selectors that register HTTP handlers in net/http,
// chi, gin, echo and gorilla/mux.
var goRouteMethods = map[string]bool{
	"HandleFunc": true, "Handle": true,
	"GET": true, "POST": true, "PUT": true, "DELETE": true, "PATCH": true,
	"Get": true, "Post": true, "Put": true, "Delete": true, "Patch": true,
}

// GoExtractor parses Go with go/parser.
type GoExtractor struct{}

func (GoExtractor) Language() string     { return LangGo }
func (GoExtractor) Extensions() []string { return []string{".go"} }

func (GoExtractor) Extract(src []byte) Symbols {
	if len(src) == 0 {
		return Symbols{}
	}
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "", src, parser.SkipObjectResolution)
	if err != nil {
		return Symbols{}
	}

	var out Symbols
	for _, imp := range f.Imports {
		if p, err := strconv.Unquote(imp.Path.Value); err == nil {
			out.Imports = append(out.Imports, goImportRoot(p))
		}
	}

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			out.Functions = append(out.Functions, goFuncName(d))
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts := spec.(*ast.TypeSpec)
				switch ts.Type.(type) {
				case *ast.StructType, *ast.InterfaceType:
					out.Classes = append(out.Classes, ts.Name.Name)
				}
			}
		}
	}

	ast.Inspect(f, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || !goRouteMethods[sel.Sel.Name] {
			return true
		}
		lit, ok := call.Args[0].(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			return true
		}
		if path, err := strconv.Unquote(lit.Value); err == nil && strings.HasPrefix(path, "/") {
			out.Routes = append(out.Routes, fmt.Sprintf("%s %s", sel.Sel.Name, path))
		}
		return true
	})

	out.Signals = sqlSignals(src)
	out.Functions = dedupe(out.Functions)
	out.Classes = dedupe(out.Classes)
	out.Imports = dedupe(out.Imports)
	out.Routes = dedupe(out.Routes)
	return out
}

func goFuncName(d *ast.FuncDecl) string {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return d.Name.Name
	}
	t := d.Recv.List[0].Type
	if star, ok := t.(*ast.StarExpr); ok {
		t = star.X
	}
	switch r := t.(type) {
	case *ast.Ident:
		return r.Name + "." + d.Name.Name
	case *ast.IndexExpr:
		if id, ok := r.X.(*ast.Ident); ok {
			return id.Name + "." + d.Name.Name
		}
	case *ast.IndexListExpr:
		if id, ok := r.X.(*ast.Ident); ok {
			return id.Name + "." + d.Name.Name
		}
	}
	return d.Name.Name
}

// goImportRoot trims module-style paths to host/owner/repo and standard
// library paths to their first element.
func goImportRoot(path string) string {
	parts := strings.Split(path, "/")
	if !strings.Contains(parts[0], ".") {
		return parts[0]
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, "/")
}
