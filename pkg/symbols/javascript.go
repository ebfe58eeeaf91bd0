package symbols

import (
	"regexp"
)

var (
	jsImportFromRE = regexp.MustCompile(`from\s+['"]([^'"]+)['"]`)
	jsRequireRE    = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	jsFunctionRE   = regexp.MustCompile(`function\s+([A-Za-z0-9_]+)\s*\(`)
	jsConstFnRE    = regexp.MustCompile(`const\s+([A-Za-z0-9_]+)\s*=\s*\(`)
	jsArrowRE      = regexp.MustCompile(`([A-Za-z0-9_]+)\s*=\s*\([\w\s,]*\)\s*=>`)
	jsClassRE      = regexp.MustCompile(`class\s+([A-Za-z0-9_]+)`)
	jsRouteRE      = regexp.MustCompile(`\b(?:app|router)\.(?:get|post|put|delete|patch)\s*\(\s*['"][^'"]+['"]`)
)

// JSExtractor extracts JavaScript and TypeScript symbols with regular
// expressions. It understands ESM and CommonJS imports, function
// declarations, arrow functions bound to names, classes and Express routes.
type JSExtractor struct{}

func (JSExtractor) Language() string { return LangJSTS }

func (JSExtractor) Extensions() []string {
	return []string{".js", ".ts", ".jsx", ".tsx", ".mjs", ".cjs"}
}

func (JSExtractor) Extract(src []byte) Symbols {
	if len(src) == 0 {
		return Symbols{}
	}
	var out Symbols

	out.Imports = append(out.Imports, submatches(jsImportFromRE, src)...)
	out.Imports = append(out.Imports, submatches(jsRequireRE, src)...)

	out.Functions = append(out.Functions, submatches(jsFunctionRE, src)...)
	out.Functions = append(out.Functions, submatches(jsConstFnRE, src)...)
	out.Functions = append(out.Functions, submatches(jsArrowRE, src)...)

	out.Classes = submatches(jsClassRE, src)

	for _, m := range jsRouteRE.FindAll(src, -1) {
		out.Routes = append(out.Routes, string(m))
	}

	out.Signals = sqlSignals(src)

	out.Functions = dedupe(out.Functions)
	out.Classes = dedupe(out.Classes)
	out.Imports = dedupe(out.Imports)
	out.Routes = dedupe(out.Routes)
	return out
}

func submatches(re *regexp.Regexp, src []byte) []string {
	var out []string
	for _, m := range re.FindAllSubmatch(src, -1) {
		out = append(out, string(m[1]))
	}
	return out
}
