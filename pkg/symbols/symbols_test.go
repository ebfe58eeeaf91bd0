package symbols

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestPythonExtractor(t *testing.T) {
	src := `
import os, numpy.linalg as la
from flask import Flask, jsonify
from .models import User
from . import helpers

app = Flask(__name__)

class UserService:
    def get(self, uid):
        return db.execute("SELECT * FROM users WHERE id = ?", uid)

@app.route("/users")
def list_users():
    return jsonify([])

async def fetch_remote():
    pass

def helper():
    def inner():
        pass
`
	got := PythonExtractor{}.Extract([]byte(src))

	wantFuncs := []string{"get", "list_users", "fetch_remote", "helper", "inner"}
	if !reflect.DeepEqual(got.Functions, wantFuncs) {
		t.Errorf("Functions = %v, want %v", got.Functions, wantFuncs)
	}
	if !reflect.DeepEqual(got.Classes, []string{"UserService"}) {
		t.Errorf("Classes = %v", got.Classes)
	}
	wantImports := []string{"os", "numpy", "flask", "models"}
	if !reflect.DeepEqual(got.Imports, wantImports) {
		t.Errorf("Imports = %v, want %v", got.Imports, wantImports)
	}
	wantRoutes := []string{"list_users", `@app.route("/users"`}
	if !reflect.DeepEqual(got.Routes, wantRoutes) {
		t.Errorf("Routes = %v, want %v", got.Routes, wantRoutes)
	}
	if !reflect.DeepEqual(got.Signals, []string{SignalSQL}) {
		t.Errorf("Signals = %v", got.Signals)
	}
}

func TestPythonExtractorRepeatedImports(t *testing.T) {
	src := "import os\nimport os\nfrom os import path\nimport sys\n"
	got := PythonExtractor{}.Extract([]byte(src))
	if want := []string{"os", "sys"}; !reflect.DeepEqual(got.Imports, want) {
		t.Errorf("Imports = %v, want %v", got.Imports, want)
	}
}

func TestPythonExtractorSyntaxError(t *testing.T) {
	src := "def broken(:\n    pass\nclass Fine:\n    pass\n"
	got := PythonExtractor{}.Extract([]byte(src))
	if !reflect.DeepEqual(got, Symbols{}) {
		t.Errorf("syntax error should yield empty symbols, got %+v", got)
	}
}

func TestPythonRouteRegexNeedsFlask(t *testing.T) {
	src := "@app.route('/x')\ndef handler():\n    pass\n"
	got := PythonExtractor{}.Extract([]byte(src))
	// The decorator still marks the function, but without a flask import the
	// raw decorator text is not recorded.
	if !reflect.DeepEqual(got.Routes, []string{"handler"}) {
		t.Errorf("Routes = %v", got.Routes)
	}
}

func TestJSExtractor(t *testing.T) {
	src := `
import express from 'express';
import { Pool } from "pg";
const lodash = require('lodash');

function start(port) {}
const handler = (req, res) => {};
onClick = (e) => {};
class UserController {}

app.get('/users', handler);
router.post("/login", handler);
pool.query("select id from users");
`
	got := JSExtractor{}.Extract([]byte(src))

	if want := []string{"express", "pg", "lodash"}; !reflect.DeepEqual(got.Imports, want) {
		t.Errorf("Imports = %v, want %v", got.Imports, want)
	}
	if want := []string{"start", "handler", "onClick"}; !reflect.DeepEqual(got.Functions, want) {
		t.Errorf("Functions = %v, want %v", got.Functions, want)
	}
	if want := []string{"UserController"}; !reflect.DeepEqual(got.Classes, want) {
		t.Errorf("Classes = %v, want %v", got.Classes, want)
	}
	if want := []string{"app.get('/users'", `router.post("/login"`}; !reflect.DeepEqual(got.Routes, want) {
		t.Errorf("Routes = %v, want %v", got.Routes, want)
	}
	if !reflect.DeepEqual(got.Signals, []string{SignalSQL}) {
		t.Errorf("Signals = %v", got.Signals)
	}
}

func TestGoExtractor(t *testing.T) {
	src := `package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Server struct{ db *sql.DB }
type Store interface{ Get() }
type ID string

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.health)
	r.Post("/items", s.create)
	http.HandleFunc("/legacy", nil)
	r.Get("relative", nil)
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.db.Query("SELECT 1")
}

func main() {}
`
	got := GoExtractor{}.Extract([]byte(src))

	if want := []string{"database", "net", "github.com/go-chi/chi"}; !reflect.DeepEqual(got.Imports, want) {
		t.Errorf("Imports = %v, want %v", got.Imports, want)
	}
	if want := []string{"Server.routes", "Server.health", "main"}; !reflect.DeepEqual(got.Functions, want) {
		t.Errorf("Functions = %v, want %v", got.Functions, want)
	}
	if want := []string{"Server", "Store"}; !reflect.DeepEqual(got.Classes, want) {
		t.Errorf("Classes = %v, want %v", got.Classes, want)
	}
	if want := []string{"Get /health", "Post /items", "HandleFunc /legacy"}; !reflect.DeepEqual(got.Routes, want) {
		t.Errorf("Routes = %v, want %v", got.Routes, want)
	}
	if !reflect.DeepEqual(got.Signals, []string{SignalSQL}) {
		t.Errorf("Signals = %v", got.Signals)
	}
}

func TestGoExtractorSyntaxError(t *testing.T) {
	got := GoExtractor{}.Extract([]byte("package main\nfunc {"))
	if !reflect.DeepEqual(got, Symbols{}) {
		t.Errorf("got %+v, want empty", got)
	}
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestSummarizeDedupesAcrossFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.py":              "def handler():\n    pass\n",
		"pkg/b.py":          "def handler():\n    pass\ndef other():\n    pass\n",
		"web/index.js":      "function render() {}\n",
		"web/app.ts":        "function render() {}\n",
		"node_modules/x.js": "function vendored() {}\n",
		".venv/lib/site.py": "def vendored():\n    pass\n",
		"README.md":         "# demo",
	})

	sum := Summarize(root)

	py := sum[LangPython]
	if py.Files != 2 {
		t.Errorf("python files = %d, want 2", py.Files)
	}
	if len(py.Functions) != 2 {
		t.Errorf("python functions = %v, want handler and other once each", py.Functions)
	}
	for i, name := range py.Functions {
		for _, other := range py.Functions[i+1:] {
			if name == other {
				t.Errorf("duplicate function %q", name)
			}
		}
	}

	js := sum[LangJSTS]
	if js.Files != 2 || !reflect.DeepEqual(js.Functions, []string{"render"}) {
		t.Errorf("js_ts = %+v", js)
	}

	if g, ok := sum[LangGo]; !ok || g.Files != 0 {
		t.Errorf("go key must be present with zero files, got %+v (present=%v)", g, ok)
	}
	if g := sum[LangGo]; g.Functions == nil || g.Routes == nil {
		t.Error("empty lists must be non-nil")
	}
}

func TestSummarizeCountsUnparseableFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"bad.py":  "def (:\n",
		"good.py": "class Ok:\n    pass\n",
	})
	py := Summarize(root)[LangPython]
	if py.Files != 2 {
		t.Errorf("Files = %d, want 2", py.Files)
	}
	if !reflect.DeepEqual(py.Classes, []string{"Ok"}) {
		t.Errorf("Classes = %v", py.Classes)
	}
}

func TestSummarizeSkipsLargeFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"big.js": "function huge() {}\n" + string(make([]byte, 64)),
	})
	s := NewSummarizer()
	s.MaxFileSize = 16
	js := s.Summarize(t.Context(), root)[LangJSTS]
	if js.Files != 1 || len(js.Functions) != 0 {
		t.Errorf("large file should be counted but not read: %+v", js)
	}
}

func TestSummarizeMissingRoot(t *testing.T) {
	sum := Summarize(filepath.Join(t.TempDir(), "missing"))
	if !sum.Empty() {
		t.Errorf("missing root should summarize to empty, got %+v", sum)
	}
	if len(sum) != 3 {
		t.Errorf("every language key must be present, got %d", len(sum))
	}
}

func TestEmptySummary(t *testing.T) {
	if !reflect.DeepEqual(EmptySummary(), Summarize(t.TempDir())) {
		t.Error("EmptySummary should equal the summary of an empty tree")
	}
}
