package main

import (
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Lists every Cypher statement passed to a Read or Write call under
// internal/ and fails when a mutating statement is sent through Read, which
// routes it to a read replica in a cluster.

type queryCall struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Method   string `json:"method"`
	Query    string `json:"query"`
	Mutating bool   `json:"mutating"`
}

type auditReport struct {
	ReadCalls  int         `json:"read_calls"`
	WriteCalls int         `json:"write_calls"`
	Unresolved int         `json:"unresolved_calls"`
	Violations []queryCall `json:"violations"`
	Calls      []queryCall `json:"calls"`
}

var mutatingClause = regexp.MustCompile(`(?i)\b(MERGE|CREATE|SET|DELETE|DETACH|REMOVE)\b`)

func main() {
	root := "."
	if len(os.Args) > 1 {
		root = os.Args[1]
	}

	fset := token.NewFileSet()
	filesByDir := map[string][]*ast.File{}
	err := filepath.WalkDir(filepath.Join(root, "internal"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		f, err := parser.ParseFile(fset, path, nil, 0)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		dir := filepath.Dir(path)
		filesByDir[dir] = append(filesByDir[dir], f)
		return nil
	})
	if err != nil {
		exitf("walk: %v", err)
	}

	var report auditReport
	for _, dir := range sortedKeys(filesByDir) {
		files := filesByDir[dir]
		consts := map[string]string{}
		for _, f := range files {
			collectStringConsts(f, consts)
		}
		for _, f := range files {
			collectCalls(fset, root, f, consts, &report)
		}
	}
	sort.Slice(report.Calls, func(i, j int) bool {
		if report.Calls[i].File != report.Calls[j].File {
			return report.Calls[i].File < report.Calls[j].File
		}
		return report.Calls[i].Line < report.Calls[j].Line
	})

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		exitf("marshal report: %v", err)
	}
	fmt.Println(string(out))
	if len(report.Violations) > 0 {
		os.Exit(1)
	}
}

func collectStringConsts(file *ast.File, out map[string]string) {
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.CONST {
			continue
		}
		for _, spec := range gd.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for i, name := range vs.Names {
				if i >= len(vs.Values) {
					continue
				}
				if s, ok := stringLit(vs.Values[i]); ok {
					out[name.Name] = s
				}
			}
		}
	}
}

func collectCalls(fset *token.FileSet, root string, file *ast.File, consts map[string]string, report *auditReport) {
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || len(call.Args) < 2 {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || (sel.Sel.Name != "Read" && sel.Sel.Name != "Write") {
			return true
		}
		query, ok := resolveQuery(call.Args[1], consts)
		if !ok {
			report.Unresolved++
			return true
		}
		pos := fset.Position(call.Pos())
		rel, err := filepath.Rel(root, pos.Filename)
		if err != nil {
			rel = pos.Filename
		}
		qc := queryCall{
			File:     rel,
			Line:     pos.Line,
			Method:   sel.Sel.Name,
			Query:    firstLine(query),
			Mutating: mutatingClause.MatchString(query),
		}
		if qc.Method == "Read" {
			report.ReadCalls++
			if qc.Mutating {
				report.Violations = append(report.Violations, qc)
			}
		} else {
			report.WriteCalls++
		}
		report.Calls = append(report.Calls, qc)
		return true
	})
}

func resolveQuery(expr ast.Expr, consts map[string]string) (string, bool) {
	switch e := expr.(type) {
	case *ast.Ident:
		s, ok := consts[e.Name]
		return s, ok
	case *ast.BasicLit:
		return stringLit(e)
	}
	return "", false
}

func stringLit(expr ast.Expr) (string, bool) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return s, true
}

func firstLine(q string) string {
	for _, line := range strings.Split(q, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
