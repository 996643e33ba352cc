package reflector

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const maxFuncBodyStatements = 50

// staticAnalysis mirrors Reflector._static_analysis: a fast, no-model first
// pass over the source's AST.
func staticAnalysis(source string) []string {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "main.go", source, parser.ParseComments)
	if err != nil {
		return []string{fmt.Sprintf("syntax error: %v", err)}
	}

	var issues []string

	if !hasFuncOrTypeDecl(file) {
		issues = append(issues, "code lacks structure: no functions or type declarations defined")
	}

	if !hasErrorHandling(file) {
		issues = append(issues, "missing error handling: consider returning and checking errors")
	}

	if !hasDocComment(file) {
		issues = append(issues, "missing documentation: add doc comments to functions/types")
	}

	issues = append(issues, longFunctionIssues(file)...)

	if hasSuspiciousMagicStrings(file) {
		issues = append(issues, "consider extracting hardcoded strings to named constants")
	}

	return issues
}

func hasFuncOrTypeDecl(file *ast.File) bool {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			return true
		case *ast.GenDecl:
			if d.Tok == token.TYPE {
				return true
			}
		}
	}
	return false
}

func hasErrorHandling(file *ast.File) bool {
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Type.Results == nil || len(fd.Type.Results.List) == 0 {
			continue
		}
		last := fd.Type.Results.List[len(fd.Type.Results.List)-1]
		if ident, ok := last.Type.(*ast.Ident); ok && ident.Name == "error" {
			return true
		}
	}
	found := false
	ast.Inspect(file, func(n ast.Node) bool {
		if found {
			return false
		}
		be, ok := n.(*ast.BinaryExpr)
		if !ok {
			return true
		}
		isErr := func(e ast.Expr) bool { id, ok := e.(*ast.Ident); return ok && id.Name == "err" }
		isNil := func(e ast.Expr) bool { id, ok := e.(*ast.Ident); return ok && id.Name == "nil" }
		if isErr(be.X) && isNil(be.Y) || isErr(be.Y) && isNil(be.X) {
			found = true
			return false
		}
		return true
	})
	return found
}

func hasDocComment(file *ast.File) bool {
	for _, decl := range file.Decls {
		var doc *ast.CommentGroup
		switch d := decl.(type) {
		case *ast.FuncDecl:
			doc = d.Doc
		case *ast.GenDecl:
			doc = d.Doc
		}
		if doc != nil && len(doc.List) > 0 {
			return true
		}
	}
	return false
}

func longFunctionIssues(file *ast.File) []string {
	var issues []string
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		if n := len(fd.Body.List); n > maxFuncBodyStatements {
			issues = append(issues, fmt.Sprintf("function %q is very long (%d statements), consider refactoring", fd.Name.Name, n))
		}
	}
	return issues
}

// hasSuspiciousMagicStrings flags the presence of any string literal longer
// than 10 characters that doesn't look like a URL or file path -- the
// Go-native reading of the original's hardcoded-string heuristic, with
// doublestar strengthening the path-literal exclusion beyond a plain prefix
// check.
func hasSuspiciousMagicStrings(file *ast.File) bool {
	found := false
	ast.Inspect(file, func(n ast.Node) bool {
		if found {
			return false
		}
		lit, ok := n.(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			return true
		}
		value, err := strconv.Unquote(lit.Value)
		if err != nil {
			return true
		}
		if len(value) > 10 && !looksLikePathOrURL(value) {
			found = true
			return false
		}
		return true
	})
	return found
}

func looksLikePathOrURL(s string) bool {
	switch {
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return true
	case strings.HasPrefix(s, "/"), strings.HasPrefix(s, "./"), strings.HasPrefix(s, "../"):
		return true
	}
	if !strings.Contains(s, "/") {
		return false
	}
	ok, err := doublestar.Match("**/*", s)
	return err == nil && ok
}
