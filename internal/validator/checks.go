package validator

import (
	"go/ast"
	"go/token"

	"github.com/koda-agent/koda/pkg/ktypes"
)

// checkSyntax reports whether source parsed at all. Its result is produced
// by the caller (Validate), which already holds the parse error; this file
// only carries the checks that require a successfully parsed *ast.File.

// checkStructure requires at least one top-level function or type
// declaration, the Go-native reading of "at least one function or class
// definition present" (spec §4.4).
func checkStructure(file *ast.File) ktypes.Check {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			return ktypes.Check{Name: "structure", Outcome: ktypes.OutcomeInfo, Message: "OK"}
		case *ast.GenDecl:
			if d.Tok == token.TYPE {
				return ktypes.Check{Name: "structure", Outcome: ktypes.OutcomeInfo, Message: "OK"}
			}
		}
	}
	return ktypes.Check{Name: "structure", Outcome: ktypes.OutcomeWarning, Message: "no functions or type declarations"}
}

// checkImports requires at least one import declaration.
func checkImports(file *ast.File) ktypes.Check {
	n := len(file.Imports)
	if n == 0 {
		return ktypes.Check{Name: "imports", Outcome: ktypes.OutcomeWarning, Message: "no imports"}
	}
	return ktypes.Check{Name: "imports", Outcome: ktypes.OutcomeInfo, Message: "OK"}
}

// checkErrorHandling is the Go-native reading of "at least one try/catch
// construct present": Go has no exceptions, so this passes when the source
// shows the idiomatic Go equivalent -- a function with a trailing error
// return, or an `if err != nil`-shaped comparison (decided in SPEC_FULL.md
// §4.4).
func checkErrorHandling(file *ast.File) ktypes.Check {
	if hasErrorReturningFunc(file) || hasErrNilComparison(file) {
		return ktypes.Check{Name: "error_handling", Outcome: ktypes.OutcomeInfo, Message: "OK"}
	}
	return ktypes.Check{Name: "error_handling", Outcome: ktypes.OutcomeWarning, Message: "no error return or err != nil check"}
}

func hasErrorReturningFunc(file *ast.File) bool {
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
	return false
}

func hasErrNilComparison(file *ast.File) bool {
	found := false
	ast.Inspect(file, func(n ast.Node) bool {
		if found {
			return false
		}
		be, ok := n.(*ast.BinaryExpr)
		if !ok || (be.Op != token.NEQ && be.Op != token.EQL) {
			return true
		}
		if isErrIdent(be.X) && isNilIdent(be.Y) || isErrIdent(be.Y) && isNilIdent(be.X) {
			found = true
			return false
		}
		return true
	})
	return found
}

func isErrIdent(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == "err"
}

func isNilIdent(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == "nil"
}

// checkDocumentation requires at least one doc comment immediately preceding
// a top-level function or type/const/var declaration -- the Go-native
// reading of "at least one docstring-like block present".
func checkDocumentation(file *ast.File) ktypes.Check {
	for _, decl := range file.Decls {
		var doc *ast.CommentGroup
		switch d := decl.(type) {
		case *ast.FuncDecl:
			doc = d.Doc
		case *ast.GenDecl:
			doc = d.Doc
		}
		if doc != nil && len(doc.List) > 0 {
			return ktypes.Check{Name: "documentation", Outcome: ktypes.OutcomeInfo, Message: "OK"}
		}
	}
	return ktypes.Check{Name: "documentation", Outcome: ktypes.OutcomeWarning, Message: "no doc comments"}
}
