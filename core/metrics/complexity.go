package metrics

import (
	"go/ast"
	"go/token"
)

// fileComplexity sums cyclomatic complexity over all declared functions
// and methods. A file with no functions has complexity zero.
func fileComplexity(file *ast.File) int {
	total := 0
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			total += funcComplexity(fn)
		}
	}
	return total
}

// funcComplexity counts decision points plus one: each if, for and range
// statement, each case and select clause, and each && or || operator.
func funcComplexity(fn *ast.FuncDecl) int {
	complexity := 1
	ast.Inspect(fn, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.CaseClause, *ast.CommClause:
			complexity++
		case *ast.BinaryExpr:
			if n.Op == token.LAND || n.Op == token.LOR {
				complexity++
			}
		}
		return true
	})
	return complexity
}

// statementCount counts logical lines: every statement node except the
// block braces that merely group others.
func statementCount(file *ast.File) int {
	count := 0
	ast.Inspect(file, func(node ast.Node) bool {
		switch node.(type) {
		case *ast.BlockStmt:
		case ast.Stmt:
			count++
		}
		return true
	})
	return count
}
