package rewrite

import (
	"github.com/sambeau/chervil/pkg/chervil/ast"
	"github.com/sambeau/chervil/pkg/chervil/lexer"
)

// Synthesized nodes are built directly rather than parsed from source
// snippets, so their positions are exact copies of the donor node's.

func at(pos lexer.Token, typ lexer.TokenType, literal string) lexer.Token {
	return lexer.Token{Type: typ, Literal: literal, Line: pos.Line, Column: pos.Column}
}

func ident(name string, pos lexer.Token) *ast.Identifier {
	return &ast.Identifier{Token: at(pos, lexer.IDENT, name), Value: name}
}

func stringLit(value string, pos lexer.Token) *ast.StringLiteral {
	return &ast.StringLiteral{Token: at(pos, lexer.STRING, value), Value: value}
}

func callExpr(fn ast.Expression, args []ast.Expression, pos lexer.Token) *ast.CallExpression {
	return &ast.CallExpression{Token: at(pos, lexer.LPAREN, "("), Function: fn, Arguments: args}
}

func exprStmt(expr ast.Expression) *ast.ExpressionStatement {
	return &ast.ExpressionStatement{Token: expr.Pos(), Expression: expr}
}

func assignStmt(target string, value ast.Expression, pos lexer.Token) *ast.AssignStatement {
	return &ast.AssignStatement{
		Token:  at(pos, lexer.ASSIGN, "="),
		Target: ident(target, pos),
		Value:  value,
	}
}

func augAssignStmt(target, operator string, value ast.Expression, pos lexer.Token) *ast.AugAssignStatement {
	typ, literal := lexer.PLUS_EQ, "+="
	if operator == "*" {
		typ, literal = lexer.STAR_EQ, "*="
	}
	return &ast.AugAssignStatement{
		Token:    at(pos, typ, literal),
		Target:   ident(target, pos),
		Operator: operator,
		Value:    value,
	}
}
