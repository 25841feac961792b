package rewrite

import (
	"testing"

	"github.com/sambeau/chervil/pkg/chervil/ast"
	"github.com/sambeau/chervil/pkg/chervil/lexer"
	"github.com/sambeau/chervil/pkg/chervil/parser"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	return program
}

func TestRewriteWithoutRulesIsIdentity(t *testing.T) {
	input := `let a = x - 1
if a < 10 {
	print(a)
}`
	program := parse(t, input)
	before := program.String()

	rw := NewRewriter()
	rw.Rewrite(program)

	if program.String() != before {
		t.Errorf("tree changed without rules.\nbefore=%q\nafter=%q", before, program.String())
	}
}

func TestHoistedStatementsPrecedeContainingStatement(t *testing.T) {
	program := parse(t, "let y = a - b")

	rw := NewRewriter()
	rw.Rules["-"] = func(rw *Rewriter, node *ast.InfixExpression) ast.Expression {
		rw.AppendTrace("saw " + ast.Dump(node))
		return node
	}
	rw.Rewrite(program)

	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %s", len(program.Statements), program.String())
	}
	if _, ok := program.Statements[0].(*ast.ExpressionStatement); !ok {
		t.Errorf("hoisted statement should come first. got=%T", program.Statements[0])
	}
	if _, ok := program.Statements[1].(*ast.LetStatement); !ok {
		t.Errorf("original statement should come second. got=%T", program.Statements[1])
	}
}

func TestHoistingRespectsBlockBoundaries(t *testing.T) {
	input := `let y = a - b
if y {
	let z = c - d
}`
	program := parse(t, input)

	rw := NewRewriter()
	rw.Rules["-"] = func(rw *Rewriter, node *ast.InfixExpression) ast.Expression {
		rw.AppendTrace("saw " + ast.Dump(node))
		return node
	}
	rw.Rewrite(program)

	if len(program.Statements) != 3 {
		t.Fatalf("expected 3 toplevel statements, got %d", len(program.Statements))
	}

	ifStmt, ok := program.Statements[2].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected if statement last, got %T", program.Statements[2])
	}
	body := ifStmt.Consequence.Statements
	if len(body) != 2 {
		t.Fatalf("expected 2 statements inside the block, got %d", len(body))
	}
	if _, ok := body[0].(*ast.ExpressionStatement); !ok {
		t.Errorf("inner hoist should land inside the block, got %T", body[0])
	}
	if _, ok := body[1].(*ast.LetStatement); !ok {
		t.Errorf("inner let should follow its hoist, got %T", body[1])
	}
}

func TestNestedRewritesHoistInnermostFirst(t *testing.T) {
	program := parse(t, "let y = (a - b) - c")

	var order []string
	rw := NewRewriter()
	rw.Rules["-"] = func(rw *Rewriter, node *ast.InfixExpression) ast.Expression {
		node.Left = rw.RewriteExpr(node.Left)
		node.Right = rw.RewriteExpr(node.Right)
		rw.AppendTrace("saw " + ast.Dump(node))
		order = append(order, ast.Dump(node))
		return node
	}
	rw.Rewrite(program)

	if len(order) != 2 {
		t.Fatalf("expected 2 rule applications, got %d", len(order))
	}
	if order[0] != "Infix(Name(a) - Name(b))" {
		t.Errorf("inner rewrite should run first. got=%q", order[0])
	}
	if len(program.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d: %s", len(program.Statements), program.String())
	}
}

func TestSynthesizedNodesInheritDonorPosition(t *testing.T) {
	program := parse(t, "let pad = 0\nlet y = a - b")

	rw := NewRewriter()
	rw.Rules["-"] = func(rw *Rewriter, node *ast.InfixExpression) ast.Expression {
		rw.AppendTrace("here")
		return node
	}
	rw.Rewrite(program)

	hoisted := program.Statements[1]
	if hoisted.Pos().Line != 2 {
		t.Errorf("hoisted statement should carry line 2, got %d", hoisted.Pos().Line)
	}
}

func TestExpressionStatementTakesExpressionPosition(t *testing.T) {
	pos := lexer.Token{Type: lexer.IDENT, Literal: "x", Line: 4, Column: 9}
	stmt := exprStmt(ident("x", pos))
	if stmt.Token.Line != 4 || stmt.Token.Column != 9 {
		t.Errorf("statement position = %d:%d, want 4:9", stmt.Token.Line, stmt.Token.Column)
	}
}

func TestRuleReplacementSubstitutesExpression(t *testing.T) {
	program := parse(t, "return a - b")

	rw := NewRewriter()
	rw.Rules["-"] = func(rw *Rewriter, node *ast.InfixExpression) ast.Expression {
		stmt := assignStmt("t", node, rw.Donor())
		rw.Append(stmt)
		return ident("t", rw.Donor())
	}
	rw.Rewrite(program)

	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	ret, ok := program.Statements[1].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("expected return last, got %T", program.Statements[1])
	}
	if ret.ReturnValue.String() != "t" {
		t.Errorf("return value should be the temporary, got %q", ret.ReturnValue.String())
	}
}
