// Package rewrite implements the Chervil AST rewrite engine.
//
// The engine re-parses a function definition, lowers selected
// expression forms into explicit statement sequences (materialized
// temporaries, diagnostic traces, in-place combines), and evaluates
// the rebuilt definition into a fresh callable. The structural
// rewriter is generic: rules attached to infix operators can hoist
// newly synthesized statements into the nearest enclosing statement
// list while the expression they replace is arbitrarily deeply nested.
package rewrite

import (
	"github.com/sambeau/chervil/pkg/chervil/ast"
	"github.com/sambeau/chervil/pkg/chervil/lexer"
)

// InfixRule rewrites one infix expression, returning its replacement.
// A rule may call RewriteExpr on the operands to recurse and Append /
// AppendTrace to hoist statements.
type InfixRule func(rw *Rewriter, node *ast.InfixExpression) ast.Expression

// Rewriter walks a tree depth-first, applying rules to infix
// expressions and splicing any statements synthesized along the way
// into the statement list being rebuilt.
//
// Two transient stacks drive the traversal. appendDest holds one
// output list per statement-list boundary currently being rebuilt;
// Append always targets the top, so statements hoisted out of a nested
// expression land immediately before the statement that contains it.
// nodePath holds the ancestors of the node being visited and donates
// source positions to synthesized nodes.
//
// A Rewriter is single-use per pass and must not be shared across
// goroutines.
type Rewriter struct {
	Rules map[string]InfixRule

	nodePath   []ast.Node
	appendDest []*[]ast.Statement
}

// NewRewriter creates a rewriter with no rules installed. Without
// rules the rewrite is the identity.
func NewRewriter() *Rewriter {
	return &Rewriter{Rules: make(map[string]InfixRule)}
}

// Rewrite rewrites a whole tree in place and returns it.
func (rw *Rewriter) Rewrite(node ast.Node) ast.Node {
	switch node := node.(type) {
	case *ast.Program:
		node.Statements = rw.rewriteStatementList(node.Statements)
		return node
	case ast.Statement:
		return rw.rewriteStatement(node)
	case ast.Expression:
		return rw.RewriteExpr(node)
	}
	return node
}

// Append appends a statement to the statement list currently being
// rebuilt, the nearest enclosing statement-list boundary.
func (rw *Rewriter) Append(stmt ast.Statement) {
	dest := rw.appendDest[len(rw.appendDest)-1]
	*dest = append(*dest, stmt)
}

// AppendTrace synthesizes and appends a print statement with the given
// literal text, positioned at the node currently being rewritten.
func (rw *Rewriter) AppendTrace(text string) {
	pos := rw.Donor()
	rw.Append(exprStmt(callExpr(ident("print", pos), []ast.Expression{stringLit(text, pos)}, pos)))
}

// Donor returns the position of the node currently being visited, used
// to stamp synthesized nodes so generated code inherits the location
// of the code it replaces.
func (rw *Rewriter) Donor() lexer.Token {
	if len(rw.nodePath) == 0 {
		return lexer.Token{Line: 1, Column: 1}
	}
	return rw.nodePath[len(rw.nodePath)-1].Pos()
}

// rewriteStatementList rebuilds one statement list. Each element is
// rewritten with a fresh output list on top of the destination stack,
// so statements hoisted during the element's rewrite are emitted just
// before the element itself. An element rewritten to nil is dropped;
// an element rewritten to an ast.Statements group is spliced.
func (rw *Rewriter) rewriteStatementList(list []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, 0, len(list))
	rw.appendDest = append(rw.appendDest, &out)

	for _, stmt := range list {
		rw.nodePath = append(rw.nodePath, stmt)
		res := rw.rewriteStatement(stmt)
		rw.nodePath = rw.nodePath[:len(rw.nodePath)-1]

		switch res := res.(type) {
		case nil:
		case ast.Statements:
			out = append(out, res...)
		default:
			out = append(out, res)
		}
	}

	rw.appendDest = rw.appendDest[:len(rw.appendDest)-1]
	return out
}

// rewriteStatement rewrites one statement's children in place.
func (rw *Rewriter) rewriteStatement(stmt ast.Statement) ast.Statement {
	switch stmt := stmt.(type) {
	case *ast.LetStatement:
		stmt.Value = rw.RewriteExpr(stmt.Value)
	case *ast.AssignStatement:
		stmt.Target = rw.RewriteExpr(stmt.Target)
		stmt.Value = rw.RewriteExpr(stmt.Value)
	case *ast.AugAssignStatement:
		stmt.Value = rw.RewriteExpr(stmt.Value)
	case *ast.ReturnStatement:
		stmt.ReturnValue = rw.RewriteExpr(stmt.ReturnValue)
	case *ast.ExpressionStatement:
		stmt.Expression = rw.RewriteExpr(stmt.Expression)
	case *ast.BlockStatement:
		stmt.Statements = rw.rewriteStatementList(stmt.Statements)
	case *ast.IfStatement:
		stmt.Condition = rw.RewriteExpr(stmt.Condition)
		rw.rewriteBlock(stmt.Consequence)
		rw.rewriteBlock(stmt.Alternative)
	case *ast.ForStatement:
		stmt.Iterable = rw.RewriteExpr(stmt.Iterable)
		rw.rewriteBlock(stmt.Body)
	case *ast.FunctionStatement:
		for i, d := range stmt.Decorators {
			stmt.Decorators[i] = rw.RewriteExpr(d)
		}
		rw.rewriteBlock(stmt.Body)
	}
	return stmt
}

func (rw *Rewriter) rewriteBlock(block *ast.BlockStatement) {
	if block == nil {
		return
	}
	rw.nodePath = append(rw.nodePath, block)
	block.Statements = rw.rewriteStatementList(block.Statements)
	rw.nodePath = rw.nodePath[:len(rw.nodePath)-1]
}

// RewriteExpr rewrites one expression, consulting the rule table
// first. With no matching rule the expression keeps its shape and only
// its subtrees are rewritten.
func (rw *Rewriter) RewriteExpr(expr ast.Expression) ast.Expression {
	if expr == nil {
		return nil
	}

	rw.nodePath = append(rw.nodePath, expr)
	defer func() { rw.nodePath = rw.nodePath[:len(rw.nodePath)-1] }()

	if infix, ok := expr.(*ast.InfixExpression); ok {
		if rule, ok := rw.Rules[infix.Operator]; ok {
			return rule(rw, infix)
		}
	}

	return rw.descendExpr(expr)
}

// descendExpr is the default identity-with-recursive-descent rewrite.
func (rw *Rewriter) descendExpr(expr ast.Expression) ast.Expression {
	switch expr := expr.(type) {
	case *ast.PrefixExpression:
		expr.Right = rw.RewriteExpr(expr.Right)
	case *ast.InfixExpression:
		expr.Left = rw.RewriteExpr(expr.Left)
		expr.Right = rw.RewriteExpr(expr.Right)
	case *ast.IndexExpression:
		expr.Left = rw.RewriteExpr(expr.Left)
		expr.Index = rw.RewriteExpr(expr.Index)
	case *ast.DotExpression:
		expr.Left = rw.RewriteExpr(expr.Left)
	case *ast.CallExpression:
		expr.Function = rw.RewriteExpr(expr.Function)
		for i, a := range expr.Arguments {
			expr.Arguments[i] = rw.RewriteExpr(a)
		}
	case *ast.ArrayLiteral:
		for i, el := range expr.Elements {
			expr.Elements[i] = rw.RewriteExpr(el)
		}
	case *ast.DictLiteral:
		for i, v := range expr.Vals {
			expr.Vals[i] = rw.RewriteExpr(v)
		}
	case *ast.FunctionLiteral:
		rw.rewriteBlock(expr.Body)
	}
	return expr
}
