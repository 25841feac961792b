package rewrite

import (
	"fmt"

	"github.com/sambeau/chervil/pkg/chervil/ast"
)

// CommutativeRule lowers addition and multiplication into an explicit,
// steppable statement sequence: an optional defensive copy, an initial
// assignment to a fresh temporary, and an in-place combine, each
// preceded by a trace print. The original expression is replaced with
// a reference to the temporary.
//
// The copy decision hinges on whether the operands are lvalues. An
// lvalue operand aliases pre-existing storage, so combining into it in
// place would corrupt caller-visible data; a non-lvalue operand is a
// freshly computed value this pass owns outright and may mutate
// freely. When only the left operand is an lvalue, the rule swaps
// which side seeds the accumulator (the operator commutes) and skips
// the copy entirely.
//
// The rule owns the fresh-name counter, so one rule instance per pass:
// reusing an instance across passes continues the t-numbering, and
// sharing one across concurrent passes races on the counter.
type CommutativeRule struct {
	nonce int
}

// NewCommutativeRule creates a rule with its counter at zero.
func NewCommutativeRule() *CommutativeRule {
	return &CommutativeRule{}
}

// Install binds the rule to the + and * operators.
func (cr *CommutativeRule) Install(rw *Rewriter) {
	rw.Rules["+"] = cr.Lower
	rw.Rules["*"] = cr.Lower
}

// freshVar allocates the next temporary name: t001, t002, ...
func (cr *CommutativeRule) freshVar() string {
	cr.nonce++
	return fmt.Sprintf("t%03d", cr.nonce)
}

// Lower rewrites one commutative infix expression. Operands are
// rewritten recursively before the outer statements are emitted, so
// inner lowerings hoist their statements first and the combine always
// sees already-materialized temporaries.
func (cr *CommutativeRule) Lower(rw *Rewriter, node *ast.InfixExpression) ast.Expression {
	name := cr.freshVar()

	var operand ast.Expression
	if ast.IsLValue(node.Left) {
		if ast.IsLValue(node.Right) {
			// Both sides alias pre-existing storage; seed the
			// temporary with a defensive copy of the left operand
			cr.assignCopy(rw, name, node.Left)
			operand = rw.RewriteExpr(node.Right)
		} else {
			// The right side is a freshly computed value: seed the
			// accumulator from it and fold the lvalue in, skipping
			// the copy. Only legal because the operator commutes.
			cr.assign(rw, name, rw.RewriteExpr(node.Right))
			operand = rw.RewriteExpr(node.Left)
		}
	} else {
		cr.assign(rw, name, rw.RewriteExpr(node.Left))
		operand = rw.RewriteExpr(node.Right)
	}

	rw.AppendTrace(fmt.Sprintf("Add %s to %s", ast.Dump(operand), name))
	rw.Append(augAssignStmt(name, node.Operator, operand, rw.Donor()))

	return ident(name, rw.Donor())
}

// assign emits a traced assignment of value to a fresh target.
func (cr *CommutativeRule) assign(rw *Rewriter, target string, value ast.Expression) {
	rw.AppendTrace(fmt.Sprintf("%s = %s", target, ast.Dump(value)))
	rw.Append(assignStmt(target, value, rw.Donor()))
}

// assignCopy emits a traced defensive copy of operand into a fresh
// target. The trace names the operand being copied; the assignment
// routes through the copy builtin so the target gets its own storage.
// One trace line per synthesized statement, so the copy trace stands
// in for the assignment trace here.
func (cr *CommutativeRule) assignCopy(rw *Rewriter, target string, operand ast.Expression) {
	rw.AppendTrace("Copy " + ast.Dump(operand))
	pos := rw.Donor()
	value := callExpr(ident("copy", pos), []ast.Expression{rw.RewriteExpr(operand)}, pos)
	rw.Append(assignStmt(target, value, pos))
}
