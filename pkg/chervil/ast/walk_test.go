package ast

import (
	"testing"

	"github.com/sambeau/chervil/pkg/chervil/lexer"
)

func TestShiftLines(t *testing.T) {
	fn := &FunctionStatement{
		Token: lexer.Token{Type: lexer.FUNCTION, Literal: "fn", Line: 1, Column: 1},
		Name:  &Identifier{Token: lexer.Token{Type: lexer.IDENT, Literal: "f", Line: 1, Column: 4}, Value: "f"},
		Body: &BlockStatement{
			Token: lexer.Token{Type: lexer.LBRACE, Literal: "{", Line: 1, Column: 9},
			Statements: []Statement{
				&ReturnStatement{
					Token:       lexer.Token{Type: lexer.RETURN, Literal: "return", Line: 2, Column: 2},
					ReturnValue: &Identifier{Token: lexer.Token{Type: lexer.IDENT, Literal: "x", Line: 2, Column: 9}, Value: "x"},
				},
			},
		},
		EndLine: 3,
	}

	ShiftLines(fn, 10)

	if fn.Token.Line != 11 {
		t.Errorf("fn token not shifted. got=%d", fn.Token.Line)
	}
	if fn.EndLine != 13 {
		t.Errorf("EndLine not shifted. got=%d", fn.EndLine)
	}
	ret := fn.Body.Statements[0].(*ReturnStatement)
	if ret.Token.Line != 12 {
		t.Errorf("nested statement not shifted. got=%d", ret.Token.Line)
	}
	if ret.ReturnValue.Pos().Line != 12 {
		t.Errorf("nested expression not shifted. got=%d", ret.ReturnValue.Pos().Line)
	}
	if ret.Token.Column != 2 {
		t.Errorf("column should be untouched. got=%d", ret.Token.Column)
	}
}

func TestShiftLinesSkipsUnpositionedTokens(t *testing.T) {
	id := &Identifier{Token: lexer.Token{Type: lexer.IDENT, Literal: "t001"}, Value: "t001"}

	ShiftLines(id, 5)

	if id.Token.Line != 0 {
		t.Errorf("zero position should stay zero. got=%d", id.Token.Line)
	}
}

func TestFixPositions(t *testing.T) {
	stmt := &ExpressionStatement{
		Token: lexer.Token{Type: lexer.IDENT, Literal: "print", Line: 7, Column: 3},
		Expression: &CallExpression{
			Token:     lexer.Token{Type: lexer.LPAREN, Literal: "("},
			Function:  &Identifier{Token: lexer.Token{Type: lexer.IDENT, Literal: "print"}, Value: "print"},
			Arguments: []Expression{&StringLiteral{Token: lexer.Token{Type: lexer.STRING, Literal: "hi"}, Value: "hi"}},
		},
	}

	FixPositions(stmt)

	call := stmt.Expression.(*CallExpression)
	if call.Token.Line != 7 || call.Token.Column != 3 {
		t.Errorf("call position not filled. got=%+v", call.Token)
	}
	if call.Arguments[0].Pos().Line != 7 {
		t.Errorf("argument position not filled. got=%d", call.Arguments[0].Pos().Line)
	}
}

func TestFixPositionsKeepsExistingPositions(t *testing.T) {
	id := &Identifier{Token: lexer.Token{Type: lexer.IDENT, Literal: "x", Line: 4, Column: 2}, Value: "x"}

	FixPositions(id)

	if id.Token.Line != 4 || id.Token.Column != 2 {
		t.Errorf("existing position changed. got=%+v", id.Token)
	}
}
