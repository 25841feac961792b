package ast

import "github.com/sambeau/chervil/pkg/chervil/lexer"

// ShiftLines adds delta to the line of every token embedded in the
// tree rooted at node. Used to realign a definition parsed in
// isolation with its position in the original source.
func ShiftLines(node Node, delta int) {
	if delta == 0 {
		return
	}
	rewriteTokens(node, func(tok lexer.Token) lexer.Token {
		if tok.Line > 0 {
			tok.Line += delta
		}
		return tok
	})
}

// FixPositions fills in missing (zero) token positions from the
// nearest positioned ancestor, so synthesized nodes always carry a
// usable source location.
func FixPositions(node Node) {
	fixPositions(node, lexer.Token{Line: 1, Column: 1})
}

func fixPositions(node Node, donor lexer.Token) {
	if node == nil {
		return
	}
	tok := node.Pos()
	if tok.Line == 0 {
		setToken(node, lexer.Token{Type: tok.Type, Literal: tok.Literal, Line: donor.Line, Column: donor.Column})
	} else {
		donor = tok
	}
	for _, child := range children(node) {
		fixPositions(child, donor)
	}
}

func rewriteTokens(node Node, fn func(lexer.Token) lexer.Token) {
	if node == nil {
		return
	}
	setToken(node, fn(node.Pos()))
	if fs, ok := node.(*FunctionStatement); ok && fs.EndLine > 0 {
		shifted := fn(lexer.Token{Line: fs.EndLine, Column: 1})
		fs.EndLine = shifted.Line
	}
	for _, child := range children(node) {
		rewriteTokens(child, fn)
	}
}

// setToken writes a node's position token in place.
func setToken(node Node, tok lexer.Token) {
	switch node := node.(type) {
	case *LetStatement:
		node.Token = tok
	case *AssignStatement:
		node.Token = tok
	case *AugAssignStatement:
		node.Token = tok
	case *ReturnStatement:
		node.Token = tok
	case *ExpressionStatement:
		node.Token = tok
	case *BlockStatement:
		node.Token = tok
	case *IfStatement:
		node.Token = tok
	case *ForStatement:
		node.Token = tok
	case *FunctionStatement:
		node.Token = tok
	case *Identifier:
		node.Token = tok
	case *IntegerLiteral:
		node.Token = tok
	case *FloatLiteral:
		node.Token = tok
	case *StringLiteral:
		node.Token = tok
	case *BooleanLiteral:
		node.Token = tok
	case *NullLiteral:
		node.Token = tok
	case *ArrayLiteral:
		node.Token = tok
	case *DictLiteral:
		node.Token = tok
	case *PrefixExpression:
		node.Token = tok
	case *InfixExpression:
		node.Token = tok
	case *IndexExpression:
		node.Token = tok
	case *DotExpression:
		node.Token = tok
	case *CallExpression:
		node.Token = tok
	case *FunctionLiteral:
		node.Token = tok
	}
}

// children returns a node's direct child nodes in source order.
func children(node Node) []Node {
	var out []Node
	add := func(n Node) {
		switch n := n.(type) {
		case nil:
		case *Identifier:
			if n != nil {
				out = append(out, n)
			}
		default:
			out = append(out, n)
		}
	}
	switch node := node.(type) {
	case *Program:
		for _, s := range node.Statements {
			add(s)
		}
	case *LetStatement:
		add(node.Name)
		add(node.Value)
	case *AssignStatement:
		add(node.Target)
		add(node.Value)
	case *AugAssignStatement:
		add(node.Target)
		add(node.Value)
	case *ReturnStatement:
		add(node.ReturnValue)
	case *ExpressionStatement:
		add(node.Expression)
	case *BlockStatement:
		for _, s := range node.Statements {
			add(s)
		}
	case *IfStatement:
		add(node.Condition)
		if node.Consequence != nil {
			add(node.Consequence)
		}
		if node.Alternative != nil {
			add(node.Alternative)
		}
	case *ForStatement:
		add(node.Variable)
		add(node.Iterable)
		if node.Body != nil {
			add(node.Body)
		}
	case *FunctionStatement:
		for _, d := range node.Decorators {
			add(d)
		}
		add(node.Name)
		for _, p := range node.Parameters {
			add(p)
		}
		if node.Body != nil {
			add(node.Body)
		}
	case *ArrayLiteral:
		for _, el := range node.Elements {
			add(el)
		}
	case *DictLiteral:
		for _, v := range node.Vals {
			add(v)
		}
	case *PrefixExpression:
		add(node.Right)
	case *InfixExpression:
		add(node.Left)
		add(node.Right)
	case *IndexExpression:
		add(node.Left)
		add(node.Index)
	case *DotExpression:
		add(node.Left)
	case *CallExpression:
		add(node.Function)
		for _, a := range node.Arguments {
			add(a)
		}
	case *FunctionLiteral:
		for _, p := range node.Parameters {
			add(p)
		}
		if node.Body != nil {
			add(node.Body)
		}
	}
	return out
}
