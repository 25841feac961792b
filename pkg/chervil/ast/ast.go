// Package ast defines the syntax tree for the Chervil language.
//
// Every node belongs to one of three classes: the toplevel Program,
// statements, and expressions. Expressions that denote an assignable
// storage location (names, property accesses, index accesses) also
// implement the LValue interface.
package ast

import (
	"bytes"
	"strings"

	"github.com/sambeau/chervil/pkg/chervil/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
	Pos() lexer.Token
}

// Statement represents statement nodes
type Statement interface {
	Node
	statementNode()
}

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
}

// LValue marks expressions that denote a pre-existing assignable
// storage location: names, property accesses, and index accesses.
// Everything else is a freshly computed value.
type LValue interface {
	Expression
	lvalueNode()
}

// IsLValue reports whether an expression denotes assignable storage.
func IsLValue(expr Expression) bool {
	_, ok := expr.(LValue)
	return ok
}

// Statements is a spliceable group of statements. A rewrite that
// returns Statements in place of a single statement has all of them
// spliced into the enclosing statement list.
type Statements []Statement

func (s Statements) statementNode() {}
func (s Statements) TokenLiteral() string {
	if len(s) > 0 {
		return s[0].TokenLiteral()
	}
	return ""
}
func (s Statements) Pos() lexer.Token {
	if len(s) > 0 {
		return s[0].Pos()
	}
	return lexer.Token{}
}
func (s Statements) String() string {
	var out bytes.Buffer
	for _, stmt := range s {
		out.WriteString(stmt.String())
		out.WriteString("\n")
	}
	return out.String()
}

// Program represents the root node of every AST
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Pos() lexer.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return lexer.Token{}
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}

	return out.String()
}

// LetStatement represents let statements like 'let x = 5'
type LetStatement struct {
	Token lexer.Token // the lexer.LET token
	Name  *Identifier
	Value Expression
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LetStatement) Pos() lexer.Token     { return ls.Token }
func (ls *LetStatement) String() string {
	var out bytes.Buffer

	out.WriteString(ls.TokenLiteral() + " ")
	out.WriteString(ls.Name.String())
	out.WriteString(" = ")
	if ls.Value != nil {
		out.WriteString(ls.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

// AssignStatement represents assignment to an lvalue: 'x = 5',
// 'xs[0] = 5', or 'point.x = 5'
type AssignStatement struct {
	Token  lexer.Token // the '=' token
	Target Expression  // an LValue expression
	Value  Expression
}

func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) Pos() lexer.Token     { return as.Token }
func (as *AssignStatement) String() string {
	var out bytes.Buffer

	out.WriteString(as.Target.String())
	out.WriteString(" = ")
	if as.Value != nil {
		out.WriteString(as.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

// AugAssignStatement represents in-place combine statements:
// 'x += e' or 'x *= e'. The Operator is "+" or "*".
type AugAssignStatement struct {
	Token    lexer.Token // the '+=' or '*=' token
	Target   *Identifier
	Operator string
	Value    Expression
}

func (aa *AugAssignStatement) statementNode()       {}
func (aa *AugAssignStatement) TokenLiteral() string { return aa.Token.Literal }
func (aa *AugAssignStatement) Pos() lexer.Token     { return aa.Token }
func (aa *AugAssignStatement) String() string {
	var out bytes.Buffer

	out.WriteString(aa.Target.String())
	out.WriteString(" " + aa.Operator + "= ")
	if aa.Value != nil {
		out.WriteString(aa.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

// ReturnStatement represents return statements like 'return 5'
type ReturnStatement struct {
	Token       lexer.Token // the lexer.RETURN token
	ReturnValue Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Pos() lexer.Token     { return rs.Token }
func (rs *ReturnStatement) String() string {
	var out bytes.Buffer

	out.WriteString(rs.TokenLiteral())
	if rs.ReturnValue != nil {
		out.WriteString(" ")
		out.WriteString(rs.ReturnValue.String())
	}
	out.WriteString(";")
	return out.String()
}

// ExpressionStatement represents a statement consisting of one expression
type ExpressionStatement struct {
	Token      lexer.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Pos() lexer.Token     { return es.Token }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ""
}

// BlockStatement represents a braced statement list
type BlockStatement struct {
	Token      lexer.Token // the '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) Pos() lexer.Token     { return bs.Token }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer

	out.WriteString("{\n")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	out.WriteString("}")
	return out.String()
}

// IfStatement represents 'if cond { } else { }'
type IfStatement struct {
	Token       lexer.Token // the lexer.IF token
	Condition   Expression
	Consequence *BlockStatement
	Alternative *BlockStatement // nil when there is no else branch
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Pos() lexer.Token     { return is.Token }
func (is *IfStatement) String() string {
	var out bytes.Buffer

	out.WriteString("if ")
	out.WriteString(is.Condition.String())
	out.WriteString(" ")
	out.WriteString(is.Consequence.String())
	if is.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(is.Alternative.String())
	}
	return out.String()
}

// ForStatement represents 'for x in expr { }'
type ForStatement struct {
	Token    lexer.Token // the lexer.FOR token
	Variable *Identifier
	Iterable Expression
	Body     *BlockStatement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) Pos() lexer.Token     { return fs.Token }
func (fs *ForStatement) String() string {
	var out bytes.Buffer

	out.WriteString("for ")
	out.WriteString(fs.Variable.String())
	out.WriteString(" in ")
	out.WriteString(fs.Iterable.String())
	out.WriteString(" ")
	out.WriteString(fs.Body.String())
	return out.String()
}

// FunctionStatement represents a named function definition, optionally
// preceded by decorator lines:
//
//	@optimize
//	fn double(x) { return x + x }
//
// Decorators are applied bottom-up when the definition is evaluated.
type FunctionStatement struct {
	Token      lexer.Token // the lexer.FUNCTION token
	Name       *Identifier
	Decorators []Expression // outermost first, in source order
	Parameters []*Identifier
	Body       *BlockStatement
	EndLine    int // line of the closing '}', for source extraction
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *FunctionStatement) Pos() lexer.Token     { return fs.Token }

// StartLine is the 1-based line the definition starts on, counting any
// decorator lines as part of the definition.
func (fs *FunctionStatement) StartLine() int {
	if len(fs.Decorators) > 0 {
		return fs.Decorators[0].Pos().Line
	}
	return fs.Token.Line
}

func (fs *FunctionStatement) String() string {
	var out bytes.Buffer

	for _, d := range fs.Decorators {
		out.WriteString("@")
		out.WriteString(d.String())
		out.WriteString("\n")
	}
	params := []string{}
	for _, p := range fs.Parameters {
		params = append(params, p.String())
	}
	out.WriteString("fn ")
	out.WriteString(fs.Name.String())
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	out.WriteString(fs.Body.String())
	return out.String()
}

// Identifier represents a name reference like 'x'
type Identifier struct {
	Token lexer.Token // the lexer.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) lvalueNode()          {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Pos() lexer.Token     { return i.Token }
func (i *Identifier) String() string       { return i.Value }

// IntegerLiteral represents integer literals like '5'
type IntegerLiteral struct {
	Token lexer.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) Pos() lexer.Token     { return il.Token }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }

// FloatLiteral represents float literals like '3.14'
type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) Pos() lexer.Token     { return fl.Token }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }

// StringLiteral represents string literals like '"hello"'
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) Pos() lexer.Token     { return sl.Token }
func (sl *StringLiteral) String() string {
	var out bytes.Buffer
	out.WriteString(`"`)
	escaped := strings.ReplaceAll(sl.Value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	out.WriteString(escaped)
	out.WriteString(`"`)
	return out.String()
}

// BooleanLiteral represents 'true' and 'false'
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) Pos() lexer.Token     { return bl.Token }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }

// NullLiteral represents 'null'
type NullLiteral struct {
	Token lexer.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) Pos() lexer.Token     { return nl.Token }
func (nl *NullLiteral) String() string       { return "null" }

// ArrayLiteral represents array literals like '[1, 2, 3]'
type ArrayLiteral struct {
	Token    lexer.Token // the '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) Pos() lexer.Token     { return al.Token }
func (al *ArrayLiteral) String() string {
	var out bytes.Buffer

	elements := []string{}
	for _, el := range al.Elements {
		elements = append(elements, el.String())
	}
	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")
	return out.String()
}

// DictLiteral represents dictionary literals like '{a: 1, b: 2}'
type DictLiteral struct {
	Token lexer.Token // the '{' token
	Keys  []string
	Vals  []Expression
}

func (dl *DictLiteral) expressionNode()      {}
func (dl *DictLiteral) TokenLiteral() string { return dl.Token.Literal }
func (dl *DictLiteral) Pos() lexer.Token     { return dl.Token }
func (dl *DictLiteral) String() string {
	var out bytes.Buffer

	pairs := []string{}
	for i, k := range dl.Keys {
		pairs = append(pairs, k+": "+dl.Vals[i].String())
	}
	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")
	return out.String()
}

// PrefixExpression represents prefix expressions like '-x' or '!ok'
type PrefixExpression struct {
	Token    lexer.Token // the prefix token, e.g. '-'
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) Pos() lexer.Token     { return pe.Token }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// InfixExpression represents binary operations like 'x + y'
type InfixExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) Pos() lexer.Token     { return ie.Token }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// IndexExpression represents subscript access like 'xs[0]'
type IndexExpression struct {
	Token lexer.Token // the '[' token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) lvalueNode()          {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) Pos() lexer.Token     { return ie.Token }
func (ie *IndexExpression) String() string {
	return "(" + ie.Left.String() + "[" + ie.Index.String() + "])"
}

// DotExpression represents property access like 'point.x'
type DotExpression struct {
	Token    lexer.Token // the '.' token
	Left     Expression
	Property string
}

func (de *DotExpression) expressionNode()      {}
func (de *DotExpression) lvalueNode()          {}
func (de *DotExpression) TokenLiteral() string { return de.Token.Literal }
func (de *DotExpression) Pos() lexer.Token     { return de.Token }
func (de *DotExpression) String() string {
	return "(" + de.Left.String() + "." + de.Property + ")"
}

// CallExpression represents function calls like 'add(1, 2)'
type CallExpression struct {
	Token     lexer.Token // the '(' token
	Function  Expression  // Identifier or FunctionLiteral
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Pos() lexer.Token     { return ce.Token }
func (ce *CallExpression) String() string {
	var out bytes.Buffer

	args := []string{}
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}
	out.WriteString(ce.Function.String())
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")
	return out.String()
}

// FunctionLiteral represents anonymous functions like 'fn(x) { x + 1 }'
type FunctionLiteral struct {
	Token      lexer.Token // the lexer.FUNCTION token
	Parameters []*Identifier
	Body       *BlockStatement
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) Pos() lexer.Token     { return fl.Token }
func (fl *FunctionLiteral) String() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range fl.Parameters {
		params = append(params, p.String())
	}
	out.WriteString("fn(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	out.WriteString(fl.Body.String())
	return out.String()
}
