package ast

import (
	"fmt"
	"strings"
)

// Dump renders the structural form of a node for diagnostic traces,
// e.g. Infix(Name(x) * Name(x)) or Call(Name(copy), [Name(x)]).
func Dump(node Node) string {
	switch node := node.(type) {
	case nil:
		return "<nil>"
	case *Identifier:
		return fmt.Sprintf("Name(%s)", node.Value)
	case *IntegerLiteral:
		return fmt.Sprintf("Int(%d)", node.Value)
	case *FloatLiteral:
		return fmt.Sprintf("Float(%s)", node.Token.Literal)
	case *StringLiteral:
		return fmt.Sprintf("Str(%q)", node.Value)
	case *BooleanLiteral:
		return fmt.Sprintf("Bool(%t)", node.Value)
	case *NullLiteral:
		return "Null"
	case *ArrayLiteral:
		elems := make([]string, len(node.Elements))
		for i, el := range node.Elements {
			elems[i] = Dump(el)
		}
		return fmt.Sprintf("Array([%s])", strings.Join(elems, ", "))
	case *DictLiteral:
		pairs := make([]string, len(node.Keys))
		for i, k := range node.Keys {
			pairs[i] = fmt.Sprintf("%s: %s", k, Dump(node.Vals[i]))
		}
		return fmt.Sprintf("Dict({%s})", strings.Join(pairs, ", "))
	case *PrefixExpression:
		return fmt.Sprintf("Prefix(%s%s)", node.Operator, Dump(node.Right))
	case *InfixExpression:
		return fmt.Sprintf("Infix(%s %s %s)", Dump(node.Left), node.Operator, Dump(node.Right))
	case *IndexExpression:
		return fmt.Sprintf("Index(%s[%s])", Dump(node.Left), Dump(node.Index))
	case *DotExpression:
		return fmt.Sprintf("Attr(%s.%s)", Dump(node.Left), node.Property)
	case *CallExpression:
		args := make([]string, len(node.Arguments))
		for i, a := range node.Arguments {
			args[i] = Dump(a)
		}
		return fmt.Sprintf("Call(%s, [%s])", Dump(node.Function), strings.Join(args, ", "))
	case *FunctionLiteral:
		params := make([]string, len(node.Parameters))
		for i, p := range node.Parameters {
			params[i] = p.Value
		}
		return fmt.Sprintf("Fn([%s])", strings.Join(params, ", "))
	default:
		return fmt.Sprintf("Node(%s)", node.String())
	}
}
