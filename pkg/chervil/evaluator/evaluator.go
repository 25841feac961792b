// Package evaluator implements a tree-walking evaluator for Chervil.
package evaluator

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sambeau/chervil/pkg/chervil/ast"
	cerrors "github.com/sambeau/chervil/pkg/chervil/errors"
	"github.com/sambeau/chervil/pkg/chervil/lexer"
)

// ObjectType identifies the runtime type of a value
type ObjectType string

const (
	INTEGER_OBJ    = "INTEGER"
	FLOAT_OBJ      = "FLOAT"
	BOOLEAN_OBJ    = "BOOLEAN"
	STRING_OBJ     = "STRING"
	NULL_OBJ       = "NULL"
	RETURN_OBJ     = "RETURN_VALUE"
	ERROR_OBJ      = "ERROR"
	FUNCTION_OBJ   = "FUNCTION"
	BUILTIN_OBJ    = "BUILTIN"
	ARRAY_OBJ      = "ARRAY"
	DICTIONARY_OBJ = "DICTIONARY"
)

// Object represents all values in our language
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Integer represents integer objects
type Integer struct {
	Value int64
}

func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Type() ObjectType { return INTEGER_OBJ }

// Float represents floating-point objects
type Float struct {
	Value float64
}

func (f *Float) Inspect() string  { return fmt.Sprintf("%g", f.Value) }
func (f *Float) Type() ObjectType { return FLOAT_OBJ }

// Boolean represents boolean objects
type Boolean struct {
	Value bool
}

func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }
func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }

// String represents string objects
type String struct {
	Value string
}

func (s *String) Inspect() string  { return s.Value }
func (s *String) Type() ObjectType { return STRING_OBJ }

// Null represents null/nil objects
type Null struct{}

func (n *Null) Inspect() string  { return "null" }
func (n *Null) Type() ObjectType { return NULL_OBJ }

// ReturnValue wraps other objects when returned
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// ErrorClass is re-exported from the errors package for convenience
type ErrorClass = cerrors.ErrorClass

// Error represents error objects with structured error information
type Error struct {
	Message string
	Line    int
	Column  int
	Class   ErrorClass
	Code    string
	File    string
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	if e.Line > 0 {
		return fmt.Sprintf("ERROR: line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return "ERROR: " + e.Message
}

// ToChervilError converts the error object to a structured error value.
func (e *Error) ToChervilError() *cerrors.ChervilError {
	return &cerrors.ChervilError{
		Class:   e.Class,
		Code:    e.Code,
		Message: e.Message,
		Line:    e.Line,
		Column:  e.Column,
		File:    e.File,
	}
}

// Array represents array objects. Arrays are mutable and aliasable:
// two bindings can refer to the same backing elements, and the
// in-place combine forms (+=, *=) mutate those elements directly.
type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	var out bytes.Buffer

	elements := []string{}
	for _, e := range a.Elements {
		elements = append(elements, e.Inspect())
	}
	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")
	return out.String()
}

// Dictionary represents dictionary objects with insertion-ordered keys
type Dictionary struct {
	Keys  []string
	Pairs map[string]Object
}

func (d *Dictionary) Type() ObjectType { return DICTIONARY_OBJ }
func (d *Dictionary) Inspect() string {
	var out bytes.Buffer

	pairs := []string{}
	for _, k := range d.Keys {
		pairs = append(pairs, fmt.Sprintf("%s: %s", k, d.Pairs[k].Inspect()))
	}
	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")
	return out.String()
}

// Set stores a key, preserving insertion order
func (d *Dictionary) Set(key string, val Object) {
	if _, ok := d.Pairs[key]; !ok {
		d.Keys = append(d.Keys, key)
	}
	d.Pairs[key] = val
}

// Function represents user-defined functions. A function records the
// source it was defined from (including any decorator lines), so the
// rewrite engine can re-parse the definition later.
type Function struct {
	Name       string
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *Environment

	File   string // file the function was defined in
	Line   int    // 1-based line the definition starts on
	Source string // source text of the definition, "" if unavailable
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range f.Parameters {
		params = append(params, p.String())
	}
	out.WriteString("fn")
	if f.Name != "" {
		out.WriteString(" " + f.Name)
	}
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	out.WriteString(f.Body.String())
	return out.String()
}

// BuiltinFunction is the signature of builtin implementations. The
// calling environment is passed so builtins can reach the logger and
// ambient bindings.
type BuiltinFunction func(env *Environment, args ...Object) Object

// Builtin wraps a builtin function
type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin function " + b.Name }

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// Environment holds variable bindings
type Environment struct {
	store    map[string]Object
	outer    *Environment
	Filename string // file being evaluated, for error positions
	Source   string // full source text, for function introspection
	Logger   Logger // receives print() output
}

// NewEnvironment creates a new environment
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object), Logger: DefaultLogger}
}

// NewEnclosedEnvironment creates a new environment with outer reference
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	if outer != nil {
		env.Filename = outer.Filename
		env.Source = outer.Source
		env.Logger = outer.Logger
	}
	return env
}

// Get retrieves a value from the environment
func (e *Environment) Get(name string) (Object, bool) {
	value, ok := e.store[name]
	if !ok && e.outer != nil {
		value, ok = e.outer.Get(name)
	}
	return value, ok
}

// Set stores a value in this environment's own scope
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}

// Update rebinds an existing name wherever it is bound, or binds it
// locally if it is new
func (e *Environment) Update(name string, val Object) Object {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			env.store[name] = val
			return val
		}
	}
	e.store[name] = val
	return val
}

// Bindings returns the names bound directly in this environment,
// sorted, not including outer scopes
func (e *Environment) Bindings() []string {
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Eval evaluates an AST node and returns the resulting object
func Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return evalProgram(node.Statements, env)

	case *ast.ExpressionStatement:
		return Eval(node.Expression, env)

	case *ast.BlockStatement:
		return evalBlockStatement(node, env)

	case *ast.LetStatement:
		val := Eval(node.Value, env)
		if isError(val) {
			return val
		}
		env.Set(node.Name.Value, val)
		return NULL

	case *ast.AssignStatement:
		return evalAssignStatement(node, env)

	case *ast.AugAssignStatement:
		return evalAugAssignStatement(node, env)

	case *ast.ReturnStatement:
		if node.ReturnValue == nil {
			return &ReturnValue{Value: NULL}
		}
		val := Eval(node.ReturnValue, env)
		if isError(val) {
			return val
		}
		return &ReturnValue{Value: val}

	case *ast.IfStatement:
		return evalIfStatement(node, env)

	case *ast.ForStatement:
		return evalForStatement(node, env)

	case *ast.FunctionStatement:
		return evalFunctionStatement(node, env)

	// Expressions
	case *ast.Identifier:
		return evalIdentifier(node, env)

	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}

	case *ast.FloatLiteral:
		return &Float{Value: node.Value}

	case *ast.StringLiteral:
		return &String{Value: node.Value}

	case *ast.BooleanLiteral:
		return nativeBoolToBoolean(node.Value)

	case *ast.NullLiteral:
		return NULL

	case *ast.ArrayLiteral:
		elements := evalExpressions(node.Elements, env)
		if len(elements) == 1 && isError(elements[0]) {
			return elements[0]
		}
		return &Array{Elements: elements}

	case *ast.DictLiteral:
		dict := &Dictionary{Pairs: make(map[string]Object)}
		for i, key := range node.Keys {
			val := Eval(node.Vals[i], env)
			if isError(val) {
				return val
			}
			dict.Set(key, val)
		}
		return dict

	case *ast.PrefixExpression:
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalPrefixExpression(node.Token, node.Operator, right)

	case *ast.InfixExpression:
		left := Eval(node.Left, env)
		if isError(left) {
			return left
		}
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalInfixExpression(node.Token, node.Operator, left, right)

	case *ast.IndexExpression:
		left := Eval(node.Left, env)
		if isError(left) {
			return left
		}
		index := Eval(node.Index, env)
		if isError(index) {
			return index
		}
		return evalIndexExpression(node.Token, left, index)

	case *ast.DotExpression:
		left := Eval(node.Left, env)
		if isError(left) {
			return left
		}
		return evalDotExpression(node.Token, left, node.Property)

	case *ast.CallExpression:
		function := Eval(node.Function, env)
		if isError(function) {
			return function
		}
		args := evalExpressions(node.Arguments, env)
		if len(args) == 1 && isError(args[0]) {
			return args[0]
		}
		return applyFunction(function, args, env)

	case *ast.FunctionLiteral:
		return &Function{Parameters: node.Parameters, Body: node.Body, Env: env,
			File: env.Filename, Line: node.Token.Line}

	case nil:
		return NULL
	}

	return newErrorWithClass(cerrors.ClassState, "unhandled node type %T", node)
}

func evalProgram(stmts []ast.Statement, env *Environment) Object {
	var result Object = NULL

	for _, stmt := range stmts {
		result = Eval(stmt, env)

		switch result := result.(type) {
		case *ReturnValue:
			return result.Value
		case *Error:
			return result
		}
	}

	return result
}

func evalBlockStatement(block *ast.BlockStatement, env *Environment) Object {
	var result Object = NULL

	for _, stmt := range block.Statements {
		result = Eval(stmt, env)

		if result != nil {
			rt := result.Type()
			if rt == RETURN_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}

	return result
}

// evalFunctionStatement builds the function object, applies any
// decorators bottom-up, and binds the result to the function's name.
func evalFunctionStatement(node *ast.FunctionStatement, env *Environment) Object {
	fn := &Function{
		Name:       node.Name.Value,
		Parameters: node.Parameters,
		Body:       node.Body,
		Env:        env,
		File:       env.Filename,
		Line:       node.StartLine(),
		Source:     definitionSource(node, env),
	}

	var result Object = fn
	for i := len(node.Decorators) - 1; i >= 0; i-- {
		dec := Eval(node.Decorators[i], env)
		if isError(dec) {
			return dec
		}
		result = applyFunction(dec, []Object{result}, env)
		if isError(result) {
			return result
		}
	}

	env.Set(node.Name.Value, result)
	return NULL
}

// definitionSource recovers the source text of a definition, decorator
// lines included. It prefers the environment's recorded source and
// falls back to unparsing the tree.
func definitionSource(node *ast.FunctionStatement, env *Environment) string {
	if env.Source != "" {
		lines := strings.Split(env.Source, "\n")
		start, end := node.StartLine(), node.EndLine
		if start >= 1 && end >= start && end <= len(lines) {
			return strings.Join(lines[start-1:end], "\n") + "\n"
		}
	}
	return node.String() + "\n"
}

func evalAssignStatement(node *ast.AssignStatement, env *Environment) Object {
	val := Eval(node.Value, env)
	if isError(val) {
		return val
	}

	switch target := node.Target.(type) {
	case *ast.Identifier:
		env.Update(target.Value, val)
		return NULL

	case *ast.IndexExpression:
		left := Eval(target.Left, env)
		if isError(left) {
			return left
		}
		index := Eval(target.Index, env)
		if isError(index) {
			return index
		}
		return evalIndexSet(target.Token, left, index, val)

	case *ast.DotExpression:
		left := Eval(target.Left, env)
		if isError(left) {
			return left
		}
		dict, ok := left.(*Dictionary)
		if !ok {
			return newErrorWithClassAndPos(cerrors.ClassType, target.Token,
				"cannot assign property .%s on %s", target.Property, strings.ToLower(string(left.Type())))
		}
		dict.Set(target.Property, val)
		return NULL
	}

	return newErrorWithClassAndPos(cerrors.ClassState, node.Token,
		"invalid assignment target %T", node.Target)
}

func evalIndexSet(tok lexer.Token, left, index, val Object) Object {
	switch left := left.(type) {
	case *Array:
		idx, ok := index.(*Integer)
		if !ok {
			return newErrorWithClassAndPos(cerrors.ClassIndex, tok,
				"array index must be an integer, got %s", strings.ToLower(string(index.Type())))
		}
		if idx.Value < 0 || idx.Value >= int64(len(left.Elements)) {
			return newErrorWithClassAndPos(cerrors.ClassIndex, tok,
				"index %d out of bounds (length %d)", idx.Value, len(left.Elements))
		}
		left.Elements[idx.Value] = val
		return NULL
	case *Dictionary:
		key, ok := index.(*String)
		if !ok {
			return newErrorWithClassAndPos(cerrors.ClassIndex, tok,
				"dictionary key must be a string, got %s", strings.ToLower(string(index.Type())))
		}
		left.Set(key.Value, val)
		return NULL
	}
	return newErrorWithClassAndPos(cerrors.ClassType, tok,
		"cannot index-assign into %s", strings.ToLower(string(left.Type())))
}

// evalAugAssignStatement implements the in-place combine forms. When
// the target is bound to an array, the combine mutates the array's
// elements directly, so any alias of the array observes the change.
func evalAugAssignStatement(node *ast.AugAssignStatement, env *Environment) Object {
	current, ok := env.Get(node.Target.Value)
	if !ok {
		return newErrorWithClassAndPos(cerrors.ClassUndefined, node.Token,
			"identifier not found: %s", node.Target.Value)
	}

	val := Eval(node.Value, env)
	if isError(val) {
		return val
	}

	if arr, ok := current.(*Array); ok {
		return combineInPlace(node.Token, arr, node.Operator, val)
	}

	combined := evalInfixExpression(node.Token, node.Operator, current, val)
	if isError(combined) {
		return combined
	}
	env.Update(node.Target.Value, combined)
	return NULL
}

// combineInPlace folds val into arr elementwise without allocating a
// new array. val may be an equal-length array or a scalar broadcast
// over every element.
func combineInPlace(tok lexer.Token, arr *Array, operator string, val Object) Object {
	switch val := val.(type) {
	case *Array:
		if len(val.Elements) != len(arr.Elements) {
			return newErrorWithClassAndPos(cerrors.ClassOperator, tok,
				"cannot combine arrays of length %d and %d", len(arr.Elements), len(val.Elements))
		}
		for i := range arr.Elements {
			combined := evalInfixExpression(tok, operator, arr.Elements[i], val.Elements[i])
			if isError(combined) {
				return combined
			}
			arr.Elements[i] = combined
		}
		return NULL
	case *Integer, *Float:
		for i := range arr.Elements {
			combined := evalInfixExpression(tok, operator, arr.Elements[i], val)
			if isError(combined) {
				return combined
			}
			arr.Elements[i] = combined
		}
		return NULL
	}
	return newErrorWithClassAndPos(cerrors.ClassOperator, tok,
		"cannot combine array with %s in place", strings.ToLower(string(val.Type())))
}

func evalIfStatement(node *ast.IfStatement, env *Environment) Object {
	condition := Eval(node.Condition, env)
	if isError(condition) {
		return condition
	}

	if isTruthy(condition) {
		return Eval(node.Consequence, env)
	}
	if node.Alternative != nil {
		return Eval(node.Alternative, env)
	}
	return NULL
}

func evalForStatement(node *ast.ForStatement, env *Environment) Object {
	iterable := Eval(node.Iterable, env)
	if isError(iterable) {
		return iterable
	}

	var items []Object
	switch iterable := iterable.(type) {
	case *Array:
		items = iterable.Elements
	case *String:
		for _, r := range iterable.Value {
			items = append(items, &String{Value: string(r)})
		}
	default:
		return newErrorWithClassAndPos(cerrors.ClassType, node.Token,
			"cannot iterate over %s", strings.ToLower(string(iterable.Type())))
	}

	for _, item := range items {
		loopEnv := NewEnclosedEnvironment(env)
		loopEnv.Set(node.Variable.Value, item)

		result := Eval(node.Body, loopEnv)
		if result != nil {
			rt := result.Type()
			if rt == RETURN_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}

	return NULL
}

func evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}
	if builtin, ok := lookupBuiltin(node.Value); ok {
		return builtin
	}
	return newErrorWithClassAndPos(cerrors.ClassUndefined, node.Token,
		"identifier not found: %s", node.Value)
}

func evalExpressions(exprs []ast.Expression, env *Environment) []Object {
	var result []Object

	for _, e := range exprs {
		evaluated := Eval(e, env)
		if isError(evaluated) {
			return []Object{evaluated}
		}
		result = append(result, evaluated)
	}

	return result
}

func evalPrefixExpression(tok lexer.Token, operator string, right Object) Object {
	switch operator {
	case "!":
		if isTruthy(right) {
			return FALSE
		}
		return TRUE
	case "-":
		switch right := right.(type) {
		case *Integer:
			return &Integer{Value: -right.Value}
		case *Float:
			return &Float{Value: -right.Value}
		case *Array:
			elements := make([]Object, len(right.Elements))
			for i, el := range right.Elements {
				neg := evalPrefixExpression(tok, "-", el)
				if isError(neg) {
					return neg
				}
				elements[i] = neg
			}
			return &Array{Elements: elements}
		}
		return newErrorWithClassAndPos(cerrors.ClassOperator, tok,
			"unknown operator: -%s", strings.ToLower(string(right.Type())))
	}
	return newErrorWithClassAndPos(cerrors.ClassOperator, tok,
		"unknown operator: %s%s", operator, strings.ToLower(string(right.Type())))
}

func evalInfixExpression(tok lexer.Token, operator string, left, right Object) Object {
	switch {
	case operator == "&" || operator == "and":
		return nativeBoolToBoolean(isTruthy(left) && isTruthy(right))
	case operator == "|" || operator == "or":
		return nativeBoolToBoolean(isTruthy(left) || isTruthy(right))
	case operator == "==":
		return nativeBoolToBoolean(objectsEqual(left, right))
	case operator == "!=":
		return nativeBoolToBoolean(!objectsEqual(left, right))
	case left.Type() == ARRAY_OBJ || right.Type() == ARRAY_OBJ:
		return evalArrayInfixExpression(tok, operator, left, right)
	case left.Type() == INTEGER_OBJ && right.Type() == INTEGER_OBJ:
		return evalIntegerInfixExpression(tok, operator, left.(*Integer), right.(*Integer))
	case left.Type() == FLOAT_OBJ || right.Type() == FLOAT_OBJ:
		return evalFloatInfixExpression(tok, operator, left, right)
	case left.Type() == STRING_OBJ && right.Type() == STRING_OBJ:
		return evalStringInfixExpression(tok, operator, left.(*String), right.(*String))
	}
	return newErrorWithClassAndPos(cerrors.ClassOperator, tok,
		"unknown operator: %s %s %s",
		strings.ToLower(string(left.Type())), operator, strings.ToLower(string(right.Type())))
}

func evalIntegerInfixExpression(tok lexer.Token, operator string, left, right *Integer) Object {
	switch operator {
	case "+":
		return &Integer{Value: left.Value + right.Value}
	case "-":
		return &Integer{Value: left.Value - right.Value}
	case "*":
		return &Integer{Value: left.Value * right.Value}
	case "/":
		if right.Value == 0 {
			return newErrorWithClassAndPos(cerrors.ClassOperator, tok, "division by zero")
		}
		return &Integer{Value: left.Value / right.Value}
	case "%":
		if right.Value == 0 {
			return newErrorWithClassAndPos(cerrors.ClassOperator, tok, "division by zero")
		}
		return &Integer{Value: left.Value % right.Value}
	case "<":
		return nativeBoolToBoolean(left.Value < right.Value)
	case ">":
		return nativeBoolToBoolean(left.Value > right.Value)
	case "<=":
		return nativeBoolToBoolean(left.Value <= right.Value)
	case ">=":
		return nativeBoolToBoolean(left.Value >= right.Value)
	}
	return newErrorWithClassAndPos(cerrors.ClassOperator, tok,
		"unknown operator: integer %s integer", operator)
}

func evalFloatInfixExpression(tok lexer.Token, operator string, left, right Object) Object {
	lv, ok := toFloat(left)
	if !ok {
		return newErrorWithClassAndPos(cerrors.ClassOperator, tok,
			"unknown operator: %s %s %s",
			strings.ToLower(string(left.Type())), operator, strings.ToLower(string(right.Type())))
	}
	rv, ok := toFloat(right)
	if !ok {
		return newErrorWithClassAndPos(cerrors.ClassOperator, tok,
			"unknown operator: %s %s %s",
			strings.ToLower(string(left.Type())), operator, strings.ToLower(string(right.Type())))
	}

	switch operator {
	case "+":
		return &Float{Value: lv + rv}
	case "-":
		return &Float{Value: lv - rv}
	case "*":
		return &Float{Value: lv * rv}
	case "/":
		if rv == 0 {
			return newErrorWithClassAndPos(cerrors.ClassOperator, tok, "division by zero")
		}
		return &Float{Value: lv / rv}
	case "<":
		return nativeBoolToBoolean(lv < rv)
	case ">":
		return nativeBoolToBoolean(lv > rv)
	case "<=":
		return nativeBoolToBoolean(lv <= rv)
	case ">=":
		return nativeBoolToBoolean(lv >= rv)
	}
	return newErrorWithClassAndPos(cerrors.ClassOperator, tok,
		"unknown operator: float %s float", operator)
}

func evalStringInfixExpression(tok lexer.Token, operator string, left, right *String) Object {
	switch operator {
	case "+":
		return &String{Value: left.Value + right.Value}
	case "<":
		return nativeBoolToBoolean(left.Value < right.Value)
	case ">":
		return nativeBoolToBoolean(left.Value > right.Value)
	}
	return newErrorWithClassAndPos(cerrors.ClassOperator, tok,
		"unknown operator: string %s string", operator)
}

// evalArrayInfixExpression applies an operator elementwise. Two arrays
// combine pairwise; an array and a scalar broadcast the scalar. The
// result is always a fresh array; in-place mutation only happens
// through the combine statements (+=, *=).
func evalArrayInfixExpression(tok lexer.Token, operator string, left, right Object) Object {
	la, lok := left.(*Array)
	ra, rok := right.(*Array)

	switch {
	case lok && rok:
		if len(la.Elements) != len(ra.Elements) {
			return newErrorWithClassAndPos(cerrors.ClassOperator, tok,
				"cannot combine arrays of length %d and %d", len(la.Elements), len(ra.Elements))
		}
		elements := make([]Object, len(la.Elements))
		for i := range la.Elements {
			combined := evalInfixExpression(tok, operator, la.Elements[i], ra.Elements[i])
			if isError(combined) {
				return combined
			}
			elements[i] = combined
		}
		return &Array{Elements: elements}

	case lok:
		elements := make([]Object, len(la.Elements))
		for i := range la.Elements {
			combined := evalInfixExpression(tok, operator, la.Elements[i], right)
			if isError(combined) {
				return combined
			}
			elements[i] = combined
		}
		return &Array{Elements: elements}

	default:
		elements := make([]Object, len(ra.Elements))
		for i := range ra.Elements {
			combined := evalInfixExpression(tok, operator, left, ra.Elements[i])
			if isError(combined) {
				return combined
			}
			elements[i] = combined
		}
		return &Array{Elements: elements}
	}
}

func evalIndexExpression(tok lexer.Token, left, index Object) Object {
	switch left := left.(type) {
	case *Array:
		idx, ok := index.(*Integer)
		if !ok {
			return cerrorToError(cerrors.NewWithPosition("TYPE-0004", tok.Line, tok.Column,
				map[string]any{"Got": "array", "IndexType": strings.ToLower(string(index.Type()))}))
		}
		if idx.Value < 0 || idx.Value >= int64(len(left.Elements)) {
			return newErrorWithClassAndPos(cerrors.ClassIndex, tok,
				"index %d out of bounds (length %d)", idx.Value, len(left.Elements))
		}
		return left.Elements[idx.Value]

	case *Dictionary:
		key, ok := index.(*String)
		if !ok {
			return cerrorToError(cerrors.NewWithPosition("TYPE-0004", tok.Line, tok.Column,
				map[string]any{"Got": "dictionary", "IndexType": strings.ToLower(string(index.Type()))}))
		}
		if val, ok := left.Pairs[key.Value]; ok {
			return val
		}
		return NULL

	case *String:
		idx, ok := index.(*Integer)
		if !ok {
			return cerrorToError(cerrors.NewWithPosition("TYPE-0004", tok.Line, tok.Column,
				map[string]any{"Got": "string", "IndexType": strings.ToLower(string(index.Type()))}))
		}
		runes := []rune(left.Value)
		if idx.Value < 0 || idx.Value >= int64(len(runes)) {
			return newErrorWithClassAndPos(cerrors.ClassIndex, tok,
				"index %d out of bounds (length %d)", idx.Value, len(runes))
		}
		return &String{Value: string(runes[idx.Value])}
	}

	return cerrorToError(cerrors.NewWithPosition("TYPE-0004", tok.Line, tok.Column,
		map[string]any{"Got": strings.ToLower(string(left.Type())), "IndexType": strings.ToLower(string(index.Type()))}))
}

func evalDotExpression(tok lexer.Token, left Object, property string) Object {
	switch left := left.(type) {
	case *Dictionary:
		if val, ok := left.Pairs[property]; ok {
			return val
		}
		return NULL
	case *Array:
		if property == "length" {
			return &Integer{Value: int64(len(left.Elements))}
		}
	case *String:
		if property == "length" {
			return &Integer{Value: int64(len([]rune(left.Value)))}
		}
	}
	return newErrorWithClassAndPos(cerrors.ClassUndefined, tok,
		"unknown property .%s on %s", property, strings.ToLower(string(left.Type())))
}

func applyFunction(fn Object, args []Object, env *Environment) Object {
	switch fn := fn.(type) {
	case *Function:
		extendedEnv := extendFunctionEnv(fn, args, env)
		evaluated := Eval(fn.Body, extendedEnv)
		return unwrapReturnValue(evaluated)
	case *Builtin:
		return fn.Fn(env, args...)
	default:
		return cerrorToError(cerrors.New("TYPE-0002",
			map[string]any{"Got": strings.ToLower(string(fn.Type()))}))
	}
}

// extendFunctionEnv binds arguments in a fresh scope over the
// function's defining environment. The caller's logger carries over so
// trace output from rewritten functions lands where the caller expects.
func extendFunctionEnv(fn *Function, args []Object, caller *Environment) *Environment {
	env := NewEnclosedEnvironment(fn.Env)
	if caller != nil {
		env.Logger = caller.Logger
	}
	for i, param := range fn.Parameters {
		if i < len(args) {
			env.Set(param.Value, args[i])
		} else {
			env.Set(param.Value, NULL)
		}
	}
	return env
}

func unwrapReturnValue(obj Object) Object {
	if returnValue, ok := obj.(*ReturnValue); ok {
		return returnValue.Value
	}
	return obj
}

func isTruthy(obj Object) bool {
	switch obj {
	case NULL:
		return false
	case TRUE:
		return true
	case FALSE:
		return false
	default:
		return true
	}
}

func objectsEqual(left, right Object) bool {
	switch left := left.(type) {
	case *Integer:
		if right, ok := right.(*Integer); ok {
			return left.Value == right.Value
		}
	case *Float:
		if right, ok := right.(*Float); ok {
			return left.Value == right.Value
		}
	case *String:
		if right, ok := right.(*String); ok {
			return left.Value == right.Value
		}
	case *Boolean:
		if right, ok := right.(*Boolean); ok {
			return left.Value == right.Value
		}
	case *Null:
		_, ok := right.(*Null)
		return ok
	case *Array:
		right, ok := right.(*Array)
		if !ok || len(left.Elements) != len(right.Elements) {
			return false
		}
		for i := range left.Elements {
			if !objectsEqual(left.Elements[i], right.Elements[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func toFloat(obj Object) (float64, bool) {
	switch obj := obj.(type) {
	case *Integer:
		return float64(obj.Value), true
	case *Float:
		return obj.Value, true
	}
	return 0, false
}

func nativeBoolToBoolean(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// IsError reports whether an object is an error value.
func IsError(obj Object) bool {
	return isError(obj)
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

// newErrorWithClass creates a simple error with a class.
func newErrorWithClass(class ErrorClass, format string, a ...any) *Error {
	return &Error{
		Class:   class,
		Message: fmt.Sprintf(format, a...),
	}
}

// newErrorWithClassAndPos creates an error with class and position information.
func newErrorWithClassAndPos(class ErrorClass, tok lexer.Token, format string, a ...any) *Error {
	return &Error{
		Class:   class,
		Message: fmt.Sprintf(format, a...),
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

// cerrorToError wraps a structured error value as an error object.
func cerrorToError(err *cerrors.ChervilError) *Error {
	return &Error{
		Class:   err.Class,
		Code:    err.Code,
		Message: err.Message,
		Line:    err.Line,
		Column:  err.Column,
		File:    err.File,
	}
}
