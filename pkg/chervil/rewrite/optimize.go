package rewrite

import (
	"fmt"
	"strings"

	"github.com/sambeau/chervil/pkg/chervil/ast"
	cerrors "github.com/sambeau/chervil/pkg/chervil/errors"
	"github.com/sambeau/chervil/pkg/chervil/evaluator"
	"github.com/sambeau/chervil/pkg/chervil/lexer"
	"github.com/sambeau/chervil/pkg/chervil/parser"
)

// EntryPointName is the decorator name that triggers the rewrite. The
// decorator list of the rebuilt definition is stripped through the
// first decorator matching this name, so compiling the rebuilt code
// cannot re-enter the engine.
const EntryPointName = "optimize"

// Optimize rebuilds a function with commutative operations lowered to
// explicit statement sequences. The input is either a function object
// or a raw source string holding exactly one function definition. The
// rebuilt definition is evaluated in a fresh namespace over env's
// bindings; the one binding that evaluation introduces (the rewritten
// callable, or whatever any decorators below the marker made of it)
// is returned.
func Optimize(v any, env *evaluator.Environment) (evaluator.Object, error) {
	source, filename, lineno, err := Source(v)
	if err != nil {
		return nil, err
	}

	l := lexer.NewWithFilename(source, filename)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.StructuredErrors(); len(errs) > 0 {
		return nil, errs[0].WithFile(filename)
	}

	fn, err := singleFunction(program)
	if err != nil {
		return nil, err
	}
	if err := stripDecorators(fn, EntryPointName); err != nil {
		return nil, err
	}
	ast.ShiftLines(fn, lineno-1)

	rw := NewRewriter()
	NewCommutativeRule().Install(rw)
	rw.Rewrite(program)
	ast.FixPositions(program)

	evalEnv := evaluator.NewEnclosedEnvironment(env)
	evalEnv.Filename = filename
	// Pad the extracted text back out to its original line numbers, so
	// the rebuilt function records introspectable source of its own
	evalEnv.Source = strings.Repeat("\n", lineno-1) + source
	if result := evaluator.Eval(program, evalEnv); evaluator.IsError(result) {
		return nil, result.(*evaluator.Error).ToChervilError()
	}

	names := evalEnv.Bindings()
	if len(names) != 1 {
		return nil, cerrors.New("REWRITE-0004", map[string]any{"Got": len(names)})
	}
	rebuilt, _ := evalEnv.Get(names[0])
	return rebuilt, nil
}

// singleFunction asserts that the parsed unit is exactly one named
// function definition.
func singleFunction(program *ast.Program) (*ast.FunctionStatement, error) {
	if len(program.Statements) != 1 {
		return nil, cerrors.New("REWRITE-0002",
			map[string]any{"Got": fmt.Sprintf("%d statements", len(program.Statements))})
	}
	fn, ok := program.Statements[0].(*ast.FunctionStatement)
	if !ok {
		return nil, cerrors.New("REWRITE-0002",
			map[string]any{"Got": fmt.Sprintf("%T", program.Statements[0])})
	}
	return fn, nil
}

// stripDecorators removes every decorator up to and including the
// first one whose base name matches name, leaving only the decorators
// below the rewrite marker active in the rebuilt definition.
func stripDecorators(fn *ast.FunctionStatement, name string) error {
	for i, d := range fn.Decorators {
		if baseName(d) == name {
			fn.Decorators = fn.Decorators[i+1:]
			return nil
		}
	}
	return cerrors.New("REWRITE-0003",
		map[string]any{"Name": name, "Function": fn.Name.Value})
}

// baseName resolves the name a decorator expression is invoked under:
// the identifier itself, the callee of a call, or the property of an
// attribute access.
func baseName(expr ast.Expression) string {
	switch expr := expr.(type) {
	case *ast.Identifier:
		return expr.Value
	case *ast.CallExpression:
		return baseName(expr.Function)
	case *ast.DotExpression:
		return expr.Property
	}
	return ""
}
