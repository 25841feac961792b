package evaluator

import (
	"strings"
	"testing"

	"github.com/sambeau/chervil/pkg/chervil/lexer"
	"github.com/sambeau/chervil/pkg/chervil/parser"
)

func testEval(t *testing.T, input string) Object {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}

	env := NewEnvironment()
	env.Source = input + "\n"
	return Eval(program, env)
}

func testEvalWithEnv(t *testing.T, input string, env *Environment) Object {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	return Eval(program, env)
}

func TestEvalIntegerExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"5", 5},
		{"-5", -5},
		{"5 + 5 + 5 + 5 - 10", 10},
		{"2 * 2 * 2 * 2 * 2", 32},
		{"5 * 2 + 10", 20},
		{"5 + 2 * 10", 25},
		{"(5 + 10 * 2 + 15 / 3) * 2 + -10", 50},
		{"10 % 3", 1},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		testIntegerObject(t, evaluated, tt.expected)
	}
}

func TestEvalFloatExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"3.14", 3.14},
		{"1.5 + 2.5", 4.0},
		{"2 * 1.5", 3.0},
		{"10 / 4.0", 2.5},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		fl, ok := evaluated.(*Float)
		if !ok {
			t.Errorf("object is not Float. got=%T (%+v)", evaluated, evaluated)
			continue
		}
		if fl.Value != tt.expected {
			t.Errorf("object has wrong value. got=%v, want=%v", fl.Value, tt.expected)
		}
	}
}

func TestEvalBooleanExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"1 < 2", true},
		{"1 > 2", false},
		{"1 == 1", true},
		{"1 != 1", false},
		{"true and false", false},
		{"true or false", true},
		{"!true", false},
		{"!null", true},
		{"[1] == [1]", true},
		{"[1] == [2]", false},
		{`"a" == "a"`, true},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		testBooleanObject(t, evaluated, tt.expected)
	}
}

func TestLetAndAssignStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let a = 5\na", 5},
		{"let a = 5\na = 10\na", 10},
		{"let a = 5\nlet b = a\nb", 5},
		{"let xs = [1, 2, 3]\nxs[1] = 9\nxs[1]", 9},
		{"let d = {n: 1}\nd.n = 7\nd.n", 7},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestAugAssignStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let a = 5\na += 3\na", 8},
		{"let a = 5\na *= 3\na", 15},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestArrayArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected []int64
	}{
		{"[1, 2, 3] + [10, 20, 30]", []int64{11, 22, 33}},
		{"[1, 2, 3] * [2, 2, 2]", []int64{2, 4, 6}},
		{"[1, 2, 3] + 1", []int64{2, 3, 4}},
		{"2 * [1, 2, 3]", []int64{2, 4, 6}},
		{"-[1, 2, 3]", []int64{-1, -2, -3}},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		testIntegerArrayObject(t, evaluated, tt.expected)
	}
}

func TestArrayArithmeticAllocatesFreshResult(t *testing.T) {
	input := `let xs = [1, 2, 3]
let ys = xs + 0
ys[0] = 99
xs[0]`
	testIntegerObject(t, testEval(t, input), 1)
}

func TestAugAssignMutatesArrayInPlace(t *testing.T) {
	input := `let xs = [1, 2, 3]
let alias = xs
alias += [10, 10, 10]
xs`
	testIntegerArrayObject(t, testEval(t, input), []int64{11, 12, 13})
}

func TestArrayShapeMismatch(t *testing.T) {
	evaluated := testEval(t, "[1, 2] + [1, 2, 3]")
	errObj, ok := evaluated.(*Error)
	if !ok {
		t.Fatalf("expected error, got=%T (%+v)", evaluated, evaluated)
	}
	if !strings.Contains(errObj.Message, "length") {
		t.Errorf("unexpected message: %q", errObj.Message)
	}
}

func TestIfStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"if true { 10 }", int64(10)},
		{"if false { 10 }", nil},
		{"if 1 < 2 { 10 } else { 20 }", int64(10)},
		{"if 1 > 2 { 10 } else { 20 }", int64(20)},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		if expected, ok := tt.expected.(int64); ok {
			testIntegerObject(t, evaluated, expected)
		} else {
			testNullObject(t, evaluated)
		}
	}
}

func TestForStatements(t *testing.T) {
	input := `let total = 0
for x in [1, 2, 3, 4] {
	total += x
}
total`
	testIntegerObject(t, testEval(t, input), 10)
}

func TestFunctionDefinitionAndCall(t *testing.T) {
	input := `fn add(x, y) {
	return x + y
}
add(2, 3)`
	testIntegerObject(t, testEval(t, input), 5)
}

func TestFunctionRecordsSource(t *testing.T) {
	input := `let pad = 1
fn double(xs) {
	return xs * 2
}`
	env := NewEnvironment()
	env.Source = input + "\n"
	result := testEvalWithEnv(t, input, env)
	if IsError(result) {
		t.Fatalf("eval failed: %s", result.Inspect())
	}

	obj, ok := env.Get("double")
	if !ok {
		t.Fatalf("double not bound")
	}
	fn, ok := obj.(*Function)
	if !ok {
		t.Fatalf("double is not a *Function. got=%T", obj)
	}
	if fn.Line != 2 {
		t.Errorf("fn.Line wrong. got=%d", fn.Line)
	}
	want := "fn double(xs) {\n\treturn xs * 2\n}\n"
	if fn.Source != want {
		t.Errorf("fn.Source wrong.\nwant=%q\ngot=%q", want, fn.Source)
	}
}

func TestDecoratorApplication(t *testing.T) {
	input := `fn twice(f) {
	fn wrapped(x) {
		return f(f(x))
	}
	return wrapped
}

@twice
fn inc(x) {
	return x + 1
}

inc(5)`
	testIntegerObject(t, testEval(t, input), 7)
}

func TestDecoratorsApplyBottomUp(t *testing.T) {
	input := `let order = []
fn a(f) {
	order = push(order, "a")
	return f
}
fn b(f) {
	order = push(order, "b")
	return f
}

@a
@b
fn target(x) {
	return x
}

order`
	evaluated := testEval(t, input)
	arr, ok := evaluated.(*Array)
	if !ok {
		t.Fatalf("expected array, got=%T", evaluated)
	}
	if len(arr.Elements) != 2 {
		t.Fatalf("expected 2 entries, got=%d", len(arr.Elements))
	}
	first := arr.Elements[0].(*String).Value
	second := arr.Elements[1].(*String).Value
	if first != "b" || second != "a" {
		t.Errorf("decorators applied in wrong order: %q then %q", first, second)
	}
}

func TestClosures(t *testing.T) {
	input := `fn makeAdder(x) {
	fn adder(y) {
		return x + y
	}
	return adder
}
let addTwo = makeAdder(2)
addTwo(3)`
	testIntegerObject(t, testEval(t, input), 5)
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{`len("hello")`, int64(5)},
		{`len([1, 2, 3])`, int64(3)},
		{`first([1, 2, 3])`, int64(1)},
		{`last([1, 2, 3])`, int64(3)},
		{`len(range(5))`, int64(5)},
		{`type([])`, "ARRAY"},
		{`type(1)`, "INTEGER"},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		switch expected := tt.expected.(type) {
		case int64:
			testIntegerObject(t, evaluated, expected)
		case string:
			str, ok := evaluated.(*String)
			if !ok {
				t.Errorf("object is not String. got=%T (%+v)", evaluated, evaluated)
				continue
			}
			if str.Value != expected {
				t.Errorf("wrong string. got=%q want=%q", str.Value, expected)
			}
		}
	}
}

func TestCopyBuiltin(t *testing.T) {
	input := `let xs = [1, 2, 3]
let ys = copy(xs)
ys[0] = 99
xs[0]`
	testIntegerObject(t, testEval(t, input), 1)
}

func TestPrintGoesToLogger(t *testing.T) {
	logger := &BufferedLogger{}
	env := NewEnvironment()
	env.Logger = logger

	result := testEvalWithEnv(t, `print("hello", 42)`, env)
	if IsError(result) {
		t.Fatalf("eval failed: %s", result.Inspect())
	}

	lines := logger.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(lines))
	}
	if lines[0] != "hello 42" {
		t.Errorf("wrong log line: %q", lines[0])
	}
}

func TestErrorHandling(t *testing.T) {
	tests := []struct {
		input           string
		expectedMessage string
	}{
		{"5 + true", "unknown operator"},
		{"foobar", "identifier not found"},
		{"[1, 2][5]", "out of bounds"},
		{`len(1)`, "len expected an array"},
		{`len("a", "b")`, "expected 1 argument(s)"},
		{`range(1, 2, 3)`, "range expected 1 or 2 argument(s), got 3"},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)

		errObj, ok := evaluated.(*Error)
		if !ok {
			t.Errorf("no error object returned for %q. got=%T (%+v)",
				tt.input, evaluated, evaluated)
			continue
		}
		if !strings.Contains(errObj.Message, tt.expectedMessage) {
			t.Errorf("wrong error message for %q. want substring %q, got %q",
				tt.input, tt.expectedMessage, errObj.Message)
		}
	}
}

func TestErrorsCarryPosition(t *testing.T) {
	evaluated := testEval(t, "let x = 1\nfoobar")
	errObj, ok := evaluated.(*Error)
	if !ok {
		t.Fatalf("expected error, got=%T", evaluated)
	}
	if errObj.Line != 2 {
		t.Errorf("error line wrong. got=%d", errObj.Line)
	}
}

func testIntegerObject(t *testing.T, obj Object, expected int64) bool {
	t.Helper()
	result, ok := obj.(*Integer)
	if !ok {
		t.Errorf("object is not Integer. got=%T (%+v)", obj, obj)
		return false
	}
	if result.Value != expected {
		t.Errorf("object has wrong value. got=%d, want=%d", result.Value, expected)
		return false
	}
	return true
}

func testBooleanObject(t *testing.T, obj Object, expected bool) bool {
	t.Helper()
	result, ok := obj.(*Boolean)
	if !ok {
		t.Errorf("object is not Boolean. got=%T (%+v)", obj, obj)
		return false
	}
	if result.Value != expected {
		t.Errorf("object has wrong value. got=%t, want=%t", result.Value, expected)
		return false
	}
	return true
}

func testNullObject(t *testing.T, obj Object) bool {
	t.Helper()
	if obj != NULL {
		t.Errorf("object is not NULL. got=%T (%+v)", obj, obj)
		return false
	}
	return true
}

func testIntegerArrayObject(t *testing.T, obj Object, expected []int64) bool {
	t.Helper()
	arr, ok := obj.(*Array)
	if !ok {
		t.Errorf("object is not Array. got=%T (%+v)", obj, obj)
		return false
	}
	if len(arr.Elements) != len(expected) {
		t.Errorf("wrong element count. got=%d, want=%d", len(arr.Elements), len(expected))
		return false
	}
	for i, want := range expected {
		if !testIntegerObject(t, arr.Elements[i], want) {
			return false
		}
	}
	return true
}
