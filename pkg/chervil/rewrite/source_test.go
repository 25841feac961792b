package rewrite

import (
	"testing"

	cerrors "github.com/sambeau/chervil/pkg/chervil/errors"
	"github.com/sambeau/chervil/pkg/chervil/evaluator"
	"github.com/sambeau/chervil/pkg/chervil/lexer"
	"github.com/sambeau/chervil/pkg/chervil/parser"
)

func TestSourceFromString(t *testing.T) {
	text, file, line, err := Source("fn f(x) {\n\treturn x\n}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file != UnknownFile {
		t.Errorf("file wrong. got=%q", file)
	}
	if line != 1 {
		t.Errorf("line wrong. got=%d", line)
	}
	if text != "fn f(x) {\n\treturn x\n}" {
		t.Errorf("text wrong. got=%q", text)
	}
}

func TestSourceFromIndentedString(t *testing.T) {
	text, _, _, err := Source("\tfn f(x) {\n\t\treturn x\n\t}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "fn f(x) {\n\treturn x\n}" {
		t.Errorf("dedent wrong. got=%q", text)
	}
}

func TestSourceFromFunction(t *testing.T) {
	input := `let pad = 1
fn double(xs) {
	return xs * 2
}`
	env := evaluator.NewEnvironment()
	env.Filename = "demo.chv"
	env.Source = input + "\n"

	l := lexer.NewWithFilename(input, "demo.chv")
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	if result := evaluator.Eval(program, env); evaluator.IsError(result) {
		t.Fatalf("eval failed: %s", result.Inspect())
	}

	obj, _ := env.Get("double")
	text, file, line, err := Source(obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file != "demo.chv" {
		t.Errorf("file wrong. got=%q", file)
	}
	if line != 2 {
		t.Errorf("line wrong. got=%d", line)
	}
	if text != "fn double(xs) {\n\treturn xs * 2\n}\n" {
		t.Errorf("text wrong. got=%q", text)
	}
}

func TestSourceRejectsUnsupportedInput(t *testing.T) {
	_, _, _, err := Source(42)
	if err == nil {
		t.Fatalf("expected an error")
	}
	cerr, ok := err.(*cerrors.ChervilError)
	if !ok {
		t.Fatalf("expected *ChervilError, got %T", err)
	}
	if cerr.Code != "REWRITE-0001" {
		t.Errorf("wrong code. got=%q", cerr.Code)
	}
}

func TestDedent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"abc", "abc"},
		{"  a\n  b", "a\nb"},
		{"\t\ta\n\t\t\tb", "a\n\tb"},
		{"  a\n\n  b", "a\n\nb"},
		{"  a\nb", "  a\nb"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Dedent(tt.input); got != tt.expected {
			t.Errorf("Dedent(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
