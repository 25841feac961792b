package errors

import (
	"strings"
	"testing"
)

func TestNewFromCatalog(t *testing.T) {
	err := New("REWRITE-0002", map[string]any{"Got": "2 statements"})

	if err.Class != ClassRewrite {
		t.Errorf("wrong class. got=%q", err.Class)
	}
	if err.Code != "REWRITE-0002" {
		t.Errorf("wrong code. got=%q", err.Code)
	}
	if err.Message != "expected exactly one function definition, got 2 statements" {
		t.Errorf("wrong message. got=%q", err.Message)
	}
}

func TestNewRendersHints(t *testing.T) {
	err := New("REWRITE-0003", map[string]any{"Name": "optimize", "Function": "f"})

	if len(err.Hints) != 1 {
		t.Fatalf("expected 1 hint, got %d", len(err.Hints))
	}
	if !strings.Contains(err.Message, "'optimize'") {
		t.Errorf("message should name the decorator. got=%q", err.Message)
	}
}

func TestNewUnknownCode(t *testing.T) {
	err := New("NOPE-9999", map[string]any{"message": "something odd"})
	if err.Code != "NOPE-9999" {
		t.Errorf("wrong code. got=%q", err.Code)
	}
	if err.Message != "something odd" {
		t.Errorf("wrong message. got=%q", err.Message)
	}
}

func TestNewWithPosition(t *testing.T) {
	err := NewWithPosition("PARSE-0002", 3, 7, map[string]any{"Token": "}"})
	if err.Line != 3 || err.Column != 7 {
		t.Errorf("wrong position. got line=%d col=%d", err.Line, err.Column)
	}
	if !err.IsParseError() {
		t.Errorf("expected parse class, got %q", err.Class)
	}
}

func TestStringIncludesFileAndPosition(t *testing.T) {
	err := NewWithPosition("PARSE-0002", 3, 7, map[string]any{"Token": "}"}).WithFile("demo.chv")

	s := err.String()
	if !strings.HasPrefix(s, "demo.chv: line 3, column 7: ") {
		t.Errorf("wrong prefix: %q", s)
	}
	if !strings.Contains(s, "unexpected token '}'") {
		t.Errorf("missing message: %q", s)
	}
}

func TestWithFileAndPositionDoNotMutate(t *testing.T) {
	base := New("REWRITE-0001", map[string]any{"Got": "int"})

	withFile := base.WithFile("a.chv")
	withPos := base.WithPosition(9, 1)

	if base.File != "" || base.Line != 0 {
		t.Errorf("base error was mutated: %+v", base)
	}
	if withFile.File != "a.chv" {
		t.Errorf("WithFile lost the file: %+v", withFile)
	}
	if withPos.Line != 9 {
		t.Errorf("WithPosition lost the line: %+v", withPos)
	}
}

func TestCatalogCodesMatchClasses(t *testing.T) {
	for code, def := range ErrorCatalog {
		prefix := strings.SplitN(code, "-", 2)[0]
		switch prefix {
		case "PARSE":
			if def.Class != ClassParse {
				t.Errorf("%s has class %q", code, def.Class)
			}
		case "REWRITE":
			if def.Class != ClassRewrite {
				t.Errorf("%s has class %q", code, def.Class)
			}
		case "TYPE":
			if def.Class != ClassType {
				t.Errorf("%s has class %q", code, def.Class)
			}
		}
	}
}
