// Package errors provides structured error types for the Chervil language.
//
// It defines ChervilError, a unified error type used for parser errors,
// runtime errors, and failures of the rewrite engine, with enough
// metadata for display and programmatic handling.
package errors

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassParse     ErrorClass = "parse"     // Parser/syntax errors
	ClassType      ErrorClass = "type"      // Type mismatches
	ClassArity     ErrorClass = "arity"     // Wrong argument count
	ClassUndefined ErrorClass = "undefined" // Not found/defined
	ClassOperator  ErrorClass = "operator"  // Invalid operations
	ClassIndex     ErrorClass = "index"     // Out of bounds
	ClassState     ErrorClass = "state"     // Invalid state
	ClassRewrite   ErrorClass = "rewrite"   // AST rewrite engine failures
)

// ChervilError represents any error from parsing, evaluation, or rewriting.
type ChervilError struct {
	Class   ErrorClass // Error category
	Code    string     // Error code (e.g., "REWRITE-0002")
	Message string     // Human-readable message
	Hints   []string   // Suggestions for fixing
	Line    int        // 1-based line (0 if unknown)
	Column  int        // 1-based column (0 if unknown)
	File    string     // File path (if known)
}

// Error implements the error interface.
func (e *ChervilError) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *ChervilError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}
	sb.WriteString(e.Message)
	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}
	return sb.String()
}

// WithFile returns a copy of the error with the file path set.
func (e *ChervilError) WithFile(file string) *ChervilError {
	clone := *e
	clone.File = file
	return &clone
}

// WithPosition returns a copy of the error with line and column set.
func (e *ChervilError) WithPosition(line, column int) *ChervilError {
	clone := *e
	clone.Line = line
	clone.Column = column
	return &clone
}

// IsParseError returns true if this is a parser error.
func (e *ChervilError) IsParseError() bool {
	return e.Class == ClassParse
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Parse errors (PARSE-0xxx)
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unexpected token '{{.Token}}'",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "decorators may only precede a named function definition",
		Hints:    []string{"@{{.Decorator}}\nfn name(args) { ... }"},
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "invalid number literal: {{.Literal}}",
	},

	// Type errors (TYPE-0xxx)
	"TYPE-0001": {
		Class:    ClassType,
		Template: "{{.Function}} expected {{.Expected}}, got {{.Got}}",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "cannot call {{.Got}} as a function",
	},
	"TYPE-0003": {
		Class:    ClassType,
		Template: "cannot iterate over {{.Got}}",
		Hints:    []string{"for works with arrays and strings"},
	},
	"TYPE-0004": {
		Class:    ClassType,
		Template: "cannot index {{.Got}} with {{.IndexType}}",
	},

	// Rewrite engine errors (REWRITE-0xxx)
	"REWRITE-0001": {
		Class:    ClassRewrite,
		Template: "cannot extract source from {{.Got}}: expected a function or source text",
	},
	"REWRITE-0002": {
		Class:    ClassRewrite,
		Template: "expected exactly one function definition, got {{.Got}}",
	},
	"REWRITE-0003": {
		Class:    ClassRewrite,
		Template: "no decorator named '{{.Name}}' found on {{.Function}}",
		Hints:    []string{"the rewrite entry point must appear in the decorator list"},
	},
	"REWRITE-0004": {
		Class:    ClassRewrite,
		Template: "rebuilt definition produced {{.Got}} bindings, expected exactly one",
	},
}

// New creates a ChervilError from the catalog.
func New(code string, data map[string]any) *ChervilError {
	def, ok := ErrorCatalog[code]
	if !ok {
		// Unknown code - create a generic error
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &ChervilError{
			Class:   ClassType,
			Code:    code,
			Message: msg,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &ChervilError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
	}
}

// NewWithPosition creates a ChervilError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *ChervilError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates a simple error without using the catalog.
func NewSimple(class ErrorClass, message string) *ChervilError {
	return &ChervilError{
		Class:   class,
		Message: message,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}
	tmpl, err := template.New("error").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}
	return buf.String()
}
