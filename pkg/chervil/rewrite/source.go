package rewrite

import (
	"fmt"
	"strings"

	cerrors "github.com/sambeau/chervil/pkg/chervil/errors"
	"github.com/sambeau/chervil/pkg/chervil/evaluator"
)

// UnknownFile is the file identity reported for source that did not
// come from a file, e.g. a raw string handed to the engine.
const UnknownFile = "<unknown>"

// Source extracts normalized source text from a rewrite input: either
// a function object, whose recorded definition source is recovered, or
// a raw source string. It returns the dedented text, the originating
// file, and the 1-based line the text starts on.
func Source(v any) (text, file string, line int, err error) {
	switch v := v.(type) {
	case *evaluator.Function:
		if v.Source == "" {
			return "", "", 0, cerrors.New("REWRITE-0001",
				map[string]any{"Got": "a function without recorded source"})
		}
		file = v.File
		if file == "" {
			file = UnknownFile
		}
		line = v.Line
		if line < 1 {
			line = 1
		}
		return Dedent(v.Source), file, line, nil

	case string:
		return Dedent(v), UnknownFile, 1, nil
	}

	return "", "", 0, cerrors.New("REWRITE-0001",
		map[string]any{"Got": fmt.Sprintf("%T", v)})
}

// Dedent strips the longest common leading whitespace from every
// non-blank line, so a definition captured from inside a nested block
// parses as if written at the top level. Blank lines are ignored when
// computing the margin and preserved in the output.
func Dedent(text string) string {
	lines := strings.Split(text, "\n")

	margin := ""
	first := true
	for _, line := range lines {
		stripped := strings.TrimLeft(line, " \t")
		if stripped == "" {
			continue
		}
		indent := line[:len(line)-len(stripped)]
		if first {
			margin = indent
			first = false
			continue
		}
		margin = commonPrefix(margin, indent)
	}

	if margin == "" {
		return text
	}
	for i, line := range lines {
		if strings.TrimLeft(line, " \t") == "" {
			continue
		}
		lines[i] = strings.TrimPrefix(line, margin)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for i := 0; i < max; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:max]
}
