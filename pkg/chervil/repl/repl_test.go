package repl

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sambeau/chervil/pkg/chervil/config"
)

func TestReplPromptUsesConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.REPL.Prompt = "chv> "
	if got := replPrompt(cfg); got != "chv> " {
		t.Errorf("replPrompt() = %q, want %q", got, "chv> ")
	}

	cfg.REPL.Prompt = ""
	if got := replPrompt(cfg); got != PROMPT {
		t.Errorf("replPrompt() with empty prompt = %q, want %q", got, PROMPT)
	}
}

func TestResolveHistoryFile(t *testing.T) {
	if got := resolveHistoryFile("/var/tmp/hist"); got != "/var/tmp/hist" {
		t.Errorf("absolute path changed: %q", got)
	}

	want := filepath.Join(os.TempDir(), ".chervil_history")
	if got := resolveHistoryFile(""); got != want {
		t.Errorf("empty path = %q, want %q", got, want)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if got := resolveHistoryFile("~/.chervil_history"); got != filepath.Join(home, ".chervil_history") {
		t.Errorf("~ not expanded: %q", got)
	}
}

func TestTrimHistory(t *testing.T) {
	data := []byte("one\ntwo\nthree\n")

	if got := string(trimHistory(data, 2)); got != "two\nthree\n" {
		t.Errorf("trimHistory(2) = %q, want %q", got, "two\nthree\n")
	}
	if got := string(trimHistory(data, 0)); got != string(data) {
		t.Errorf("trimHistory(0) = %q, want input unchanged", got)
	}
	if got := string(trimHistory(data, 10)); got != string(data) {
		t.Errorf("trimHistory(10) = %q, want input unchanged", got)
	}
	if got := string(trimHistory(nil, 2)); got != "" {
		t.Errorf("trimHistory(nil) = %q, want empty", got)
	}
}

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"let x = 1", false},
		{"fn add(a, b) {", true},
		{"fn add(a, b) {\n\treturn a + b\n}", false},
		{"let xs = [1, 2,", true},
		{"print(", true},
		{`let s = "{"`, false},
		{`let s = "\"{"`, false},
		{"", false},
	}

	for _, tt := range tests {
		if got := needsMoreInput(tt.input); got != tt.want {
			t.Errorf("needsMoreInput(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFilterCompletions(t *testing.T) {
	words := []string{"fn", "for", "len", "let", "print"}

	if got := filterCompletions("le", words); !reflect.DeepEqual(got, []string{"len", "let"}) {
		t.Errorf("filterCompletions(le) = %v", got)
	}
	if got := filterCompletions("let f", words); !reflect.DeepEqual(got, []string{"fn", "for"}) {
		t.Errorf("filterCompletions(let f) = %v", got)
	}
	if got := filterCompletions("let ", words); got != nil {
		t.Errorf("trailing space should not complete, got %v", got)
	}
	if got := filterCompletions(strings.Repeat(" ", 3), words); got != nil {
		t.Errorf("blank line should not complete, got %v", got)
	}
}
