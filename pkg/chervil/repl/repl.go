package repl

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/sambeau/chervil/pkg/chervil/ast"
	"github.com/sambeau/chervil/pkg/chervil/config"
	"github.com/sambeau/chervil/pkg/chervil/errors"
	"github.com/sambeau/chervil/pkg/chervil/evaluator"
	"github.com/sambeau/chervil/pkg/chervil/lexer"
	"github.com/sambeau/chervil/pkg/chervil/parser"
	_ "github.com/sambeau/chervil/pkg/chervil/rewrite" // registers the optimize builtin
)

const PROMPT = ">> "
const CONTINUATION_PROMPT = ".. "

const CHERVIL_LOGO = `
█▀▀ █░█ █▀▀ █▀█ █░█ █ █░░
█▄▄ █▀█ ██▄ █▀▄ ▀▄▀ █ █▄▄ `

// Chervil keywords for tab completion. Builtin names are added at
// startup from the evaluator's registry.
var keywordCompletions = []string{
	"let", "if", "else", "for", "in", "fn", "return",
	"and", "or", "true", "false", "null",
}

// Start starts the REPL with line editing, history, and tab
// completion. Prompt, history file, and history size come from cfg's
// repl section.
func Start(in io.Reader, out io.Writer, version string, cfg *config.Config) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	prompt := replPrompt(cfg)

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	completionWords := append([]string{}, keywordCompletions...)
	completionWords = append(completionWords, evaluator.BuiltinNames()...)
	sort.Strings(completionWords)

	line.SetCompleter(func(line string) []string {
		return filterCompletions(line, completionWords)
	})

	historyFile := resolveHistoryFile(cfg.REPL.HistoryFile)
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	defer saveHistory(line, historyFile, cfg.REPL.HistorySize)

	env := evaluator.NewEnvironment()
	env.Logger = evaluator.WriterLogger(out)
	env.Filename = "<repl>"

	fmt.Fprintf(out, "%s", CHERVIL_LOGO)
	fmt.Fprintln(out, "v", version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder

	for {
		currentPrompt := prompt
		if inputBuffer.Len() > 0 {
			currentPrompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 && (trimmed == "exit" || trimmed == "quit") {
			fmt.Fprintln(out, "Goodbye!")
			return
		}

		if inputBuffer.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			handleReplCommand(trimmed, env, out)
			continue
		}

		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			continue
		}

		if trimmed != "" {
			line.AppendHistory(fullInput)
		}

		// Definitions entered at the prompt need to be sliceable later
		// for source extraction, so the session transcript accumulates
		// in env.Source with one line per prompt submission.
		startLine := strings.Count(env.Source, "\n") + 1

		l := lexer.NewWithFilename(fullInput, "<repl>")
		p := parser.New(l)
		program := p.ParseProgram()

		if errs := p.StructuredErrors(); len(errs) != 0 {
			printStructuredErrors(out, errs)
			inputBuffer.Reset()
			continue
		}

		shiftProgram(program, startLine-1)
		env.Source += fullInput + "\n"

		evaluated := evaluator.Eval(program, env)
		if evaluated != nil {
			if errObj, ok := evaluated.(*evaluator.Error); ok {
				printRuntimeError(out, errObj)
			} else if evaluated.Type() == evaluator.NULL_OBJ {
				io.WriteString(out, "OK\n")
			} else {
				io.WriteString(out, evaluated.Inspect())
				io.WriteString(out, "\n")
			}
		}

		inputBuffer.Reset()
	}
}

// shiftProgram moves every statement's recorded position down by delta
// lines so positions match the session transcript.
func shiftProgram(program *ast.Program, delta int) {
	if delta == 0 {
		return
	}
	for _, stmt := range program.Statements {
		ast.ShiftLines(stmt, delta)
	}
}

// replPrompt returns the configured prompt, or the stock one when the
// config leaves it empty.
func replPrompt(cfg *config.Config) string {
	if cfg.REPL.Prompt != "" {
		return cfg.REPL.Prompt
	}
	return PROMPT
}

// resolveHistoryFile expands a leading ~ in the configured history
// path. An empty path falls back to a file in the temp directory.
func resolveHistoryFile(path string) string {
	if path == "" {
		return filepath.Join(os.TempDir(), ".chervil_history")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), ".chervil_history")
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// saveHistory writes the session history to path, keeping at most
// limit entries when limit is positive.
func saveHistory(line *liner.State, path string, limit int) {
	var buf bytes.Buffer
	if _, err := line.WriteHistory(&buf); err != nil {
		return
	}
	if f, err := os.Create(path); err == nil {
		f.Write(trimHistory(buf.Bytes(), limit))
		f.Close()
	}
}

// trimHistory keeps the last limit entries of a history file's
// contents. A non-positive limit keeps everything.
func trimHistory(data []byte, limit int) []byte {
	if limit <= 0 {
		return data
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) <= limit {
		return data
	}
	lines = lines[len(lines)-limit:]
	return []byte(strings.Join(lines, "\n") + "\n")
}

// handleReplCommand handles REPL meta-commands that start with ':'.
func handleReplCommand(cmd string, env *evaluator.Environment, out io.Writer) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(out, "REPL Commands:")
		fmt.Fprintln(out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(out, "  :env            Show variables in scope")
		fmt.Fprintln(out, "  :clear          Clear all user variables")
		fmt.Fprintln(out, "  exit, quit      Exit the REPL")

	case ":env":
		printEnvironment(env, out)

	case ":clear":
		fresh := evaluator.NewEnvironment()
		fresh.Logger = env.Logger
		fresh.Filename = env.Filename
		*env = *fresh
		fmt.Fprintln(out, "Environment cleared")

	default:
		fmt.Fprintf(out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// printEnvironment displays all user-defined variables in the environment.
func printEnvironment(env *evaluator.Environment, out io.Writer) {
	names := env.Bindings()
	if len(names) == 0 {
		fmt.Fprintln(out, "(no user variables)")
		return
	}
	sort.Strings(names)

	for _, name := range names {
		obj, ok := env.Get(name)
		if !ok {
			continue
		}
		value := obj.Inspect()

		if strings.Contains(value, "\n") {
			lines := strings.Split(value, "\n")
			for i := 1; i < len(lines); i++ {
				lines[i] = "  " + lines[i]
			}
			value = strings.Join(lines, "\n")
		} else if len(value) > 60 {
			value = value[:57] + "..."
		}

		fmt.Fprintf(out, "  %s: %s = %s\n", name, obj.Type(), value)
	}
}

// filterCompletions returns completion suggestions based on current input.
func filterCompletions(line string, words []string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	if len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
		return nil
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	lastWord := fields[len(fields)-1]

	var matches []string
	for _, word := range words {
		if strings.HasPrefix(word, lastWord) {
			matches = append(matches, word)
		}
	}
	return matches
}

// needsMoreInput checks if the input has unclosed braces, brackets, or parentheses.
func needsMoreInput(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	braceCount := 0
	bracketCount := 0
	parenCount := 0
	inString := false
	escapeNext := false

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if escapeNext {
			escapeNext = false
			continue
		}

		if ch == '\\' {
			escapeNext = true
			continue
		}

		if ch == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		switch ch {
		case '{':
			braceCount++
		case '}':
			braceCount--
		case '[':
			bracketCount++
		case ']':
			bracketCount--
		case '(':
			parenCount++
		case ')':
			parenCount--
		}
	}

	return braceCount > 0 || bracketCount > 0 || parenCount > 0
}

// printStructuredErrors prints parser errors using structured error format.
func printStructuredErrors(out io.Writer, errs []*errors.ChervilError) {
	for _, err := range errs {
		io.WriteString(out, err.String())
		io.WriteString(out, "\n")
	}
}

// printRuntimeError prints a runtime error with structured formatting.
func printRuntimeError(out io.Writer, err *evaluator.Error) {
	io.WriteString(out, "Runtime error")

	if err.Line > 0 {
		fmt.Fprintf(out, ": line %d, column %d\n  %s\n", err.Line, err.Column, err.Message)
	} else {
		io.WriteString(out, "\n  "+err.Message+"\n")
	}
}
