package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sambeau/chervil/pkg/chervil/config"
	"github.com/sambeau/chervil/pkg/chervil/errors"
	"github.com/sambeau/chervil/pkg/chervil/evaluator"
	"github.com/sambeau/chervil/pkg/chervil/lexer"
	"github.com/sambeau/chervil/pkg/chervil/parser"
	"github.com/sambeau/chervil/pkg/chervil/repl"

	// Import rewrite for init() to register the optimize builtin
	_ "github.com/sambeau/chervil/pkg/chervil/rewrite"
)

// Version is set at compile time via -ldflags
var Version = "0.3.1"

var (
	// Display flags
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")

	// Evaluation flags
	evalFlag     = flag.String("e", "", "Evaluate code string")
	evalLongFlag = flag.String("eval", "", "Evaluate code string")
	checkFlag    = flag.Bool("check", false, "Check syntax without executing")
	watchFlag    = flag.Bool("watch", false, "Re-run the file whenever it changes")

	// Config flags
	configFlag     = flag.String("c", "", "Path to config file")
	configLongFlag = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Usage = printHelp
	flag.Parse()

	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(0)
	}

	if *versionFlag || *versionLongFlag {
		fmt.Printf("chervil version %s\n", Version)
		os.Exit(0)
	}

	configPath := *configFlag
	if configPath == "" {
		configPath = *configLongFlag
	}

	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	evalCode := *evalFlag
	if evalCode == "" {
		evalCode = *evalLongFlag
	}

	switch {
	case evalCode != "":
		executeInline(evalCode, cfg)
	case *checkFlag:
		files := flag.Args()
		if len(files) == 0 {
			fmt.Fprintln(os.Stderr, "Error: --check requires at least one file")
			os.Exit(2)
		}
		os.Exit(checkFiles(files))
	case *watchFlag:
		files := flag.Args()
		if len(files) != 1 {
			fmt.Fprintln(os.Stderr, "Error: --watch requires exactly one file")
			os.Exit(2)
		}
		watchFile(files[0], cfg)
	case len(flag.Args()) > 0:
		filename := flag.Args()[0]
		if !executeFile(filename, cfg) {
			os.Exit(1)
		}
	default:
		repl.Start(os.Stdin, os.Stdout, Version, cfg)
	}
}

func printHelp() {
	fmt.Printf(`chervil - Chervil language interpreter version %s

Usage:
  chervil [options] [file]
  chervil -e "code"
  chervil --check <file>...
  chervil --watch <file>

Display Options:
  -h, --help            Show this help message
  -V, --version         Show version information

Evaluation Options:
  -e, --eval <code>     Evaluate code string
  --check               Check syntax without executing (can specify multiple files)
  --watch               Re-run a file whenever it changes on disk

Config Options:
  -c, --config <path>   Config file (default: chervil.yaml, ~/.config/chervil/chervil.yaml)

Examples:
  chervil                   Start interactive REPL
  chervil script.chv        Execute a Chervil script
  chervil -e "1 + 2"        Evaluate inline code (outputs: 3)
  chervil --check *.chv     Check multiple files
  chervil --watch demo.chv  Re-run on every save
`, Version)
}

// newEnvironment builds the toplevel environment with trace output
// routed per config.
func newEnvironment(cfg *config.Config) (*evaluator.Environment, func(), error) {
	env := evaluator.NewEnvironment()
	cleanup := func() {}

	if !cfg.Trace.Enabled {
		env.Logger = evaluator.WriterLogger(io.Discard)
		return env, cleanup, nil
	}

	switch cfg.Trace.Output {
	case "", "stdout":
		env.Logger = evaluator.DefaultLogger
	case "stderr":
		env.Logger = evaluator.WriterLogger(os.Stderr)
	default:
		f, err := os.OpenFile(cfg.Trace.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open trace output: %w", err)
		}
		env.Logger = evaluator.WriterLogger(f)
		cleanup = func() { f.Close() }
	}

	return env, cleanup, nil
}

// executeInline evaluates inline code provided via -e flag
func executeInline(code string, cfg *config.Config) {
	l := lexer.NewWithFilename(code, "<eval>")
	p := parser.New(l)
	program := p.ParseProgram()

	if errs := p.StructuredErrors(); len(errs) != 0 {
		printStructuredErrors(code, errs)
		os.Exit(1)
	}

	env, cleanup, err := newEnvironment(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()
	env.Filename = "<eval>"
	env.Source = code + "\n"

	evaluated := evaluator.Eval(program, env)
	if evaluated == nil {
		return
	}

	if errObj, ok := evaluated.(*evaluator.Error); ok {
		printRuntimeError("<eval>", code, errObj)
		os.Exit(1)
	}

	if evaluated.Type() != evaluator.NULL_OBJ {
		fmt.Println(evaluated.Inspect())
	}
}

// checkFiles checks the syntax of one or more files without executing them
func checkFiles(files []string) int {
	hasErrors := false

	for _, filename := range files {
		content, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", filename, err)
			return 2
		}

		l := lexer.NewWithFilename(string(content), filename)
		p := parser.New(l)
		_ = p.ParseProgram()

		if errs := p.StructuredErrors(); len(errs) != 0 {
			printStructuredErrors(string(content), errs)
			hasErrors = true
		}
	}

	if hasErrors {
		return 1
	}
	return 0
}

// executeFile reads and executes a chervil source file.
// Returns false if parsing or evaluation failed.
func executeFile(filename string, cfg *config.Config) bool {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file '%s': %v\n", filename, err)
		return false
	}

	l := lexer.NewWithFilename(string(content), filename)
	p := parser.New(l)
	program := p.ParseProgram()

	if errs := p.StructuredErrors(); len(errs) != 0 {
		printStructuredErrors(string(content), errs)
		return false
	}

	env, cleanup, err := newEnvironment(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	defer cleanup()
	env.Filename = filename
	env.Source = string(content)

	evaluated := evaluator.Eval(program, env)
	if errObj, ok := evaluated.(*evaluator.Error); ok {
		printRuntimeError(filename, string(content), errObj)
		return false
	}

	return true
}

// printStructuredErrors prints parser errors with source context
func printStructuredErrors(source string, errs []*errors.ChervilError) {
	lines := strings.Split(source, "\n")

	for _, err := range errs {
		fmt.Fprintln(os.Stderr, err.String())
		printSourceContext(lines, err.Line, err.Column)
	}
}

// printRuntimeError prints a runtime error with source context
func printRuntimeError(filename string, source string, err *evaluator.Error) {
	displayFile := filename
	displaySource := source
	if err.File != "" && err.File != filename {
		displayFile = err.File
		if content, readErr := os.ReadFile(err.File); readErr == nil {
			displaySource = string(content)
		}
	}
	lines := strings.Split(displaySource, "\n")

	fmt.Fprint(os.Stderr, "Runtime error")
	if err.Line > 0 {
		fmt.Fprintf(os.Stderr, " in %s: line %d, column %d\n", displayFile, err.Line, err.Column)
	} else if displayFile != "" {
		fmt.Fprintf(os.Stderr, " in %s\n", displayFile)
	} else {
		fmt.Fprintln(os.Stderr)
	}
	fmt.Fprintf(os.Stderr, "  %s\n", err.Message)

	if err.Line > 0 {
		printSourceContext(lines, err.Line, err.Column)
	}
}

// printSourceContext prints the source line and error pointer
func printSourceContext(lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}

	sourceLine := lines[lineNum-1]

	trimCount := 0
	for i := 0; i < len(sourceLine); i++ {
		if sourceLine[i] == ' ' || sourceLine[i] == '\t' {
			if sourceLine[i] == '\t' {
				trimCount += 8
			} else {
				trimCount++
			}
		} else {
			break
		}
	}

	trimmedLine := strings.TrimLeft(sourceLine, " \t")
	fmt.Fprintf(os.Stderr, "    %s\n", trimmedLine)

	if colNum > 0 {
		visualCol := 0
		for i := 0; i < colNum-1 && i < len(sourceLine); i++ {
			if sourceLine[i] == '\t' {
				visualCol += 8
			} else {
				visualCol++
			}
		}
		pointerCol := visualCol - trimCount
		if pointerCol >= 0 {
			fmt.Fprintf(os.Stderr, "    %s^\n", strings.Repeat(" ", pointerCol))
		}
	}
}
