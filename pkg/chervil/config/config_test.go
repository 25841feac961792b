package config

import (
	"os"
	"path/filepath"
	"testing"
)

func noEnv(string) string { return "" }

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.REPL.Prompt != ">> " {
		t.Errorf("wrong default prompt: %q", cfg.REPL.Prompt)
	}
	if !cfg.Trace.Enabled || cfg.Trace.Output != "stdout" {
		t.Errorf("wrong trace defaults: %+v", cfg.Trace)
	}
	if cfg.Watch.DebounceMS != 100 {
		t.Errorf("wrong debounce default: %d", cfg.Watch.DebounceMS)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	data := []byte(`
repl:
  prompt: "chv> "
trace:
  output: stderr
watch:
  debounce_ms: 250
`)
	cfg, err := Parse(data, "/tmp", noEnv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.REPL.Prompt != "chv> " {
		t.Errorf("prompt not overridden: %q", cfg.REPL.Prompt)
	}
	if cfg.Trace.Output != "stderr" {
		t.Errorf("trace output not overridden: %q", cfg.Trace.Output)
	}
	if cfg.Watch.DebounceMS != 250 {
		t.Errorf("debounce not overridden: %d", cfg.Watch.DebounceMS)
	}
	if cfg.REPL.HistorySize != 1000 {
		t.Errorf("unset field should keep its default: %d", cfg.REPL.HistorySize)
	}
}

func TestParseInterpolatesEnv(t *testing.T) {
	data := []byte("trace:\n  output: ${TRACE_OUT}\n")
	getenv := func(name string) string {
		if name == "TRACE_OUT" {
			return "stderr"
		}
		return ""
	}

	cfg, err := Parse(data, "/tmp", getenv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Trace.Output != "stderr" {
		t.Errorf("env not interpolated: %q", cfg.Trace.Output)
	}
}

func TestParseEnvDefault(t *testing.T) {
	data := []byte("repl:\n  prompt: \"${CHV_PROMPT:->> }\"\n")

	cfg, err := Parse(data, "/tmp", noEnv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.REPL.Prompt != ">> " {
		t.Errorf("default value not applied: %q", cfg.REPL.Prompt)
	}
}

func TestParseResolvesRelativeTraceFile(t *testing.T) {
	data := []byte("trace:\n  output: traces.log\n")

	cfg, err := Parse(data, "/srv/app", noEnv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join("/srv/app", "traces.log")
	if cfg.Trace.Output != want {
		t.Errorf("relative path not resolved. want=%q got=%q", want, cfg.Trace.Output)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	if _, err := Parse([]byte("watch:\n  debounce_ms: -1\n"), "/tmp", noEnv); err == nil {
		t.Errorf("expected an error for negative debounce")
	}
	if _, err := Parse([]byte("repl:\n  history_size: -5\n"), "/tmp", noEnv); err == nil {
		t.Errorf("expected an error for negative history size")
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(oldWd)

	cfg, err := Load("", noEnv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.REPL.Prompt != ">> " {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadExplicitMissingFileErrors(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml", noEnv); err == nil {
		t.Errorf("expected an error for a missing explicit config")
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chervil.yaml")
	if err := os.WriteFile(path, []byte("repl:\n  prompt: \"$ \"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, noEnv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.REPL.Prompt != "$ " {
		t.Errorf("prompt wrong: %q", cfg.REPL.Prompt)
	}
	if cfg.BaseDir != dir {
		t.Errorf("BaseDir wrong. want=%q got=%q", dir, cfg.BaseDir)
	}
}
