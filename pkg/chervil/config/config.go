// Package config loads chervil settings from a YAML file with
// environment variable interpolation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config holds the settings for the chervil CLI and REPL.
type Config struct {
	REPL  REPLConfig  `yaml:"repl"`
	Trace TraceConfig `yaml:"trace"`
	Watch WatchConfig `yaml:"watch"`

	// BaseDir is the directory containing the config file,
	// used to resolve relative paths. Not set from YAML.
	BaseDir string `yaml:"-"`
}

// REPLConfig controls the interactive prompt.
type REPLConfig struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`
	HistorySize int    `yaml:"history_size"`
}

// TraceConfig controls where rewrite traces and print output go.
type TraceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Output  string `yaml:"output"` // "stdout", "stderr", or a file path
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt:      ">> ",
			HistoryFile: "~/.chervil_history",
			HistorySize: 1000,
		},
		Trace: TraceConfig{
			Enabled: true,
			Output:  "stdout",
		},
		Watch: WatchConfig{
			DebounceMS: 100,
		},
	}
}

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations. If no
// config file exists anywhere, Defaults() is returned.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Defaults(), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data, filepath.Dir(absPath), getenv)
}

// Parse unmarshals config data over the defaults.
func Parse(data []byte, baseDir string, getenv func(string) string) (*Config, error) {
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.BaseDir = baseDir

	if cfg.Trace.Output != "stdout" && cfg.Trace.Output != "stderr" &&
		cfg.Trace.Output != "" && !filepath.IsAbs(cfg.Trace.Output) {
		cfg.Trace.Output = filepath.Join(baseDir, cfg.Trace.Output)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > CHERVIL_CONFIG env > ./chervil.yaml > ~/.config/chervil/chervil.yaml
// Returns "" when nothing is found and no explicit path was given.
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("CHERVIL_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("config file not found: %s (from CHERVIL_CONFIG)", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("chervil.yaml"); err == nil {
		return "chervil.yaml", nil
	}

	if home := getenv("HOME"); home != "" {
		candidate := filepath.Join(home, ".config", "chervil", "chervil.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

func validate(cfg *Config) error {
	if cfg.REPL.HistorySize < 0 {
		return fmt.Errorf("invalid history_size: %d", cfg.REPL.HistorySize)
	}
	if cfg.Watch.DebounceMS < 0 {
		return fmt.Errorf("invalid debounce_ms: %d", cfg.Watch.DebounceMS)
	}
	return nil
}
