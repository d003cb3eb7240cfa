package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdmath/internal/config"
)

// envPrefix starts every environment variable the CLI reads.
const envPrefix = "MDMATH_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MDMATH_CONFIG: config file name or path
	Style      string        // MDMATH_STYLE: style name or CSS path
	Highlight  string        // MDMATH_HIGHLIGHT: code highlighting style
	Timeout    time.Duration // MDMATH_TIMEOUT: PDF page load timeout
	InputDir   string        // MDMATH_INPUT_DIR: default input directory
	OutputDir  string        // MDMATH_OUTPUT_DIR: default output directory
	Workers    int           // MDMATH_WORKERS: parallel workers
	Addr       string        // MDMATH_ADDR: serve listen address
	CacheSize  int64         // MDMATH_CACHE_SIZE: typeset cache entries
}

// knownEnvVars lists valid MDMATH_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDMATH_CONFIG":     true,
	"MDMATH_STYLE":      true,
	"MDMATH_HIGHLIGHT":  true,
	"MDMATH_TIMEOUT":    true,
	"MDMATH_INPUT_DIR":  true,
	"MDMATH_OUTPUT_DIR": true,
	"MDMATH_WORKERS":    true,
	"MDMATH_ADDR":       true,
	"MDMATH_CACHE_SIZE": true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("MDMATH_CONFIG"),
		Style:      getenv("MDMATH_STYLE"),
		Highlight:  getenv("MDMATH_HIGHLIGHT"),
		InputDir:   getenv("MDMATH_INPUT_DIR"),
		OutputDir:  getenv("MDMATH_OUTPUT_DIR"),
		Addr:       getenv("MDMATH_ADDR"),
	}

	if timeout := getenv("MDMATH_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := getenv("MDMATH_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	if size := getenv("MDMATH_CACHE_SIZE"); size != "" {
		if n, err := strconv.ParseInt(size, 10, 64); err == nil && n > 0 {
			cfg.CacheSize = n
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MDMATH_* variables.
// Helps catch typos like MDMATH_STYEL.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment values over the config file.
// CLI flags are merged afterwards, so the order is:
// CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Style != "" {
		cfg.CSS.Style = env.Style
	}
	if env.Highlight != "" {
		cfg.CSS.Highlight = env.Highlight
	}
	if env.InputDir != "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Timeout > 0 {
		cfg.PDF.Timeout = env.Timeout
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.CacheSize > 0 {
		cfg.Math.CacheSize = env.CacheSize
	}
}

// resolveWorkers picks the worker count: flag, then environment, then auto (0).
func resolveWorkers(flagWorkers int, env *envConfig) int {
	if flagWorkers > 0 {
		return flagWorkers
	}
	return env.Workers
}

// loadConfig loads the config named by the flag or MDMATH_CONFIG, or the
// default config file when present, then applies environment overrides.
func loadConfig(flagConfig string, env *envConfig) (*config.Config, error) {
	name := flagConfig
	if name == "" {
		name = env.ConfigPath
	}

	var (
		cfg *config.Config
		err error
	)
	if name != "" {
		cfg, err = config.LoadConfig(name)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	applyEnvConfig(env, cfg)
	return cfg, nil
}
