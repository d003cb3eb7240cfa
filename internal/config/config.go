// Package config loads and validates the YAML configuration of the mdmath CLI
// and render server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-mdmath/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// DefaultName is the config name looked up when none is given.
const DefaultName = "mdmath"

// Field limits.
const (
	MaxPathLength      = 4096
	MaxStyleLength     = 100
	MaxTitleLength     = 200
	MaxAddrLength      = 100
	MaxMacros          = 256
	MaxMacroNameLength = 64
	MaxMacroBodyLength = 1000
	MaxCacheSize       = 1_000_000
	MaxBodyBytesLimit  = 64 << 20
)

// Server defaults.
const (
	DefaultAddr          = "127.0.0.1:8080"
	DefaultMaxBodyBytes  = 1 << 20
	DefaultRenderTimeout = 10 * time.Second
)

// recognizerNames are the values accepted by math.recognizers.
var recognizerNames = []string{"blockMath", "displayMath", "inlineMath"}

// Accepted PDF page values; empty means the converter default.
var (
	pageSizes    = []string{"", "letter", "a4", "legal"}
	orientations = []string{"", "portrait", "landscape"}
)

// Margin bounds in inches; 0 means the converter default.
const (
	minMargin = 0.25
	maxMargin = 3.0
)

// Config holds all configuration for document rendering.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	CSS      CSSConfig      `yaml:"css"`
	Assets   AssetsConfig   `yaml:"assets"`
	Math     MathConfig     `yaml:"math"`
	Document DocumentConfig `yaml:"document"`
	PDF      PDFConfig      `yaml:"pdf"`
	Server   ServerConfig   `yaml:"server"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = next to the source
}

// CSSConfig defines styling options.
type CSSConfig struct {
	Style     string `yaml:"style"`     // Built-in style name, CSS file path, or "none"
	Highlight string `yaml:"highlight"` // Chroma style for code blocks
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Directory holding styles/{name}.css; empty = embedded only
}

// MathConfig defines math typesetting options.
type MathConfig struct {
	Macros      map[string]string `yaml:"macros"`      // \name -> replacement TeX
	Numbering   bool              `yaml:"numbering"`   // Number display equations
	CacheSize   int64             `yaml:"cacheSize"`   // Typeset cache entries; 0 = default
	Recognizers []string          `yaml:"recognizers"` // Priority order; empty = all, default order
}

// DocumentConfig defines output document options.
type DocumentConfig struct {
	Title     string `yaml:"title"`     // <title> of standalone documents; empty = first heading or file name
	Fragment  bool   `yaml:"fragment"`  // Emit an HTML fragment instead of a full document
	HardWraps bool   `yaml:"hardWraps"` // Render single newlines as <br>
}

// PDFConfig defines PDF export options.
type PDFConfig struct {
	Enabled bool          `yaml:"enabled"` // Write a PDF instead of HTML
	Timeout time.Duration `yaml:"timeout"` // Page load timeout; 0 = default
	Page    PageConfig    `yaml:"page"`
}

// PageConfig defines PDF page layout.
type PageConfig struct {
	Size        string  `yaml:"size"`        // letter, a4, legal
	Orientation string  `yaml:"orientation"` // portrait, landscape
	Margin      float64 `yaml:"margin"`      // inches
}

// ServerConfig defines the HTTP render service options.
type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	MaxBodyBytes  int64         `yaml:"maxBodyBytes"`
	RenderTimeout time.Duration `yaml:"renderTimeout"`
}

// Validate checks field lengths and ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("input.defaultDir", c.Input.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}

	if err := validateFieldLength("css.style", c.CSS.Style, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("css.highlight", c.CSS.Highlight, MaxStyleLength); err != nil {
		return err
	}

	if err := c.Math.validate(); err != nil {
		return err
	}

	if err := validateFieldLength("document.title", c.Document.Title, MaxTitleLength); err != nil {
		return err
	}

	if err := c.PDF.validate(); err != nil {
		return err
	}

	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.Server.MaxBodyBytes < 0 || c.Server.MaxBodyBytes > MaxBodyBytesLimit {
		return fmt.Errorf("%w: server.maxBodyBytes must be between 0 and %d, got %d", ErrInvalidValue, MaxBodyBytesLimit, c.Server.MaxBodyBytes)
	}
	if c.Server.RenderTimeout < 0 {
		return fmt.Errorf("%w: server.renderTimeout must not be negative, got %s", ErrInvalidValue, c.Server.RenderTimeout)
	}

	return nil
}

func (m *MathConfig) validate() error {
	if len(m.Macros) > MaxMacros {
		return fmt.Errorf("%w: math.macros has %d entries (max %d)", ErrInvalidValue, len(m.Macros), MaxMacros)
	}
	for name, body := range m.Macros {
		if name == "" || strings.ContainsAny(name, " \t\n{}") {
			return fmt.Errorf("%w: math.macros: invalid macro name %q", ErrInvalidValue, name)
		}
		if err := validateFieldLength("math.macros."+name, name, MaxMacroNameLength); err != nil {
			return err
		}
		if err := validateFieldLength("math.macros."+name, body, MaxMacroBodyLength); err != nil {
			return err
		}
	}

	if m.CacheSize < 0 || m.CacheSize > MaxCacheSize {
		return fmt.Errorf("%w: math.cacheSize must be between 0 and %d, got %d", ErrInvalidValue, MaxCacheSize, m.CacheSize)
	}

	seen := make(map[string]bool, len(m.Recognizers))
	for _, name := range m.Recognizers {
		if !slices.Contains(recognizerNames, name) {
			return fmt.Errorf("%w: math.recognizers: unknown recognizer %q (want one of %s)", ErrInvalidValue, name, strings.Join(recognizerNames, ", "))
		}
		if seen[name] {
			return fmt.Errorf("%w: math.recognizers: %q listed twice", ErrInvalidValue, name)
		}
		seen[name] = true
	}
	return nil
}

func (p *PDFConfig) validate() error {
	if p.Timeout < 0 {
		return fmt.Errorf("%w: pdf.timeout must not be negative, got %s", ErrInvalidValue, p.Timeout)
	}
	if !slices.Contains(pageSizes, strings.ToLower(p.Page.Size)) {
		return fmt.Errorf("%w: pdf.page.size %q (want letter, a4 or legal)", ErrInvalidValue, p.Page.Size)
	}
	if !slices.Contains(orientations, strings.ToLower(p.Page.Orientation)) {
		return fmt.Errorf("%w: pdf.page.orientation %q (want portrait or landscape)", ErrInvalidValue, p.Page.Orientation)
	}
	if p.Page.Margin != 0 && (p.Page.Margin < minMargin || p.Page.Margin > maxMargin) {
		return fmt.Errorf("%w: pdf.page.margin must be between %.2f and %.2f, got %.2f", ErrInvalidValue, minMargin, maxMargin, p.Page.Margin)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		CSS: CSSConfig{Style: "default", Highlight: "github"},
		Server: ServerConfig{
			Addr:          DefaultAddr,
			MaxBodyBytes:  DefaultMaxBodyBytes,
			RenderTimeout: DefaultRenderTimeout,
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := unmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigParse, configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the DefaultName config if one exists in a standard
// location, and DefaultConfig otherwise.
func LoadDefault() (*Config, error) {
	cfg, err := LoadConfig(DefaultName)
	if errors.Is(err, ErrConfigNotFound) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, user config dir/mdmath/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, DefaultName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
