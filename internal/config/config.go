// Package config loads the YAML configuration file shared by the export and
// preview commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-staticmd/internal/theme"
	"github.com/alnah/go-staticmd/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxIDLength       = 32   // theme, font, template identifiers
	MaxLangLength     = 35   // BCP 47 tag
	MaxSegmentLength  = 4096 // inline header/footer markdown
	MaxPathLength     = 4096 // file and directory paths
	MaxAddrLength     = 255  // host:port
	MaxDurationLength = 20   // "150ms", "30s"
	MaxWorkers        = 16   // concurrent diagram renders
)

// configDirName is the directory under os.UserConfigDir searched by name.
const configDirName = "staticmd"

// Defaults applied before a file is decoded.
const (
	DefaultAddr     = "127.0.0.1:4173"
	DefaultDebounce = 150 * time.Millisecond
	DefaultTimeout  = 30 * time.Second
)

// Config holds all configuration for rendering and previewing documents.
type Config struct {
	Document DocumentConfig `yaml:"document"`
	Header   SegmentConfig  `yaml:"header"`
	Footer   SegmentConfig  `yaml:"footer"`
	Preview  PreviewConfig  `yaml:"preview"`
	Diagram  DiagramConfig  `yaml:"diagram"`
	Assets   AssetsConfig   `yaml:"assets"`
}

// DocumentConfig selects the presentation of the document body.
type DocumentConfig struct {
	Theme    string `yaml:"theme"`    // modern, sepia, cyber, notebook (default: modern)
	Font     string `yaml:"font"`     // sans, serif, mono or a CSS stack (default: sans)
	FontSize int    `yaml:"fontSize"` // 12-28 px, 0 = 16
	Template string `yaml:"template"` // Document template name (empty = none)
	Lang     string `yaml:"lang"`     // Exported <html lang> (default: en)
	Math     bool   `yaml:"math"`     // Render $...$ as MathML
}

// SegmentConfig is header or footer markdown, inline or from a file.
type SegmentConfig struct {
	Text     string `yaml:"text"`
	File     string `yaml:"file"`
	Position string `yaml:"position"` // flow (default) or sticky
}

// PreviewConfig defines the live preview server.
type PreviewConfig struct {
	Addr     string `yaml:"addr"`     // Listen address (default: 127.0.0.1:4173)
	Debounce string `yaml:"debounce"` // Quiet period before a pass (default: 150ms)
}

// DiagramConfig defines the headless-browser diagram renderer.
type DiagramConfig struct {
	Enabled    bool   `yaml:"enabled"`    // Render diagrams in the preview (default: true)
	BrowserBin string `yaml:"browserBin"` // Chrome binary (empty = rod managed)
	NoSandbox  bool   `yaml:"noSandbox"`
	Timeout    string `yaml:"timeout"` // Per-diagram render timeout (default: 30s)
	Workers    int    `yaml:"workers"` // Browser pages, 0 = auto
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// Validate checks field lengths and enumerations.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := c.Document.validate(); err != nil {
		return err
	}
	if err := c.Header.validate("header"); err != nil {
		return err
	}
	if err := c.Footer.validate("footer"); err != nil {
		return err
	}

	if err := validateFieldLength("preview.addr", c.Preview.Addr, MaxAddrLength); err != nil {
		return err
	}
	if _, err := parseDuration("preview.debounce", c.Preview.Debounce); err != nil {
		return err
	}

	if err := validateFieldLength("diagram.browserBin", c.Diagram.BrowserBin, MaxPathLength); err != nil {
		return err
	}
	if _, err := parseDuration("diagram.timeout", c.Diagram.Timeout); err != nil {
		return err
	}
	if c.Diagram.Workers < 0 || c.Diagram.Workers > MaxWorkers {
		return fmt.Errorf("%w: diagram.workers: must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Diagram.Workers)
	}

	return validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength)
}

func (d DocumentConfig) validate() error {
	for _, f := range []struct {
		name, value string
		max         int
	}{
		{"document.theme", d.Theme, MaxIDLength},
		{"document.font", d.Font, MaxPathLength},
		{"document.template", d.Template, MaxIDLength},
		{"document.lang", d.Lang, MaxLangLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if _, err := theme.Resolve(d.Theme); err != nil {
		return fmt.Errorf("%w: document.theme: %w", ErrInvalidValue, err)
	}
	if _, err := theme.ResolveFont(d.Font); err != nil {
		return fmt.Errorf("%w: document.font: %w", ErrInvalidValue, err)
	}
	if d.FontSize != 0 && (d.FontSize < theme.MinFontSize || d.FontSize > theme.MaxFontSize) {
		return fmt.Errorf("%w: document.fontSize: must be between %d and %d, got %d",
			ErrInvalidValue, theme.MinFontSize, theme.MaxFontSize, d.FontSize)
	}
	return nil
}

func (s SegmentConfig) validate(section string) error {
	if err := validateFieldLength(section+".text", s.Text, MaxSegmentLength); err != nil {
		return err
	}
	if err := validateFieldLength(section+".file", s.File, MaxPathLength); err != nil {
		return err
	}
	if s.Text != "" && s.File != "" {
		return fmt.Errorf("%w: %s: text and file are mutually exclusive", ErrInvalidValue, section)
	}
	switch strings.ToLower(s.Position) {
	case "", "flow", "sticky":
		return nil
	default:
		return fmt.Errorf("%w: %s.position: %q (must be flow or sticky)", ErrInvalidValue, section, s.Position)
	}
}

// DebounceDuration returns the parsed preview debounce, or DefaultDebounce.
func (c *Config) DebounceDuration() time.Duration {
	d, err := parseDuration("preview.debounce", c.Preview.Debounce)
	if err != nil || d == 0 {
		return DefaultDebounce
	}
	return d
}

// DiagramTimeout returns the parsed diagram timeout, or DefaultTimeout.
func (c *Config) DiagramTimeout() time.Duration {
	d, err := parseDuration("diagram.timeout", c.Diagram.Timeout)
	if err != nil || d == 0 {
		return DefaultTimeout
	}
	return d
}

// parseDuration accepts an empty value as zero and rejects non-positive ones.
func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	if err := validateFieldLength(field, value, MaxDurationLength); err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s: must be positive, got %s", ErrInvalidValue, field, value)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
// Loaded files are decoded over these values.
func DefaultConfig() *Config {
	return &Config{
		Document: DocumentConfig{Theme: theme.Default, Font: theme.DefaultFont},
		Preview:  PreviewConfig{Addr: DefaultAddr},
		Diagram:  DiagramConfig{Enabled: true},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	if err := yamlutil.DecodeStrict(f, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/staticmd/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, configDirName, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
