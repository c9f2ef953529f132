package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-staticmd/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // STATICMD_CONFIG: config file name or path
	Theme      string // STATICMD_THEME: theme identifier
	Font       string // STATICMD_FONT: font identifier or stack
	Template   string // STATICMD_TEMPLATE: document template
	Addr       string // STATICMD_ADDR: preview listen address
	BrowserBin string // ROD_BROWSER_BIN: Chrome binary for diagrams
}

// envPrefix marks the variables this CLI reads.
const envPrefix = "STATICMD_"

// knownEnvVars lists valid STATICMD_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"STATICMD_CONFIG":    true,
	"STATICMD_THEME":     true,
	"STATICMD_FONT":      true,
	"STATICMD_TEMPLATE":  true,
	"STATICMD_ADDR":      true,
	"STATICMD_CONTAINER": true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig(getenv func(string) string) *envConfig {
	return &envConfig{
		ConfigPath: getenv("STATICMD_CONFIG"),
		Theme:      getenv("STATICMD_THEME"),
		Font:       getenv("STATICMD_FONT"),
		Template:   getenv("STATICMD_TEMPLATE"),
		Addr:       getenv("STATICMD_ADDR"),
		BrowserBin: getenv("ROD_BROWSER_BIN"),
	}
}

// warnUnknownEnvVars writes a warning for each unrecognized STATICMD_* variable.
// Helps catch typos like STATICMD_THEMES instead of STATICMD_THEME.
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

// applyEnvConfig applies set environment values over cfg.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards by the merge functions).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Theme != "" {
		cfg.Document.Theme = env.Theme
	}
	if env.Font != "" {
		cfg.Document.Font = env.Font
	}
	if env.Template != "" {
		cfg.Document.Template = env.Template
	}
	if env.Addr != "" {
		cfg.Preview.Addr = env.Addr
	}
	if env.BrowserBin != "" && cfg.Diagram.BrowserBin == "" {
		cfg.Diagram.BrowserBin = env.BrowserBin
	}
}

// loadConfig resolves the config file (flag, then STATICMD_CONFIG) and
// applies the environment over it.
func loadConfig(flagValue string, env *Environment) (*config.Config, error) {
	ec := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	name := flagValue
	if name == "" {
		name = ec.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		cfg, err = config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(ec, cfg)
	return cfg, nil
}
