// Package config provides configuration types and defaults for caseview.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/zjrosen/caseview/internal/log"
	"github.com/zjrosen/caseview/internal/tracing"
)

// Config holds all configuration options for caseview.
type Config struct {
	CasePath    string          `mapstructure:"case_path"`
	AutoRefresh bool            `mapstructure:"auto_refresh"`
	Viewers     []string        `mapstructure:"viewers"` // tab order; empty uses the built-in order
	Strings     StringsConfig   `mapstructure:"strings"`
	Cache       CacheConfig     `mapstructure:"cache"`
	UI          UIConfig        `mapstructure:"ui"`
	Tracing     TracingConfig   `mapstructure:"tracing"`
	Flags       map[string]bool `mapstructure:"flags"`
}

// StringsConfig configures the strings viewer.
type StringsConfig struct {
	MinLength int `mapstructure:"min_length"`
}

// CacheConfig configures the in-memory content cache shared by viewers.
type CacheConfig struct {
	// TTL is how long loaded file bytes stay cached. Zero disables caching.
	TTL time.Duration `mapstructure:"ttl"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	MarkdownStyle    string `mapstructure:"markdown_style"`     // "dark" (default) or "light"
	ShowDisabledTabs bool   `mapstructure:"show_disabled_tabs"` // render unsupported viewers muted instead of hiding them
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/caseview/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// TracingProviderConfig converts to the tracing package's config, filling
// the default trace file when none is set.
func (t TracingConfig) TracingProviderConfig() tracing.Config {
	cfg := tracing.DefaultConfig()
	cfg.Enabled = t.Enabled
	if t.Exporter != "" {
		cfg.Exporter = t.Exporter
	}
	cfg.FilePath = t.FilePath
	if cfg.FilePath == "" {
		cfg.FilePath = DefaultTracesFilePath()
	}
	if t.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = t.OTLPEndpoint
	}
	if t.SampleRate > 0 {
		cfg.SampleRate = t.SampleRate
	}
	return cfg
}

// DefaultTracesFilePath returns ~/.config/caseview/traces/traces.jsonl or
// an empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "caseview", "traces", "traces.jsonl")
}

// DefaultViewers mirrors viewers.DefaultOrder. Later tabs win preference
// ties, so markdown is listed after text.
func DefaultViewers() []string {
	return []string{"hex", "strings", "text", "markdown", "metadata"}
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		AutoRefresh: true,
		Viewers:     DefaultViewers(),
		Strings: StringsConfig{
			MinLength: 4,
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		UI: UIConfig{
			MarkdownStyle:    "dark",
			ShowDisabledTabs: true,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Flags: map[string]bool{
			"secondary-windows": true,
			"close-guard":       true,
		},
	}
}

// Validate checks the whole configuration. Viewer names are checked against
// the registry at startup, not here.
func (c Config) Validate() error {
	if err := ValidateViewers(c.Viewers); err != nil {
		return err
	}
	if c.Strings.MinLength < 0 {
		return fmt.Errorf("strings.min_length must not be negative, got %d", c.Strings.MinLength)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	switch c.UI.MarkdownStyle {
	case "", "dark", "light", "notty", "ascii", "dracula", "pink", "tokyo-night":
	default:
		return fmt.Errorf("ui.markdown_style must be a glamour style such as \"dark\" or \"light\", got %q", c.UI.MarkdownStyle)
	}
	return ValidateTracing(c.Tracing)
}

// ValidateViewers rejects empty and repeated names.
// Returns nil for an empty list (will use defaults).
func ValidateViewers(names []string) error {
	for i, name := range names {
		if name == "" {
			return fmt.Errorf("viewers[%d]: name is required", i)
		}
		if slices.Contains(names[:i], name) {
			return fmt.Errorf("viewers[%d]: %q is listed more than once", i, name)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate endpoint requirements when tracing is enabled
	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}

	return nil
}

// GetViewers returns the configured viewer order, or DefaultViewers() if
// none is configured.
func (c Config) GetViewers() []string {
	if len(c.Viewers) > 0 {
		return c.Viewers
	}
	return DefaultViewers()
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Caseview Configuration

# Path to the case database (default: ./case.db)
# case_path: /cases/2024-017/case.db

# Reload the content tree when the case database changes
auto_refresh: true

# Viewer tabs, left to right. When several viewers prefer a node the
# rightmost one wins, so specialised viewers belong after generic ones.
# Available: hex, strings, text, markdown, metadata
viewers:
  - hex
  - strings
  - text
  - markdown
  - metadata

# Strings viewer
strings:
  min_length: 4   # Shortest printable run to list

# Content cache shared by all viewers
cache:
  ttl: 5m         # 0 disables caching

# UI settings
ui:
  markdown_style: dark      # Markdown rendering style: "dark" (default) or "light"
  show_disabled_tabs: true  # Show unsupported viewers as muted tabs

# Distributed tracing of viewer selection passes
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/caseview/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Feature flags
flags:
  secondary-windows: true  # 'o' opens the selection in a new window
  close-guard: true        # refuse to close the main window while a case is open
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
