// Package config loads the settings shared by the command line and the
// orchestrator. Files may be JSON or YAML; keys left out keep the values from
// Default.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docfill/pkg/format"
	"github.com/goliatone/go-docfill/pkg/layout"
	"github.com/goliatone/go-docfill/pkg/markup"
	"github.com/goliatone/go-docfill/pkg/output"
)

// Config is the full set of tunables.
type Config struct {
	Markup    markup.Directives   `json:"markup" yaml:"markup"`
	Locale    format.LocaleConfig `json:"locale" yaml:"locale"`
	Output    OutputConfig        `json:"output" yaml:"output"`
	Layout    LayoutConfig        `json:"layout" yaml:"layout"`
	Data      DataConfig          `json:"data" yaml:"data"`
	Sanitize  bool                `json:"sanitize" yaml:"sanitize"`
	Highlight bool                `json:"highlight" yaml:"highlight"`
}

// OutputConfig controls where documents are written and how they are named.
type OutputConfig struct {
	// Dir defaults to the directory of the source file when empty.
	Dir            string   `json:"dir" yaml:"dir"`
	Formats        []string `json:"formats" yaml:"formats"`
	Suffix         string   `json:"suffix" yaml:"suffix"`
	RevisionMarker string   `json:"revisionMarker" yaml:"revisionMarker"`
	MaxRevision    int      `json:"maxRevision" yaml:"maxRevision"`
}

// LayoutConfig selects the document shell.
type LayoutConfig struct {
	Dir      string `json:"dir" yaml:"dir"`
	Document string `json:"document" yaml:"document"`
	Title    string `json:"title" yaml:"title"`
	Lang     string `json:"lang" yaml:"lang"`
	// Disabled writes the rendered body without a shell.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// DataConfig tunes dataset loading.
type DataConfig struct {
	// Sheet names the workbook sheet read from .xlsx sources.
	Sheet string `json:"sheet" yaml:"sheet"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Markup: markup.DefaultDirectives(),
		Output: OutputConfig{
			Formats:        []string{"html"},
			RevisionMarker: output.DefaultRevisionMarker,
			MaxRevision:    output.DefaultMaxRevision,
		},
		Layout: LayoutConfig{
			Document: layout.DefaultTemplate,
			Lang:     "de",
		},
	}
}

// Load reads path on top of Default and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes data on top of Default. The source name selects the decoder
// by extension; other names are tried as JSON and then YAML.
func Parse(data []byte, source string) (Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", source, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", source, err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			cfg = Default()
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: invalid JSON or YAML", source)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", source, err)
	}
	return cfg, nil
}

// Validate checks the settings that cannot be repaired with defaults.
func (c Config) Validate() error {
	if len(c.Output.Formats) == 0 {
		return fmt.Errorf("output.formats must not be empty")
	}
	seen := make(map[string]bool, len(c.Output.Formats))
	for _, f := range c.Output.Formats {
		key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
		if key == "" {
			return fmt.Errorf("output.formats contains an empty entry")
		}
		if seen[key] {
			return fmt.Errorf("output.formats lists %q twice", key)
		}
		seen[key] = true
	}
	if c.Output.MaxRevision < 1 {
		return fmt.Errorf("output.maxRevision must be positive, got %d", c.Output.MaxRevision)
	}
	if strings.ContainsAny(c.Output.Suffix, `/\`) {
		return fmt.Errorf("output.suffix %q must not contain path separators", c.Output.Suffix)
	}
	if _, err := c.Locale.Locale(); err != nil {
		return err
	}
	return nil
}

// FormatLocale resolves the locale section.
func (c Config) FormatLocale() (format.Locale, error) {
	return c.Locale.Locale()
}

// Directives returns the markup section with blanks filled in.
func (c Config) Directives() markup.Directives {
	return c.Markup.WithDefaults()
}
