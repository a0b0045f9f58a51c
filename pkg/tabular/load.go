package tabular

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-docfill/pkg/datatree"
)

// LoadOption customises Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	sheet string
}

// WithSheet selects the workbook sheet for .xlsx sources.
func WithSheet(name string) LoadOption {
	return func(cfg *loadConfig) {
		cfg.sheet = name
	}
}

// Load reads rows from path, choosing the reader by extension: .csv, .xlsx,
// .xlsm, .json, .yaml or .yml.
func Load(path string, opts ...LoadOption) ([]datatree.Row, error) {
	cfg := loadConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tabular: open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return ReadXLSX(f, cfg.sheet)
	case ".json":
		return ReadJSON(f)
	case ".yaml", ".yml":
		return ReadYAML(f)
	default:
		return nil, fmt.Errorf("tabular: unsupported data file %q", filepath.Base(path))
	}
}
