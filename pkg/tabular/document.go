package tabular

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docfill/pkg/datatree"
	"github.com/goliatone/go-docfill/pkg/fieldpath"
)

// ReadJSON flattens a JSON document into rows. Numbers keep their source
// text.
func ReadJSON(r io.Reader) ([]datatree.Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("tabular: decode json: %w", err)
	}
	return Flatten(doc)
}

// ReadYAML flattens a YAML document into rows.
func ReadYAML(r io.Reader) ([]datatree.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tabular: read yaml: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("tabular: decode yaml: %w", err)
	}
	return Flatten(doc)
}

// Flatten turns a nested document into one row per leaf. Map keys are
// visited in sorted order; empty maps and lists produce no rows.
func Flatten(doc any) ([]datatree.Row, error) {
	switch doc.(type) {
	case map[string]any, map[any]any, nil:
	default:
		return nil, fmt.Errorf("tabular: document root must be an object, got %T", doc)
	}
	var rows []datatree.Row
	if err := flatten(fieldpath.Path{}, doc, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func flatten(prefix fieldpath.Path, v any, rows *[]datatree.Row) error {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for key := range val {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if key == "" {
				return fmt.Errorf("tabular: empty key below %q", prefix.String())
			}
			if err := flatten(prefix.AppendName(key), val[key], rows); err != nil {
				return err
			}
		}
	case map[any]any:
		converted := make(map[string]any, len(val))
		for key, item := range val {
			converted[fmt.Sprint(key)] = item
		}
		return flatten(prefix, converted, rows)
	case []any:
		for i, item := range val {
			if err := flatten(prefix.AppendIndex(i), item, rows); err != nil {
				return err
			}
		}
	case json.Number:
		*rows = append(*rows, datatree.Row{Key: prefix.String(), Value: val.String()})
	case int:
		*rows = append(*rows, datatree.Row{Key: prefix.String(), Value: strconv.Itoa(val)})
	case float64:
		*rows = append(*rows, datatree.Row{Key: prefix.String(), Value: strconv.FormatFloat(val, 'f', -1, 64)})
	default:
		if prefix.IsRoot() {
			return nil
		}
		*rows = append(*rows, datatree.Row{Key: prefix.String(), Value: val})
	}
	return nil
}
