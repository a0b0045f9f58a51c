package prompt

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-docfill/pkg/datatree"
	"github.com/goliatone/go-docfill/pkg/fieldpath"
)

// FillMissing asks for a value for every path the rows leave absent or
// empty. Blank answers are skipped so the field renders as missing. The
// returned slice holds the original rows followed by one row per answer.
func FillMissing(ctx context.Context, d Driver, paths []fieldpath.Path, rows []datatree.Row) ([]datatree.Row, error) {
	filled := make(map[string]bool, len(rows))
	for _, row := range rows {
		key, err := fieldpath.Normalize(row.Key)
		if err != nil {
			continue
		}
		filled[key] = !isBlank(row.Value)
	}

	out := append([]datatree.Row(nil), rows...)
	for _, p := range paths {
		key := p.String()
		if p.IsRoot() || filled[key] {
			continue
		}
		answer, err := d.Input(ctx, InputConfig{
			Message: key,
			Help:    "Leave empty to keep the field marked as missing.",
		})
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(answer) == "" {
			continue
		}
		out = append(out, datatree.Row{Key: key, Value: answer, Comment: "prompted"})
		filled[key] = true
	}
	return out, nil
}

// ChooseFile asks the operator to pick one of candidates. A single
// candidate is returned without prompting.
func ChooseFile(ctx context.Context, d Driver, message string, candidates []string) (string, error) {
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("prompt: no candidates for %q", message)
	case 1:
		return candidates[0], nil
	}
	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = filepath.Base(c)
	}
	idx, err := d.Select(ctx, SelectConfig{Message: message, Options: labels})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(candidates) {
		return "", fmt.Errorf("prompt: invalid selection %d", idx)
	}
	return candidates[idx], nil
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(val)
		return s == "" || s == "null"
	default:
		return false
	}
}
