package docfill

import (
	"github.com/goliatone/go-docfill/pkg/datatree"
	"github.com/goliatone/go-docfill/pkg/extract"
	"github.com/goliatone/go-docfill/pkg/tabular"
)

// LoadRows reads a dataset file, choosing the reader by extension.
func LoadRows(path string, options ...tabular.LoadOption) ([]datatree.Row, error) {
	return tabular.Load(path, options...)
}

// ParseTemplate parses template text once so it can be inspected and
// rendered repeatedly.
func ParseTemplate(name, text string) (*extract.Template, error) {
	return extract.Parse(name, text)
}
