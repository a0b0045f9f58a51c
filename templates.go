package docfill

import (
	"io/fs"

	"github.com/goliatone/go-docfill/pkg/layout"
)

// EmbeddedLayouts exposes the built-in document shells so callers can reuse
// or extend them without importing the layout package directly.
func EmbeddedLayouts() fs.FS {
	return layout.DefaultTemplates()
}
