package format

import (
	"fmt"

	"github.com/goliatone/go-docfill/pkg/fieldpath"
)

// FormattingError describes input a formatter could not interpret. It is
// only ever logged; the field itself degrades to Missing.
type FormattingError struct {
	Helper string
	Path   fieldpath.Path
	Input  any
	Err    error
}

func (e *FormattingError) Error() string {
	return fmt.Sprintf("format %s: field %q: input %v: %v", e.Helper, e.Path.String(), e.Input, e.Err)
}

func (e *FormattingError) Unwrap() error { return e.Err }
