package render

import (
	"errors"
	"fmt"
)

// ExecError is a template fault found while rendering: an unknown helper,
// a helper failure or an invalid expression. Location is "name:line:col".
type ExecError struct {
	Template string
	Location string
	Context  string
	Err      error
}

func (e *ExecError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("render: template %q: %v", e.Template, e.Err)
	}
	return fmt.Sprintf("render: %s: executing %q: %v", e.Location, e.Context, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

var (
	// ErrNilTemplate is returned when Render is given no template.
	ErrNilTemplate = errors.New("render: template is required")

	errBreak    = errors.New("break")
	errContinue = errors.New("continue")
)
