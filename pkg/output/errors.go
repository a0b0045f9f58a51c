package output

import "fmt"

// RevisionLimitError is returned when every revision up to Max is taken.
// The rendered document is still valid; retry with another directory or
// suffix.
type RevisionLimitError struct {
	Base string
	Max  int
}

func (e *RevisionLimitError) Error() string {
	return fmt.Sprintf("output: no free revision for %s (tried 0..%d)", e.Base, e.Max)
}
