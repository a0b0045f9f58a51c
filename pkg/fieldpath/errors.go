package fieldpath

import "fmt"

// MalformedPathError reports text that cannot be parsed into a Path.
type MalformedPathError struct {
	Path   string
	Offset int
	Reason string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("fieldpath: malformed path %q at offset %d: %s", e.Path, e.Offset, e.Reason)
}

func malformed(path string, offset int, reason string) error {
	return &MalformedPathError{Path: path, Offset: offset, Reason: reason}
}
