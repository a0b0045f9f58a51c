// Package cli parses command-line arguments, validates them and runs the
// requested action. Process concerns such as exit codes are reported through
// ExitError.
package cli
