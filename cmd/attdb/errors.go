package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/srg/attdb/internal/dsl"
)

// Command-level errors
var (
	// ErrInvalidFlag indicates a flag value that cannot be parsed.
	ErrInvalidFlag = errors.New("invalid flag value")
)

// FormatUserError renders err for the terminal. Source errors are reduced to
// `file:line:col: message`; missing files lose the syscall noise.
func FormatUserError(err error) string {
	var positioned *dsl.Error
	if errors.As(err, &positioned) {
		return positioned.Error()
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(err, os.ErrNotExist) {
		return fmt.Sprintf("%s: no such file", pathErr.Path)
	}
	return err.Error()
}
