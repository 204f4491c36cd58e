package dsl

import (
	"errors"
	"fmt"
)

// ErrSyntax marks malformed input: bad tokens, unbalanced groups, unexpected values.
var ErrSyntax = errors.New("syntax error")

// Pos is a location in a source file. Lines and columns are 1-based.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	file := p.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, p.Line, p.Col)
}

// Error is a compilation error anchored at a source position.
// Err carries the error class so callers can match it with errors.Is.
type Error struct {
	Pos Pos
	Msg string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds a positioned error of the given class.
func Errorf(pos Pos, class error, format string, args ...any) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...), Err: class}
}

// WrapError anchors an existing error at pos. Errors that already carry a
// position are returned unchanged.
func WrapError(pos Pos, err error) error {
	if err == nil {
		return nil
	}
	var positioned *Error
	if errors.As(err, &positioned) {
		return err
	}
	return &Error{Pos: pos, Msg: err.Error(), Err: err}
}
