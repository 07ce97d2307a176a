package expression

import (
	"errors"
	"fmt"
)

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrModuloByZero   = errors.New("modulo by zero")
)

// SyntaxError is a tokenizer or parser failure. Pos is the byte offset in the
// expression source.
type SyntaxError struct {
	Msg string
	Pos int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
}

// TypeError is an evaluation failure caused by an operand of the wrong type.
type TypeError struct {
	Msg string
	Pos int
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
}

func typeErrorf(pos int, format string, args ...any) *TypeError {
	return &TypeError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}
