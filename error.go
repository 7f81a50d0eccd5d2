package fcjson

import (
	"errors"
	"fmt"
)

// ErrTypeMismatch is matched by every *TypeError via errors.Is.
var ErrTypeMismatch = errors.New("type mismatch")

// ErrUnsupported reports a value that has no representation in the requested
// target format.
var ErrUnsupported = errors.New("unsupported value")

// ParseError records JSON text or binary decoding errors.  Offset is the byte
// position in the input where the error was detected.
type ParseError struct {
	Offset int
	msg    string
}

func (pe *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s at offset %d", pe.msg, pe.Offset)
}

func newParseError(offset int, msg string) *ParseError {
	return &ParseError{Offset: offset, msg: msg}
}

// TypeError is returned by the As* accessors when the active variant of a
// Value cannot produce the requested type.
type TypeError struct {
	Want Type
	Got  Type
	note string
}

func (te *TypeError) Error() string {
	if te.note != "" {
		return fmt.Sprintf("type mismatch: cannot read %s as %s: %s", te.Got, te.Want, te.note)
	}
	return fmt.Sprintf("type mismatch: cannot read %s as %s", te.Got, te.Want)
}

// Is makes errors.Is(err, ErrTypeMismatch) true for any *TypeError.
func (te *TypeError) Is(target error) bool { return target == ErrTypeMismatch }
