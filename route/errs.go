package route

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedPattern = errors.New("malformed pattern")
	ErrDuplicateName    = errors.New("duplicate rule name")
	ErrUnknownRule      = errors.New("unknown rule")
	ErrBadRule          = errors.New("bad rule")
)

// PatternError reports which component of which descriptor failed to
// compile.
type PatternError struct {
	Component string
	Src       string
	Err       error
}

func (e *PatternError) Unwrap() error {
	return ErrMalformedPattern
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%s: %s %q: %v",
		ErrMalformedPattern.Error(), e.Component, e.Src, e.Err)
}
