package patch

import (
	"errors"
	"fmt"
)

var (
	ErrTargetNotFound       = errors.New("patch target not found")
	ErrTruncatedSegment     = errors.New("truncated segment")
	ErrSanitizationRejected = errors.New("sanitization rejected")
	ErrSuperseded           = errors.New("superseded")
	ErrClosed               = errors.New("session closed")
	ErrDetached             = errors.New("target detached")
)

type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Unwrap() error {
	return ErrTargetNotFound
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrTargetNotFound.Error(), e.ID)
}
