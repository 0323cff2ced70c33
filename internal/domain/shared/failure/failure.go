// Package failure classifies domain errors so outer layers can translate them
// without knowing every sentinel.
package failure

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
	// ErrConflict marks a write lost to a concurrent update of the same aggregate.
	ErrConflict = errors.New("conflict")
)

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func NotFound(msg string) error { return &kindError{msg: msg, kind: ErrNotFound} }

func Forbidden(msg string) error { return &kindError{msg: msg, kind: ErrForbidden} }

func InvalidState(msg string) error { return &kindError{msg: msg, kind: ErrInvalidState} }

func Validation(msg string) error { return &kindError{msg: msg, kind: ErrValidation} }

func Conflict(msg string) error { return &kindError{msg: msg, kind: ErrConflict} }

// Kinds lists the taxonomy sentinels.
func Kinds() []error {
	return []error{ErrNotFound, ErrForbidden, ErrInvalidState, ErrValidation, ErrConflict}
}

// Kind reports which of the taxonomy sentinels err wraps, or nil.
func Kind(err error) error {
	for _, kind := range Kinds() {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
