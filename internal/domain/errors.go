package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrKindNotFound   ErrorKind = "NOT_FOUND"
	ErrKindConflict   ErrorKind = "CONFLICT"
	ErrKindValidation ErrorKind = "VALIDATION"
	ErrKindForbidden  ErrorKind = "FORBIDDEN"
)

// Error is a client-input failure raised by a precondition check. It is never
// retried; the caller has to correct the request.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NotFound(resource string) error {
	return &Error{Kind: ErrKindNotFound, Message: resource + " not found"}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrKindConflict, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: ErrKindValidation, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &Error{Kind: ErrKindForbidden, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a domain error anywhere in err's chain, or "" for
// persistence and other unexpected failures.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func IsNotFound(err error) bool   { return KindOf(err) == ErrKindNotFound }
func IsConflict(err error) bool   { return KindOf(err) == ErrKindConflict }
func IsValidation(err error) bool { return KindOf(err) == ErrKindValidation }
