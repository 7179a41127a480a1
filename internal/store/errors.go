package store

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dgraph-io/badger/v4"
)

// Error is a domain error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)

	// base points at the sentinel this error derives from, so errors.Is
	// matches WithMessage/WithCause results against the sentinel.
	base *Error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: e.Err, base: e.root()}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err, base: e.root()}
}

// Is reports whether the target is this error or the sentinel it derives
// from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || e.root() == t.root()
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}
	return e
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	ErrInvalidInput = &Error{
		Code:    http.StatusBadRequest,
		Message: "invalid input",
	}

	ErrBookNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "book not found",
	}

	ErrReviewNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "review not found",
	}

	// ErrTxnAborted marks a transaction badger aborted (conflict with a
	// concurrent write). ErrTxnFailed covers every other transaction
	// error. Callers can tell them apart with errors.Is.
	ErrTxnAborted = &Error{
		Code:    http.StatusConflict,
		Message: "transaction aborted",
	}

	ErrTxnFailed = &Error{
		Code:    http.StatusInternalServerError,
		Message: "transaction failed",
	}
)

// wrapTxnErr classifies a transaction error, passing through errors that
// already carry domain meaning.
func wrapTxnErr(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, badger.ErrConflict) {
		return ErrTxnAborted.WithCause(err)
	}
	return ErrTxnFailed.WithCause(err)
}
