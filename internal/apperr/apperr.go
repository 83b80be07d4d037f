package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation  Kind = "validation"
	KindStorage     Kind = "storage"
	KindPersistence Kind = "persistence"
	KindNotFound    Kind = "not_found"
)

// Error carries the failure kind alongside the wrapped cause so callers can
// branch on kind without parsing messages. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
		}
		return e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, string(e.Kind))
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(op string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, Err: err}
}

func Persistence(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Op: op, Err: err}
}

func NotFound(op string, err error) *Error {
	return &Error{Kind: KindNotFound, Op: op, Err: err}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsValidation(err error) bool  { return KindOf(err) == KindValidation }
func IsStorage(err error) bool     { return KindOf(err) == KindStorage }
func IsPersistence(err error) bool { return KindOf(err) == KindPersistence }
func IsNotFound(err error) bool    { return KindOf(err) == KindNotFound }
