package service

import (
	"errors"
	"fmt"
)

// Error kinds. Use cases return messages that unwrap to one of these so the
// HTTP layer can branch with errors.Is instead of string matching.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrInvalidState    = errors.New("invalid state")
	ErrPaymentDeclined = errors.New("payment declined")
	ErrGateway         = errors.New("payment gateway failure")
	ErrPersistence     = errors.New("persistence failure")
)

type taggedError struct {
	kind error
	msg  string
}

func (e *taggedError) Error() string { return e.msg }
func (e *taggedError) Unwrap() error { return e.kind }

func notFound(format string, args ...any) error {
	return &taggedError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func validation(format string, args ...any) error {
	return &taggedError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func invalidState(msg string) error {
	return &taggedError{kind: ErrInvalidState, msg: msg}
}

func declined(msg string) error {
	return &taggedError{kind: ErrPaymentDeclined, msg: msg}
}

func gatewayFailure(msg string) error {
	return &taggedError{kind: ErrGateway, msg: msg}
}

func persistence(err error) error {
	return &taggedError{kind: ErrPersistence, msg: err.Error()}
}
