package store

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input rejected before any remote call.
	ErrValidation = errors.New("validation failed")
	// ErrRemote marks a failure returned by the data gateway. The gateway's
	// own error stays in the chain.
	ErrRemote = errors.New("remote operation failed")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

func remote(op string, err error) error {
	return &RemoteError{Op: op, Err: err}
}
