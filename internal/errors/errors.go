package errors

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeSourceUnavailable ErrorType = "SOURCE_UNAVAILABLE"
	ErrTypeConfigMissing     ErrorType = "CONFIG_MISSING"
	ErrTypePersistence       ErrorType = "PERSISTENCE"
	ErrTypeCache             ErrorType = "CACHE"
	ErrTypeInvalidInput      ErrorType = "INVALID_INPUT"
	ErrTypeInternal          ErrorType = "INTERNAL"
)

// DomainError carries the failure class alongside the wrapped cause and a
// stack captured at construction time. Adapter and pipeline failures are
// values passed around, never panics.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

// SourceUnavailable tags a network or parse failure of one aggregator. It is
// isolated per source and surfaced only in the response's aggregator results.
func SourceUnavailable(message string, err error) *DomainError {
	return New(ErrTypeSourceUnavailable, message, err)
}

// ConfigMissing tags an adapter that is disabled or lacks credentials; it is
// handled like SourceUnavailable but without a network attempt.
func ConfigMissing(message string, err error) *DomainError {
	return New(ErrTypeConfigMissing, message, err)
}

func Persistence(message string, err error) *DomainError {
	return New(ErrTypePersistence, message, err)
}

func Cache(message string, err error) *DomainError {
	return New(ErrTypeCache, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}
