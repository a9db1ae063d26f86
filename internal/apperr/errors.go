// Package apperr defines the error kinds shared by the catalog, the
// credential store and the HTTP layer.
//
// Every core operation returns either nil or an error that matches exactly
// one of the sentinel kinds below via errors.Is. Storage errors are wrapped
// with Storage so the cause stays available for logs while callers only see
// ErrStorage.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("not the owner of this resource")
	ErrNotFound           = errors.New("not found")
	ErrStorage            = errors.New("storage failure")
)

// ValidationError lists every violated input rule.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Problems, "; ")
}

// Is makes errors.Is(err, ErrValidation) true for any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validation builds a ValidationError from one or more problems.
func Validation(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

// Add records a problem.
func (e *ValidationError) Add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// OrNil returns nil when no problems were recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Problems) == 0 {
		return nil
	}
	return e
}

// StorageError carries the driver error behind ErrStorage.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Storage wraps err as a storage failure for operation op.
// Errors that already carry a kind pass through unchanged.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != nil {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// Kind returns the sentinel kind err matches, or nil.
func Kind(err error) error {
	for _, kind := range []error{
		ErrValidation,
		ErrDuplicateEmail,
		ErrInvalidCredentials,
		ErrUnauthenticated,
		ErrForbidden,
		ErrNotFound,
		ErrStorage,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Problems returns the validation problems carried by err, if any.
func Problems(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Problems
	}
	return nil
}
