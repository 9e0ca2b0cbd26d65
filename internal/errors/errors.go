package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a shelldash error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrStorage        ErrorCode = "STORAGE_FAILURE" // 500
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// DashError represents a structured error with code, status, and details.
type DashError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *DashError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *DashError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *DashError {
	return &DashError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewStorage creates a 500 error for a failed read or write in the data directory.
func NewStorage(op, path string, err error) *DashError {
	msg := fmt.Sprintf("%s %s failed", op, path)
	if err != nil {
		msg = fmt.Sprintf("%s %s: %v", op, path, err)
	}
	return &DashError{
		Code:    ErrStorage,
		Status:  500,
		Message: msg,
		Details: map[string]any{"op": op, "path": path},
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *DashError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &DashError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is checks if an error is a DashError with the given code.
func Is(err error, code ErrorCode) bool {
	var dErr *DashError
	if stderrors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// ReadKind classifies why a read at the storage boundary produced no value.
type ReadKind string

const (
	ReadMissing ReadKind = "missing" // file does not exist
	ReadCorrupt ReadKind = "corrupt" // file exists but does not decode
	ReadIO      ReadKind = "io"      // any other filesystem error
)

// ReadError is returned by loaders of config, cache and session files.
// Callers decide whether to degrade to a default value.
type ReadError struct {
	Path string
	Kind ReadKind
	Err  error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("read %s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("read %s: %s: %v", e.Path, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// NewReadError creates a ReadError.
func NewReadError(path string, kind ReadKind, err error) *ReadError {
	return &ReadError{Path: path, Kind: kind, Err: err}
}

// IsReadKind reports whether err is a ReadError of the given kind.
func IsReadKind(err error, kind ReadKind) bool {
	var rErr *ReadError
	if stderrors.As(err, &rErr) {
		return rErr.Kind == kind
	}
	return false
}
