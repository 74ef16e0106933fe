package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an ivtab error code.
type ErrorCode string

const (
	ErrAmbiguousAddressing ErrorCode = "AMBIGUOUS_ADDRESSING" // 400
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"      // 400
	ErrFileNotFound        ErrorCode = "FILE_NOT_FOUND"       // 404
	ErrNotFound            ErrorCode = "NOT_FOUND"            // 404
	ErrNameAlreadyExists   ErrorCode = "NAME_ALREADY_EXISTS"  // 409
	ErrFileTooLarge        ErrorCode = "FILE_TOO_LARGE"       // 413
	ErrEmptyInput          ErrorCode = "EMPTY_INPUT"          // 422
	ErrInconsistentArity   ErrorCode = "INCONSISTENT_ARITY"   // 422
	ErrMalformedCell       ErrorCode = "MALFORMED_CELL"       // 422
	ErrMalformedRow        ErrorCode = "MALFORMED_ROW"        // 422
	ErrCancelled           ErrorCode = "CANCELLED"            // 499 (client closed request)
	ErrInternal            ErrorCode = "INTERNAL"             // 500
)

// Error represents a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAmbiguousAddressing creates a 400 error for when both ID and name are provided.
func NewAmbiguousAddressing() *Error {
	return &Error{
		Code:    ErrAmbiguousAddressing,
		Status:  400,
		Message: "cannot specify both id and name; use one addressing mode",
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewFileNotFound creates a 404 error for a missing input file.
func NewFileNotFound(path string) *Error {
	return &Error{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewNotFound creates a 404 error for when an interval set cannot be found.
func NewNotFound(identifier string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("interval set not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewNameAlreadyExists creates a 409 error for name collisions.
func NewNameAlreadyExists(name string) *Error {
	return &Error{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("interval set with name %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

// NewFileTooLarge creates a 413 error when an input file exceeds the size limit.
func NewFileTooLarge(max, actual int64) *Error {
	return &Error{
		Code:    ErrFileTooLarge,
		Status:  413,
		Message: fmt.Sprintf("file exceeds maximum size: %d bytes (max %d)", actual, max),
		Details: map[string]any{"max_bytes": max, "actual_bytes": actual},
	}
}

// NewEmptyInput creates a 422 error when no row survived admission.
func NewEmptyInput() *Error {
	return &Error{
		Code:    ErrEmptyInput,
		Status:  422,
		Message: "input contains no usable interval data",
	}
}

// NewInconsistentArity creates a 422 error when accepted rows mix 2- and 3-column shapes.
func NewInconsistentArity(arities []int) *Error {
	return &Error{
		Code:    ErrInconsistentArity,
		Status:  422,
		Message: "all rows must be either 2 columns (unweighted) or 3 columns (weighted)",
		Details: map[string]any{"column_counts": arities},
	}
}

// NewMalformedCell creates a 422 error for a cell that is not an integer literal.
// Row and column are 1-based.
func NewMalformedCell(row, column int, value string) *Error {
	return &Error{
		Code:    ErrMalformedCell,
		Status:  422,
		Message: fmt.Sprintf("row %d, column %d: %q is not an integer", row, column, value),
		Details: map[string]any{"row": row, "column": column, "value": value},
	}
}

// NewMalformedRow creates a 422 error for a row the delimited-text decoder rejected.
func NewMalformedRow(row int, err error) *Error {
	msg := fmt.Sprintf("row %d could not be decoded", row)
	if err != nil {
		msg = fmt.Sprintf("row %d could not be decoded: %v", row, err)
	}
	return &Error{
		Code:    ErrMalformedRow,
		Status:  422,
		Message: msg,
		Details: map[string]any{"row": row},
	}
}

// NewCancelled creates a 499 error when an operation is cancelled by its context.
func NewCancelled(op string) *Error {
	return &Error{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
		Details: map[string]any{"operation": op},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *Error {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error (or anything it wraps) is an *Error with the given code.
func Is(err error, code ErrorCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}
