package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Details []string `json:"details,omitempty"`
	Err     error    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so that cloned sentinels compare equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	// Staff and assignment failure signals.
	ErrPersistenceConflict   = New("PERSISTENCE_CONFLICT", http.StatusConflict, "staff record conflicts with an existing record")
	ErrGenerationExhausted   = New("CODE_GENERATION_EXHAUSTED", http.StatusServiceUnavailable, "could not generate a unique staff code")
	ErrQualificationRejected = New("QUALIFICATION_REJECTED", http.StatusUnprocessableEntity, "staff member does not qualify for this assignment")
	ErrAlreadyClassTeacher   = New("ALREADY_CLASS_TEACHER", http.StatusConflict, "staff member is already a class teacher this academic year")
	ErrWorkloadExceeded      = New("WORKLOAD_EXCEEDED", http.StatusConflict, "staff member has reached the subject assignment limit")
	ErrDuplicateAssignment   = New("DUPLICATE_ASSIGNMENT", http.StatusConflict, "an identical active assignment already exists")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithDetails returns a copy of err carrying a list of discrete reasons.
func WithDetails(err *Error, details ...string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Details = append([]string(nil), details...)
	return &clone
}
