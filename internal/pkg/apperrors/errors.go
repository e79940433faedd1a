package apperrors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrUserNotFound     = errors.New("user not found")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrInvalidFormat      = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidStatus    = errors.New("invalid attendance status")

	// Attendance errors
	ErrDuplicateSession     = errors.New("attendance already marked for this session")
	ErrEnrollmentViolation  = errors.New("one or more students are not enrolled in this course")
	ErrNothingToEnroll      = errors.New("all students are already enrolled in this course")
	ErrInvalidStudentIDs    = errors.New("one or more invalid student IDs")
	ErrStudentNotEnrolled   = errors.New("student is not enrolled in this course")

	// User errors
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidFaculty     = errors.New("invalid faculty member")

	// Course errors
	ErrCourseCodeExists = errors.New("course with this code already exists")

	// Store errors
	ErrStoreFailure = errors.New("storage operation failed")
)

// EnrollmentViolationError reports which proposed students are not on the
// course roster. It unwraps to ErrEnrollmentViolation so callers can match
// with errors.Is while still reaching the offending identifiers.
type EnrollmentViolationError struct {
	StudentIDs []int64
}

// Error implements error interface
func (e *EnrollmentViolationError) Error() string {
	ids := make([]string, len(e.StudentIDs))
	for i, id := range e.StudentIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return "students not enrolled in course: " + strings.Join(ids, ", ")
}

// Unwrap implements errors.Unwrap interface
func (e *EnrollmentViolationError) Unwrap() error {
	return ErrEnrollmentViolation
}

// NewEnrollmentViolation creates an EnrollmentViolationError for the given ids.
func NewEnrollmentViolation(studentIDs []int64) error {
	return &EnrollmentViolationError{StudentIDs: studentIDs}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// NewForbiddenError creates a new custom error for permission denied with a reason
func NewForbiddenError(reason string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: reason,
	}
}

// NewStoreError wraps a persistence-layer failure as a generic store failure.
func NewStoreError(err error) error {
	return &CustomError{
		Err:     ErrStoreFailure,
		Message: fmt.Sprintf("storage operation failed: %v", err),
	}
}
