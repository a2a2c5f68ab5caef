package shared

import "errors"

// Error codes used across the domain. Handlers map these to HTTP statuses.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodePrecondition = "PRECONDITION_FAILED"
	CodeConflict     = "CONFLICT"
	CodeValidation   = "VALIDATION_FAILED"
	CodeDependency   = "DEPENDENCY_FAILED"
)

// DomainError represents a domain-level error with structured details
// so callers can explain a failure without another round-trip.
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// WithDetail returns a copy of the error with an extra detail attached
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Details: details}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a NOT_FOUND error for the given entity
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewForbiddenError creates a FORBIDDEN error
func NewForbiddenError(message string) *DomainError {
	return NewDomainError(CodeForbidden, message)
}

// NewPreconditionError creates a PRECONDITION_FAILED error
func NewPreconditionError(message string) *DomainError {
	return NewDomainError(CodePrecondition, message)
}

// NewConflictError creates a CONFLICT error
func NewConflictError(message string) *DomainError {
	return NewDomainError(CodeConflict, message)
}

// NewValidationError creates a VALIDATION_FAILED error
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewDependencyError creates a DEPENDENCY_FAILED error for a collaborator failure
func NewDependencyError(message string) *DomainError {
	return NewDomainError(CodeDependency, message)
}

// IsCode reports whether err is a DomainError carrying the given code
func IsCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Common domain errors
var (
	ErrNotFound  = NewNotFoundError("Resource not found")
	ErrForbidden = NewForbiddenError("Access to this resource is forbidden")
)
