package dto

import (
	"net/http"

	"github.com/bailflow/core/internal/domain/shared"
)

// Transport-level error codes not produced by the domain
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain and transport error codes to HTTP statuses
var errorCodeHTTPStatus = map[string]int{
	shared.CodeNotFound:     http.StatusNotFound,
	shared.CodeForbidden:    http.StatusForbidden,
	shared.CodePrecondition: http.StatusUnprocessableEntity,
	shared.CodeConflict:     http.StatusConflict,
	shared.CodeValidation:   http.StatusBadRequest,
	shared.CodeDependency:   http.StatusBadGateway,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInternal:     http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
