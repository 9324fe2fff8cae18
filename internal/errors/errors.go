package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP context
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    string            `json:"details,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	StatusCode int               `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// ErrorResponse is the JSON response format for errors
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// WriteJSON writes the error as JSON response
func (e *AppError) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: e})
}

// ============================================================
// ERROR CONSTRUCTORS
// ============================================================

// Validation Errors (400)
func BadRequest(message string) *AppError {
	return &AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func InvalidJSON(details string) *AppError {
	return &AppError{
		Code:       "INVALID_JSON",
		Message:    "Invalid JSON in request body",
		Details:    details,
		StatusCode: http.StatusBadRequest,
	}
}

// Validation lists every offending field with a short reason.
func Validation(fields map[string]string) *AppError {
	return &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		Fields:     fields,
		StatusCode: http.StatusBadRequest,
	}
}

// AlreadyExists is returned on a duplicate favorite, cart or subscription add.
// The status stays 400: the client asked to create something that is there.
func AlreadyExists(resource string) *AppError {
	return &AppError{
		Code:       "ALREADY_EXISTS",
		Message:    fmt.Sprintf("%s already exists", resource),
		StatusCode: http.StatusBadRequest,
	}
}

// NotPresent is returned when removing a relation that does not exist.
func NotPresent(resource string) *AppError {
	return &AppError{
		Code:       "NOT_PRESENT",
		Message:    fmt.Sprintf("%s does not exist", resource),
		StatusCode: http.StatusBadRequest,
	}
}

// Auth Errors (401, 403)
func Unauthorized() *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication credentials were not provided",
		StatusCode: http.StatusUnauthorized,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// Not Found Errors (404)
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func MethodNotAllowed(method string) *AppError {
	return &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    fmt.Sprintf("Method %s not allowed", method),
		StatusCode: http.StatusMethodNotAllowed,
	}
}

func ShortLinkNotFound(token string) *AppError {
	return &AppError{
		Code:       "SHORT_LINK_NOT_FOUND",
		Message:    fmt.Sprintf("Short link '%s' not found", token),
		StatusCode: http.StatusNotFound,
	}
}

// Rate Limit Error (429)
func RateLimitExceeded() *AppError {
	return &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, please try again later",
		StatusCode: http.StatusTooManyRequests,
	}
}

// Server Errors (500)
func Internal(details string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An internal server error occurred",
		Details:    details,
		StatusCode: http.StatusInternalServerError,
	}
}

func DatabaseError() *AppError {
	return &AppError{
		Code:       "DATABASE_ERROR",
		Message:    "A database error occurred",
		StatusCode: http.StatusInternalServerError,
	}
}

// TokenSpaceExhausted signals that no free short token was found within
// the retry budget.
func TokenSpaceExhausted() *AppError {
	return &AppError{
		Code:       "TOKEN_SPACE_EXHAUSTED",
		Message:    "Could not allocate a unique short link",
		StatusCode: http.StatusInternalServerError,
	}
}
