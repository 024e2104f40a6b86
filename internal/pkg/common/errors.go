package common

import (
	"errors"
	"net/http"
)

// ErrorResponse is the JSON error body returned by the API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"` // only populated in debug mode
}

// CustomError carries an error code and HTTP status alongside the cause.
type CustomError struct {
	Code    string
	Message string
	Err     error
	Status  int
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError creates a new CustomError.
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// WrapError attaches a cause to a predefined error without mutating it.
func WrapError(base *CustomError, err error) *CustomError {
	return &CustomError{
		Code:    base.Code,
		Message: base.Message,
		Status:  base.Status,
		Err:     err,
	}
}

// ErrorCode extracts the code from a CustomError chain, or "" if none.
func ErrorCode(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// Predefined error codes.
const (
	// Client errors (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"   // 408
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// Server errors (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeBadGateway         = "BAD_GATEWAY"         // 502
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504

	// Pricing pipeline errors
	ErrCodeUpstreamTimeout   = "UPSTREAM_TIMEOUT"
	ErrCodeUpstreamHTTP      = "UPSTREAM_HTTP_ERROR"
	ErrCodeParseFailure      = "PARSE_FAILURE"
	ErrCodeValidationFailure = "VALIDATION_FAILURE"
	ErrCodeCircuitOpen       = "CIRCUIT_OPEN"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeCacheUnavailable  = "CACHE_UNAVAILABLE"
)

// Predefined errors.
var (
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "invalid request", http.StatusBadRequest, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "resource not found", http.StatusNotFound, nil)
	ErrRequestTimeout  = NewError(ErrCodeRequestTimeout, "request timed out", http.StatusRequestTimeout, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "too many requests", http.StatusTooManyRequests, nil)

	ErrInternalError      = NewError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "service temporarily unavailable", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "gateway timeout", http.StatusGatewayTimeout, nil)

	// Pricing pipeline errors
	ErrUpstreamTimeout   = NewError(ErrCodeUpstreamTimeout, "price source timed out", http.StatusGatewayTimeout, nil)
	ErrUpstreamHTTP      = NewError(ErrCodeUpstreamHTTP, "price source returned an error", http.StatusBadGateway, nil)
	ErrParseFailure      = NewError(ErrCodeParseFailure, "could not parse price source response", http.StatusBadGateway, nil)
	ErrValidationFailure = NewError(ErrCodeValidationFailure, "store failed location validation", http.StatusOK, nil)
	ErrCircuitOpen       = NewError(ErrCodeCircuitOpen, "price source circuit breaker is open", http.StatusServiceUnavailable, nil)
	ErrRateLimited       = NewError(ErrCodeRateLimited, "price source rate limit reached", http.StatusTooManyRequests, nil)
	ErrCacheUnavailable  = NewError(ErrCodeCacheUnavailable, "price cache unavailable", http.StatusServiceUnavailable, nil)
)
