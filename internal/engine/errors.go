// internal/engine/errors.go
package engine

import (
	"context"
	"errors"
	"fmt"
)

// Pipeline errors
var (
	ErrInvalidQuery       = errors.New("invalid query")
	ErrRenderTimeout      = errors.New("render timeout")
	ErrMalformedPrice     = errors.New("malformed price")
	ErrNavigation         = errors.New("navigation failed")
	ErrBrowserUnavailable = errors.New("browser unavailable")
	ErrParse              = errors.New("failed to parse document")
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeInvalidQuery       ErrorCode = "INVALID_QUERY"
	ErrCodeRenderTimeout      ErrorCode = "RENDER_TIMEOUT"
	ErrCodeMalformedPrice     ErrorCode = "MALFORMED_PRICE"
	ErrCodeNavigation         ErrorCode = "NAVIGATION_FAILED"
	ErrCodeBrowserUnavailable ErrorCode = "BROWSER_UNAVAILABLE"
	ErrCodeParse              ErrorCode = "PARSE_ERROR"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

var sentinels = map[ErrorCode]error{
	ErrCodeInvalidQuery:       ErrInvalidQuery,
	ErrCodeRenderTimeout:      ErrRenderTimeout,
	ErrCodeMalformedPrice:     ErrMalformedPrice,
	ErrCodeNavigation:         ErrNavigation,
	ErrCodeBrowserUnavailable: ErrBrowserUnavailable,
	ErrCodeParse:              ErrParse,
}

// EngineError wraps errors with a code and additional context
type EngineError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is matches another EngineError with the same code, the sentinel for this
// code, or anything the underlying error matches.
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	if s, ok := sentinels[e.Code]; ok && s == target {
		return true
	}
	return errors.Is(e.Underlying, target)
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the error
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	e.Details[key] = value
	return e
}

// CodeOf classifies err into an ErrorCode
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	for code, s := range sentinels {
		if errors.Is(err, s) {
			return code
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeRenderTimeout
	}
	return ErrCodeInternal
}
