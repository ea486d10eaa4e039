package errors

import (
	"fmt"
)

// ErrorType classifies internal failures. Client mistakes are APIError
// values instead.
type ErrorType string

const (
	ErrTypeConfig   ErrorType = "CONFIG"
	ErrTypeExternal ErrorType = "EXTERNAL"
	ErrTypeRender   ErrorType = "RENDER"
)

// AppError is a server-side failure carrying its cause and optional
// key/value context for logs and problem responses.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a bare AppError of the same type, so
// errors.Is(err, &AppError{Type: ErrTypeExternal}) matches any external failure.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Message == "" && t.Cause == nil && t.Type == e.Type
}

// WithContext adds a context value and returns e
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func newAppError(t ErrorType, message string, cause error) *AppError {
	return &AppError{Type: t, Message: message, Cause: cause, Context: map[string]interface{}{}}
}

// NewConfigError reports an unusable configuration value
func NewConfigError(key string, cause error) *AppError {
	return newAppError(ErrTypeConfig, "invalid value for "+key, cause).WithContext("key", key)
}

// NewExternalError reports a failed call to an outside service
func NewExternalError(service string, cause error) *AppError {
	return newAppError(ErrTypeExternal, service+" request failed", cause).WithContext("service", service)
}

// NewRenderError reports a report that could not be rendered in format
func NewRenderError(format string, cause error) *AppError {
	return newAppError(ErrTypeRender, "failed to render "+format+" report", cause).WithContext("format", format)
}
