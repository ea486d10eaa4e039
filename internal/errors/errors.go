package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError is a client-facing failure. The ErrorHandler turns it into an
// RFC 7807 problem whose detail is Message and whose error_code is ErrorCode.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes one invalid request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the details payload for several invalid fields
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// New creates an APIError without details
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

// NewWithDetails creates an APIError carrying details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message, Details: details}
}

// Error codes
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeMissingParameter  = "MISSING_PARAMETER"
	CodeInvalidParameter  = "INVALID_PARAMETER"
	CodeUnsupportedFile   = "UNSUPPORTED_FILE"
	CodeInvalidCSV        = "INVALID_CSV"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodePayloadTooLarge   = "PAYLOAD_TOO_LARGE"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeRenderFailed      = "RENDER_FAILED"
	CodeWebSocketUpgrade  = "WEBSOCKET_UPGRADE_FAILED"
)

var (
	// ErrUnsupportedFile rejects uploads whose name does not end in .csv
	ErrUnsupportedFile = New(http.StatusBadRequest, CodeUnsupportedFile, "Only CSV files supported")

	// ErrPayloadTooLarge rejects uploads over the configured size limit
	ErrPayloadTooLarge = New(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "Uploaded file is too large")
)

// InvalidRequestWithError reports a request that could not be decoded
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// MissingUpload reports a multipart request without the named file field
func MissingUpload(field string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeMissingParameter,
		fmt.Sprintf("Multipart field %q with a CSV file is required", field), ValidationError{
			Field:   field,
			Message: "required",
		})
}

// InvalidCSV reports an upload that could not be read as a transactions table
func InvalidCSV(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidCSV, "Invalid CSV format", err.Error())
}

// InvalidParameter reports a malformed query or form parameter
func InvalidParameter(name string, err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidParameter, fmt.Sprintf("Invalid value for %s", name), ValidationError{
		Field:   name,
		Message: err.Error(),
	})
}

// NewValidationErrors reports several invalid fields at once
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationErrors{Errors: errs})
}

// UnsupportedFormat reports an unknown output format
func UnsupportedFormat(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeUnsupportedFormat, "Unsupported output format", err.Error())
}

// RenderFailed reports a report that was assembled but could not be rendered
func RenderFailed(err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, CodeRenderFailed, "Report rendering failed", err.Error())
}

// WebSocketUpgradeFailed reports a rejected report-feed handshake
func WebSocketUpgradeFailed(status int, reason error) *APIError {
	return NewWithDetails(status, CodeWebSocketUpgrade, "WebSocket upgrade failed", reason.Error())
}
