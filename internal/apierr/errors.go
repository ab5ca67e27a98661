package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/onnwee/forcegraph/internal/graph"
	"github.com/onnwee/forcegraph/internal/logger"
)

// ErrorCode represents a structured error code
type ErrorCode string

// Error code constants organized by category
const (
	// GRAPH_ - Graph mutation errors
	ErrGraphNodeNotFound ErrorCode = "GRAPH_NODE_NOT_FOUND"
	ErrGraphNodeExists   ErrorCode = "GRAPH_NODE_EXISTS"
	ErrGraphEdgeNotFound ErrorCode = "GRAPH_EDGE_NOT_FOUND"
	ErrGraphEdgeExists   ErrorCode = "GRAPH_EDGE_EXISTS"
	ErrGraphEdgeEndpoint ErrorCode = "GRAPH_EDGE_ENDPOINT"
	ErrGraphSelfLoop     ErrorCode = "GRAPH_SELF_LOOP"
	ErrGraphNotDragging  ErrorCode = "GRAPH_NOT_DRAGGING"

	// SYSTEM_ - System and server errors
	ErrSystemInternal    ErrorCode = "SYSTEM_INTERNAL"
	ErrSystemUnavailable ErrorCode = "SYSTEM_UNAVAILABLE"

	// VALIDATION_ - Request validation errors
	ErrValidationInvalidJSON  ErrorCode = "VALIDATION_INVALID_JSON"
	ErrValidationMissingField ErrorCode = "VALIDATION_MISSING_FIELD"
	ErrValidationInvalidValue ErrorCode = "VALIDATION_INVALID_VALUE"

	// RESOURCE_ - Resource errors
	ErrResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"

	// RATE_LIMIT_ - Rate limiting errors
	ErrRateLimitGlobal ErrorCode = "RATE_LIMIT_GLOBAL"
	ErrRateLimitIP     ErrorCode = "RATE_LIMIT_IP"
)

// Error represents a structured API error
type Error struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	status    int                    // HTTP status code (not serialized)
}

// ErrorResponse is the top-level error response wrapper
type ErrorResponse struct {
	Error *Error `json:"error"`
}

// New creates a new API error
func New(code ErrorCode, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		status:  status,
	}
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// WithRequestID adds a request ID to the error
func (e *Error) WithRequestID(requestID string) *Error {
	e.RequestID = requestID
	return e
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Status returns the HTTP status code
func (e *Error) Status() int {
	return e.status
}

// WriteError writes a structured error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status())
	json.NewEncoder(w).Encode(ErrorResponse{Error: err})
}

// graphCodes maps store sentinels to codes and statuses.
var graphCodes = []struct {
	target error
	code   ErrorCode
	status int
}{
	{graph.ErrNodeNotFound, ErrGraphNodeNotFound, http.StatusNotFound},
	{graph.ErrEdgeNotFound, ErrGraphEdgeNotFound, http.StatusNotFound},
	{graph.ErrNodeExists, ErrGraphNodeExists, http.StatusConflict},
	{graph.ErrEdgeExists, ErrGraphEdgeExists, http.StatusConflict},
	{graph.ErrNotDragging, ErrGraphNotDragging, http.StatusConflict},
	{graph.ErrEdgeEndpoint, ErrGraphEdgeEndpoint, http.StatusUnprocessableEntity},
	{graph.ErrSelfLoop, ErrGraphSelfLoop, http.StatusUnprocessableEntity},
	{graph.ErrInvalidPoint, ErrValidationInvalidValue, http.StatusBadRequest},
}

// FromGraph converts a graph store error into an API error. Unknown errors
// become SYSTEM_INTERNAL without exposing their text.
func FromGraph(err error) *Error {
	for _, m := range graphCodes {
		if errors.Is(err, m.target) {
			return New(m.code, err.Error(), m.status)
		}
	}
	return SystemInternal("")
}

// FromValidation converts validator errors into a VALIDATION_ error listing
// each failed field and rule.
func FromValidation(err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ValidationInvalidValue("", err.Error())
	}
	fields := make(map[string]interface{}, len(verrs))
	names := make([]string, 0, len(verrs))
	code := ErrValidationInvalidValue
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
		names = append(names, fe.Field())
		if fe.Tag() == "required" && len(verrs) == 1 {
			code = ErrValidationMissingField
		}
	}
	return New(code, "Invalid fields: "+strings.Join(names, ", "), http.StatusBadRequest).
		WithDetails(map[string]interface{}{"fields": fields})
}

// SystemInternal creates an internal server error
func SystemInternal(message string) *Error {
	if message == "" {
		message = "Internal server error"
	}
	return New(ErrSystemInternal, message, http.StatusInternalServerError)
}

// SystemUnavailable creates a service unavailable error
func SystemUnavailable(message string) *Error {
	if message == "" {
		message = "Service unavailable"
	}
	return New(ErrSystemUnavailable, message, http.StatusServiceUnavailable)
}

// ValidationInvalidJSON creates an invalid JSON error
func ValidationInvalidJSON() *Error {
	return New(ErrValidationInvalidJSON, "Invalid JSON request body", http.StatusBadRequest)
}

// ValidationMissingField creates a missing field error
func ValidationMissingField(field string) *Error {
	return New(ErrValidationMissingField, "Missing required field: "+field, http.StatusBadRequest).
		WithDetails(map[string]interface{}{"field": field})
}

// ValidationInvalidValue creates an invalid value error
func ValidationInvalidValue(field string, message string) *Error {
	if message == "" {
		message = "Invalid value for field: " + field
	}
	e := New(ErrValidationInvalidValue, message, http.StatusBadRequest)
	if field != "" {
		e.WithDetails(map[string]interface{}{"field": field})
	}
	return e
}

// ResourceNotFound creates a resource not found error
func ResourceNotFound(resourceType string) *Error {
	return New(ErrResourceNotFound, resourceType+" not found", http.StatusNotFound).
		WithDetails(map[string]interface{}{"resource_type": resourceType})
}

// RateLimitGlobal creates a global rate limit error
func RateLimitGlobal() *Error {
	return New(ErrRateLimitGlobal, "Rate limit exceeded - too many requests globally", http.StatusTooManyRequests)
}

// RateLimitIP creates an IP rate limit error
func RateLimitIP() *Error {
	return New(ErrRateLimitIP, "Rate limit exceeded - too many requests from your IP", http.StatusTooManyRequests)
}

// GetRequestID extracts the request ID from the context
func GetRequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		return reqID
	}
	return ""
}

// WriteErrorWithContext writes a structured error response with request ID from context
func WriteErrorWithContext(w http.ResponseWriter, r *http.Request, err *Error) {
	if reqID := GetRequestID(r.Context()); reqID != "" {
		err = err.WithRequestID(reqID)
	}
	if err.Status() >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "code", err.Code, "path", r.URL.Path)
	}
	WriteError(w, err)
}
