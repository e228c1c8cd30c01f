// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses
// and maps ledger errors onto status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"kesho/internal/core"
	"kesho/internal/services"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	payload    any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the value encoded as the response body.
func (b *JSONResponseBuilder) JSON(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	body, err := json.Marshal(b.payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

// errorBody is the shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		JSON(errorBody{Error: message, Code: code})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, "bad_request", message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(code, message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, code, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(code, message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, code, message)
}

// ConflictError creates a 409 Conflict error response.
func ConflictError(code, message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusConflict, code, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal", message)
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}

// TooManyRequestsError creates a 429 response for rate limited clients.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, try again later")
}

// errorMapping ties a sentinel to its status and machine-readable code.
type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{errMalformedBody, http.StatusBadRequest, "bad_request"},
	{core.ErrInvalidAmount, http.StatusUnprocessableEntity, "invalid_amount"},
	{core.ErrInvalidIncome, http.StatusUnprocessableEntity, "invalid_income"},
	{core.ErrInvalidCategoryName, http.StatusUnprocessableEntity, "invalid_category_name"},
	{core.ErrInvalidGroup, http.StatusUnprocessableEntity, "invalid_group"},
	{core.ErrInvalidDate, http.StatusUnprocessableEntity, "invalid_date"},
	{services.ErrNoNotificationMatch, http.StatusUnprocessableEntity, "no_match"},
	{core.ErrCategoryNotFound, http.StatusNotFound, "category_not_found"},
	{core.ErrNoSuchTransaction, http.StatusNotFound, "transaction_not_found"},
	{core.ErrDuplicateCategoryName, http.StatusConflict, "duplicate_category"},
}

// ErrorFor maps an error from the service onto a response. Anything not
// recognised is a 500 and its text is not echoed back.
func ErrorFor(err error) *JSONResponseBuilder {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return ErrorResponse(m.status, m.code, err.Error())
		}
	}
	return InternalServerError("internal error")
}
