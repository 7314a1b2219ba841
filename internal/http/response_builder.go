// Package http exposes the ledger, analytics and insight generator as a JSON API.
//
// This file implements the builder used for every JSON response, including
// the error envelope {error, error_description, fields}.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"budgetbuddy/internal/core"
)

// Error codes carried in the "error" member of an error body.
const (
	codeInvalidRequest = "invalid_request"
	codeValidation     = "validation_error"
	codeNotFound       = "not_found"
	codeConflict       = "conflict"
	codeRateLimited    = "rate_limited"
	codeServerError    = "server_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description,omitempty"`
	Fields           map[string]string `json:"fields,omitempty"`
}

// MessageResponse is a body carrying only a human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ResponseBuilder provides a fluent API for JSON responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
	raw        []byte
}

// NewResponse creates a builder with a 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets a value to be encoded as the body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.body = v
	b.raw = nil
	return b
}

// Raw sets a pre-encoded body with its content type.
func (b *ResponseBuilder) Raw(contentType string, content []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.raw = content
	b.body = nil
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	switch {
	case b.raw != nil:
		w.WriteHeader(b.statusCode)
		_, _ = w.Write(b.raw)
	case b.body != nil && b.statusCode != http.StatusNoContent:
		payload, err := json.Marshal(b.body)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"server_error"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(b.statusCode)
		_, _ = w.Write(append(payload, '\n'))
	default:
		w.WriteHeader(b.statusCode)
	}
}

// OK is a 200 with a JSON body.
func OK(v any) *ResponseBuilder { return NewResponse().JSON(v) }

// Created is a 201 with a JSON body.
func Created(v any) *ResponseBuilder { return NewResponse().Status(http.StatusCreated).JSON(v) }

// NoContent is an empty 204.
func NoContent() *ResponseBuilder { return NewResponse().Status(http.StatusNoContent) }

// ErrorResult builds an error envelope with the given status.
func ErrorResult(statusCode int, code, description string) *ResponseBuilder {
	return NewResponse().
		Status(statusCode).
		JSON(ErrorResponse{Error: code, ErrorDescription: description})
}

// BadRequestError creates a 400 for malformed input.
func BadRequestError(description string) *ResponseBuilder {
	return ErrorResult(http.StatusBadRequest, codeInvalidRequest, description)
}

// ValidationFailed creates a 400 listing each offending field.
func ValidationFailed(v *core.ValidationError) *ResponseBuilder {
	return NewResponse().
		Status(http.StatusBadRequest).
		JSON(ErrorResponse{
			Error:            codeValidation,
			ErrorDescription: "One or more fields are invalid",
			Fields:           v.Fields,
		})
}

// NotFoundError creates a 404.
func NotFoundError(description string) *ResponseBuilder {
	return ErrorResult(http.StatusNotFound, codeNotFound, description)
}

// ConflictError creates a 409.
func ConflictError(description string) *ResponseBuilder {
	return ErrorResult(http.StatusConflict, codeConflict, description)
}

// TooManyRequestsError creates a 429.
func TooManyRequestsError() *ResponseBuilder {
	return ErrorResult(http.StatusTooManyRequests, codeRateLimited, "Rate limit exceeded, please try again later")
}

// InternalServerError creates a 500 that never exposes the cause.
func InternalServerError(description string) *ResponseBuilder {
	return ErrorResult(http.StatusInternalServerError, codeServerError, description)
}

// errorResult maps a service error onto its response. fallback describes
// the failed operation for the 500 case.
func errorResult(err error, fallback string) *ResponseBuilder {
	var v *core.ValidationError
	switch {
	case errors.As(err, &v):
		return ValidationFailed(v)
	case core.IsNotFound(err):
		return NotFoundError(err.Error())
	case core.IsConflict(err):
		return ConflictError(err.Error())
	default:
		return InternalServerError(fallback)
	}
}
