// Package errors defines the error taxonomy shared by the models and controllers.
//
// Three kinds of failure reach callers of a controller operation:
//   - RequestError: the transport failed (network, timeout, non-2xx without an API error body).
//   - APIError: the call succeeded at the HTTP level but Reddit rejected it.
//   - RetrievalError: the call succeeded but returned data the controller cannot trust.
//
// ConfigError, AuthError, ParseError and StateError cover construction, decoding and misuse.
package errors

import (
	"fmt"
	"strings"
)

// ConfigError indicates a problem with the client configuration.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// AuthError indicates an authentication failure.
type AuthError struct {
	// StatusCode is the HTTP status code (if from an HTTP response)
	StatusCode int
	// Message contains the detailed error message
	Message string
	// Body contains the raw response body (if available)
	Body string
	// Err contains the underlying error if available
	Err error
}

func (e *AuthError) Error() string {
	var parts []string

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status code %d", e.StatusCode))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Body != "" {
		parts = append(parts, fmt.Sprintf("body: %q", e.Body))
	}
	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("err: %v", e.Err))
	}

	if len(parts) == 0 {
		return "auth error"
	}
	return "auth error: " + strings.Join(parts, ", ")
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// StateError indicates an operation that is not valid for the current state of a controller,
// such as importing data that describes a different thing or submitting an already submitted post.
type StateError struct {
	// Operation is the name of the operation that was attempted
	Operation string
	// Message contains the detailed error message
	Message string
}

func (e *StateError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("state error during %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("state error: %s", e.Message)
}

// RequestError indicates a transport-level failure. It is never retried by the library.
type RequestError struct {
	// Operation is the name of the API operation that failed
	Operation string
	// URL is the URL that was being accessed
	URL string
	// StatusCode is set when the server answered with a non-2xx status
	StatusCode int
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("status %d: %s", e.StatusCode, msg)
	}

	if e.Operation != "" && e.URL != "" {
		return fmt.Sprintf("request error during %s to %s: %s", e.Operation, e.URL, msg)
	} else if e.Operation != "" {
		return fmt.Sprintf("request error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("request error: %s", msg)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ParseError indicates a problem decoding an API response.
type ParseError struct {
	// Operation is the name of the API operation where parsing failed
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" {
		return fmt.Sprintf("parse error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("parse error: %s", msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// APIError is an application-level rejection encoded in a Reddit response body.
type APIError struct {
	// StatusCode is the HTTP status code, 0 when the rejection came with a 2xx response
	StatusCode int
	// ErrorCode is the error code from Reddit (e.g. "RATELIMIT", "CONVERSATION_NOT_ARCHIVABLE")
	ErrorCode string
	// Message is the human readable message from Reddit
	Message string
	// Field names the request parameter Reddit blamed, if any
	Field string
	// Details contains every error entry of the envelope
	Details interface{}
}

func (e *APIError) Error() string {
	var sb strings.Builder
	sb.WriteString("reddit API error")
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " (status %d)", e.StatusCode)
	}
	if e.ErrorCode != "" {
		fmt.Fprintf(&sb, " %s", e.ErrorCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&sb, ": %s", e.Message)
	}
	if e.Field != "" {
		fmt.Fprintf(&sb, " [field %s]", e.Field)
	}
	return sb.String()
}

// RetrievalError indicates that a call succeeded but produced data that does not describe the
// requested thing, e.g. an About lookup that returned nothing or a different fullname.
type RetrievalError struct {
	// Operation is the controller operation that failed
	Operation string
	// Fullname is the identifier that was requested
	Fullname string
	// Message contains the detailed error message
	Message string
}

func (e *RetrievalError) Error() string {
	if e.Fullname != "" {
		return fmt.Sprintf("retrieval error during %s of %s: %s", e.Operation, e.Fullname, e.Message)
	}
	return fmt.Sprintf("retrieval error during %s: %s", e.Operation, e.Message)
}
