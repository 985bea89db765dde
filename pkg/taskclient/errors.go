package taskclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when the requested task does not exist,
	// including tasks that were already deleted.
	ErrNotFound = errors.New("task api: not found")

	// ErrUnauthorized is returned when the server rejects the request with
	// 401. The client drops its held credential before returning it.
	ErrUnauthorized = errors.New("task api: unauthorized")
)

// TransportError reports that no HTTP response was obtained: connection
// refused, DNS failure, timeout, canceled context. The server state is
// unknown, so the operation may be worth retrying.
type TransportError struct {
	Op  string // "GET /tasks" style description of the attempted call
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("task api: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError reports a 400 response. Fields maps each rejected field
// to its messages; Message is set when the server returned a single
// message instead of a field map.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Message != "" {
			return "task api: validation failed: " + e.Message
		}
		return "task api: validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], "; "))
	}
	return "task api: validation failed: " + strings.Join(parts, ", ")
}

// FieldMessages returns the messages recorded for field, or nil.
func (e *ValidationError) FieldMessages(field string) []string {
	if e.Fields == nil {
		return nil
	}
	return e.Fields[field]
}

// ServerError reports a 5xx or any status the client does not recognize.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("task api: server error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("task api: server error: status %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether err describes a transport-level failure that
// may succeed on retry. Failures caused by an explicitly canceled context
// are not retryable; neither is any error the server actually answered.
func Retryable(err error) bool {
	var te *TransportError
	if !errors.As(err, &te) {
		return false
	}
	return !errors.Is(te.Err, context.Canceled)
}

type apiErrorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// responseError maps a non-2xx response onto the error taxonomy. This is
// the only place response status and error body shape are inspected;
// everything above it works with the returned types.
func responseError(statusCode int, body []byte) error {
	var payload apiErrorBody
	// Tolerate empty and non-JSON bodies; the status alone is enough to
	// classify the failure.
	_ = json.Unmarshal(body, &payload)

	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return &ValidationError{Message: payload.Message, Fields: payload.Errors}
	}

	message := payload.Message
	if message == "" {
		message = strings.TrimSpace(string(body))
		if len(message) > 200 {
			message = message[:200]
		}
	}
	return &ServerError{StatusCode: statusCode, Message: message}
}
