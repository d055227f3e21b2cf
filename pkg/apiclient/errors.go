package apiclient

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError is returned for 422 and 400 responses.
type ValidationError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + strings.Join(e.Fields[k], " ")
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// First returns the first message reported for field, if any.
func (e *ValidationError) First(field string) string {
	if msgs := e.Fields[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// AuthError means the request carried no valid session (401).
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return "unauthenticated: " + e.Message }

// AuthorizationError means the session may not perform the action (403).
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return "forbidden: " + e.Message }

// ConflictError is returned for 409, e.g. a second review of the same game.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return "conflict: " + e.Message }

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return "not found: " + e.Message }

// NetworkError wraps a failure to reach the API at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError covers every other unsuccessful status.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}
