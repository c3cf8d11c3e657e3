package dto

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned for explicit operations against an unknown,
// expired, or deleted session. GetOrCreate never returns it.
var ErrSessionNotFound = errors.New("session not found")

// ValidationError rejects a request before any external call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProviderError wraps an embedding or generation failure that survived the
// retry policy. Stage is "embedding" or "generation".
type ProviderError struct {
	Stage string
	Err   error
}

func (e ProviderError) Error() string {
	return fmt.Sprintf("%s provider failure: %v", e.Stage, e.Err)
}

func (e ProviderError) Unwrap() error { return e.Err }

// StoreError wraps a vector store failure (unreachable store or a tenant
// filter that could not be applied) after retry exhaustion.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("vector store %s failure: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }
