// Package llm abstracts the vendor HTTP layer the rest of promptlens talks
// to. Vendor-specific request/response framing lives outside this module;
// callers only depend on the Provider interface below.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind distinguishes why a Provider call failed.
type ErrorKind string

const (
	ErrTimeout      ErrorKind = "timeout"
	ErrNetwork      ErrorKind = "network"
	ErrUnauthorized ErrorKind = "unauthorized"
	ErrRateLimited  ErrorKind = "rate_limited"
	ErrMalformed    ErrorKind = "malformed"
)

// Error wraps a Provider failure with its kind so callers (the judge, the
// AI rewriter) can decide whether to retry, fall back, or surface it.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("llm: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified Error.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the ErrorKind from err, defaulting to ErrNetwork for
// unclassified failures.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrNetwork
}

// Provider is the abstract LLM boundary: a single call taking a system
// prompt, a user prompt, a sampling temperature, and returning generated
// text or a classified Error. Implementations are responsible for honoring
// ctx cancellation and their own timeout.
type Provider interface {
	Call(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}
