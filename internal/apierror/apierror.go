// Package apierror provides the standardized error shapes for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import "errors"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

// Kind classifies business failures so handlers can pick an HTTP status.
// Every engine failure is one of these; none is a process crash.
type Kind int

const (
	KindValidation   Kind = iota + 1 // malformed input
	KindNotFound                     // referenced entity does not exist
	KindConflict                     // invariant violated (state conflict)
	KindUnauthorized                 // missing/invalid/expired override code
)

// BusinessError is the single caller-visible failure shape of the engines.
type BusinessError struct {
	Kind Kind
	Msg  string
}

func (e *BusinessError) Error() string { return e.Msg }

func Validation(msg string) error   { return &BusinessError{Kind: KindValidation, Msg: msg} }
func NotFound(msg string) error     { return &BusinessError{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) error     { return &BusinessError{Kind: KindConflict, Msg: msg} }
func Unauthorized(msg string) error { return &BusinessError{Kind: KindUnauthorized, Msg: msg} }

// KindOf returns the Kind of err, or 0 when err is not a BusinessError.
func KindOf(err error) Kind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return 0
}
