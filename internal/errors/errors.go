// Package errors provides the structured error type used across argus.
//
// Every layer of the indexing and retrieval pipeline surfaces one of a
// fixed set of kinds (I/O, Parse, Database, Embedding, Config, NotFound)
// rather than ad-hoc error strings, so callers — the CLI, the MCP tool
// server — can map a failure to an exit code and a user-facing suggestion
// without string-matching error text.
package errors

import "fmt"

// Kind classifies an ArgusError into one of the fixed error categories.
type Kind string

const (
	KindIO        Kind = "IO"
	KindParse     Kind = "PARSE"
	KindDatabase  Kind = "DATABASE"
	KindEmbedding Kind = "EMBEDDING"
	KindConfig    Kind = "CONFIG"
	KindNotFound  Kind = "NOT_FOUND"
)

// ArgusError is the structured error type returned by every argus component.
type ArgusError struct {
	Kind       Kind
	Message    string
	Cause      error
	Retryable  bool
	Suggestion string
}

// Error implements the error interface.
func (e *ArgusError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, enabling errors.Is/As across the chain.
func (e *ArgusError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *ArgusError of the same Kind.
func (e *ArgusError) Is(target error) bool {
	t, ok := target.(*ArgusError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithSuggestion attaches an actionable, user-facing hint and returns the
// error for chaining.
func (e *ArgusError) WithSuggestion(s string) *ArgusError {
	e.Suggestion = s
	return e
}

// WithRetryable marks the error retryable and returns it for chaining.
func (e *ArgusError) WithRetryable(r bool) *ArgusError {
	e.Retryable = r
	return e
}

func newError(kind Kind, message string, cause error) *ArgusError {
	return &ArgusError{Kind: kind, Message: message, Cause: cause}
}

// IO builds an I/O-kind error: filesystem read/write failures.
func IO(message string, cause error) *ArgusError {
	return newError(KindIO, message, cause)
}

// Parse builds a Parse-kind error: grammar setup or tree generation failed.
func Parse(message string, cause error) *ArgusError {
	return newError(KindParse, message, cause)
}

// Database builds a Database-kind error: persistence-layer failure or
// schema/dimension conflict.
func Database(message string, cause error) *ArgusError {
	return newError(KindDatabase, message, cause)
}

// Embedding builds an Embedding-kind error: embedding-service HTTP or
// decoding failure. Embedding errors default to retryable since most
// originate from transient HTTP conditions.
func Embedding(message string, cause error) *ArgusError {
	return (&ArgusError{Kind: KindEmbedding, Message: message, Cause: cause}).WithRetryable(true)
}

// Config builds a Config-kind error: missing API key, malformed config.
func Config(message string, cause error) *ArgusError {
	return newError(KindConfig, message, cause)
}

// NotFound builds a NotFound-kind error: requested resource absent.
func NotFound(message string, cause error) *ArgusError {
	return newError(KindNotFound, message, cause)
}

// IsRetryable reports whether err is an *ArgusError marked retryable.
func IsRetryable(err error) bool {
	if ae, ok := err.(*ArgusError); ok {
		return ae.Retryable
	}
	return false
}

// KindOf extracts the Kind from err, or "" if err is not an *ArgusError.
func KindOf(err error) Kind {
	if ae, ok := err.(*ArgusError); ok {
		return ae.Kind
	}
	return ""
}
