package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrEmptyResponse is returned when the model produced no text at all.
var ErrEmptyResponse = errors.New("empty response")

// Errors that stop the fallback chain: another model on the same key would
// fail the same way.
type (
	// ErrInvalidAPIKey means the backend rejected the credentials.
	ErrInvalidAPIKey struct{ Err error }

	// ErrQuotaExceeded means the key has used up its quota.
	ErrQuotaExceeded struct{ Err error }
)

func (e *ErrInvalidAPIKey) Error() string { return "invalid API key: " + errText(e.Err) }
func (e *ErrInvalidAPIKey) Unwrap() error { return e.Err }
func (e *ErrQuotaExceeded) Error() string { return "quota exceeded: " + errText(e.Err) }
func (e *ErrQuotaExceeded) Unwrap() error { return e.Err }

// ErrRateLimit is a 429 that is not a quota problem. RetryAfter is zero when
// the backend gave no hint.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry in %s: %s", e.RetryAfter, errText(e.Err))
	}
	return "rate limited: " + errText(e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers network failures and 5xx answers.
type ErrProviderUnavailable struct{ Err error }

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "provider unavailable"
	}
	return "provider unavailable: " + e.Err.Error()
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrInvalidResponse holds an answer that is not JSON or does not match the
// requested schema. Content is the raw text, when there was any.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string { return "malformed answer: " + errText(e.Err) }
func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded holds an answer cut off at the token limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return fmt.Sprintf("answer truncated at the token limit after %d bytes", len(e.Content))
}

// ErrTimeout is one model attempt running past its own deadline while the
// caller's context was still live.
type ErrTimeout struct {
	Model string
	After time.Duration
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("%s: no answer within %s", e.Model, e.After)
}

func errText(err error) string {
	if err == nil {
		return "unknown cause"
	}
	return err.Error()
}
