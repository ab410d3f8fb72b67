// Package apierr classifies speech-to-text API failures into sentinel errors
// and retries transient ones with exponential backoff.
//
// Backends wrap provider errors with fmt.Errorf("%s: %w", msg, sentinel) at the
// adapter boundary. Callers check with errors.Is(err, apierr.ErrRateLimit).
package apierr

import "errors"

// Sentinel errors for API interaction failures.
var (
	// ErrRateLimit indicates the API rate limit was exceeded (retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the account quota is exhausted (not retryable).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates a request timed out (retryable).
	ErrTimeout = errors.New("request timeout")

	// ErrServer indicates a 5xx response from the provider (retryable).
	ErrServer = errors.New("provider server error")

	// ErrAuthFailed indicates the API key was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error (4xx) not otherwise classified,
	// typically an unsupported or oversized upload.
	ErrBadRequest = errors.New("bad request")
)
