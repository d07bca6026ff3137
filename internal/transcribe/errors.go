package transcribe

import "errors"

// ErrRateLimit indicates the API rate limit was exceeded (temporary, retryable).
var ErrRateLimit = errors.New("rate limit exceeded")

// ErrQuotaExceeded indicates the API quota was exceeded (billing issue, not retryable).
var ErrQuotaExceeded = errors.New("quota exceeded")

// ErrTimeout indicates a request timed out.
var ErrTimeout = errors.New("request timeout")

// ErrAuthFailed indicates API authentication failed (invalid key).
var ErrAuthFailed = errors.New("authentication failed")

// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
var ErrBadRequest = errors.New("bad request")
