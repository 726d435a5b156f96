package monday

import (
	"errors"
	"fmt"
)

// ErrBoardNotFound means discovery by name yielded no match. This is a
// configuration problem for the affected dataset and is never retried.
var ErrBoardNotFound = errors.New("board not found")

// UpstreamError means the Monday.com API was unreachable or kept failing
// until the retry ceiling was hit. A stale cache entry may still be usable,
// so callers surface this as a degraded response rather than a hard failure.
type UpstreamError struct {
	Attempts int
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("monday.com API failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// apiError is a non-transient GraphQL-level failure (bad query, auth).
type apiError struct {
	msg string
}

func (e *apiError) Error() string {
	return "monday.com API error: " + e.msg
}
