package gateway

import (
	"fmt"
)

// UpstreamError wraps a failed gateway call. Error() is safe to show to
// callers; Detail holds the raw upstream response or transport error and
// must only be logged server-side.
type UpstreamError struct {
	Op         string // e.g. "create charge"
	StatusCode int    // 0 when the request never got a response
	Detail     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("payment gateway: failed to %s", e.Op)
}
