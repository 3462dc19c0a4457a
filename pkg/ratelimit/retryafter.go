package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryAfterFallback is the wait applied when a rate-limited response
// carries no parsable Retry-After value.
const RetryAfterFallback = 5 * time.Second

// RetryAfter reads the advertised wait from a rate-limited response's
// headers. The Terraform Cloud API reports the wait in whole seconds.
// Returns RetryAfterFallback when the header is absent, unparsable, or
// negative.
func RetryAfter(headers http.Header) time.Duration {
	raw := strings.TrimSpace(headers.Get("Retry-After"))
	if raw == "" {
		return RetryAfterFallback
	}

	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return RetryAfterFallback
	}

	return time.Duration(seconds) * time.Second
}
