package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Transport-level retries are a separate budget from quality-loop
// iterations: a transient network failure calling a provider never consumes
// the revision budget.
const completeMaxRetries = 3

// retrySleepFunc is the sleep function used between retries (injectable for tests)
var retrySleepFunc = time.Sleep

// completeWithRetry retries transient completion failures with exponential
// backoff before surfacing a hard error.
func completeWithRetry(ctx context.Context, chat Chat, req CompletionRequest) (*CompletionResponse, error) {
	var lastErr error
	for attempt := 0; attempt < completeMaxRetries; attempt++ {
		resp, err := chat.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if attempt < completeMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			retrySleepFunc(backoff)
		}
	}
	return nil, fmt.Errorf("%s unavailable after %d attempts: %w", chat.Name(), completeMaxRetries, lastErr)
}

// isRetryableError checks error strings for transient transport failures.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "deadline exceeded") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "429") ||
		strings.Contains(s, "rate limit") ||
		strings.Contains(s, "status 500") ||
		strings.Contains(s, "status 502") ||
		strings.Contains(s, "status 503") ||
		strings.Contains(s, "overloaded")
}
