// Package httputil provides HTTP client infrastructure shared by the
// external-service integrations (embedding providers, labeling backends).
//
// # Retry
//
// [Retry] wraps requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Only errors wrapped with [RetryableError] are retried; everything else
// fails fast. The delay doubles after each failed attempt:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
package httputil
