// Package application holds the rate limit and concurrency use cases.
//
// It depends only on domain and knows nothing about net/http.
// Ex.: WindowService.Decide(ctx, key) returns a Decision (allow/deny + retry-after).
package application
