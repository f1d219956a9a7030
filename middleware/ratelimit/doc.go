// Package ratelimit provides net/http adapters for rate and concurrency limits.
//
// Layers:
//
//   - domain: contracts and types (no net/http)
//   - application: use cases (fixed-window decision, token bucket, acquire/timeout) without net/http
//   - infra: concrete stores (memory and Redis windows, token buckets, semaphore, stats)
//   - ratelimit (this package): HTTP middlewares, client key extraction, status/header translation
//
// Request flow for a limited route:
//
//  1. Extract the client key (header, X-Forwarded-For or RemoteAddr) and scope it to the route
//  2. Ask the application layer for a decision
//  3. When denied, answer through the Deny hook (429 by default)
//  4. When allowed, call the next handler
package ratelimit
