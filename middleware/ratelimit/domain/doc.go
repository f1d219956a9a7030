// Package domain defines the rate limit and concurrency contracts.
//
// It has no dependency on net/http or on concrete stores, so decisions can be
// unit tested with plain fakes.
package domain
