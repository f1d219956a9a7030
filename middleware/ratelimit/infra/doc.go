// Package infra contains the concrete implementations of the domain contracts.
//
//   - MemoryWindowStore / RedisWindowStore: fixed-window counters per key
//   - BucketStore: token bucket per key using golang.org/x/time/rate
//   - ChanPool: channel semaphore for the concurrency limit
//   - MemoryStatsStore / RedisStatsStore: decision statistics
package infra
