// Package ratelimit counts requests per key in fixed one-minute windows.
// MemoryLimiter keeps the counters in process; RedisLimiter keeps them in
// Redis so several server instances share one budget.
package ratelimit
