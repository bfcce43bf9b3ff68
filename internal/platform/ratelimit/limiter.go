package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Window is the length of one counting period.
const Window = time.Minute

// Limiter decides whether one more request for key fits the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

func windowKey(key string, now time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%d", key, now.Unix()/int64(Window/time.Second))
}

// MemoryLimiter is a Limiter for a single process.
type MemoryLimiter struct {
	limit int
	now   func() time.Time

	mu      sync.Mutex
	window  int64
	counter map[string]int
}

// NewMemoryLimiter allows limit requests per key per window.
func NewMemoryLimiter(limit int) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		now:     time.Now,
		counter: make(map[string]int),
	}
}

var _ Limiter = (*MemoryLimiter)(nil)

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Counters from earlier windows are dropped wholesale.
	if w := l.now().Unix() / int64(Window/time.Second); w != l.window {
		l.window = w
		l.counter = make(map[string]int)
	}

	l.counter[key]++
	return l.counter[key] <= l.limit, nil
}
