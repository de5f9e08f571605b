package invoker

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"
)

// Limited caps the number of concurrent invocations of the wrapped backend.
// Every invocation competes for the same compute, so queries beyond the cap
// wait for a slot instead of starting another model process.
type Limited struct {
	Invoker
	sem     *semaphore.Weighted
	max     int64
	timeout time.Duration
}

// Limit wraps inv so that at most n invocations run at once. A positive
// timeout bounds the whole invocation, the wait for a slot included, so a
// queued query fails with ErrTimeout instead of waiting behind every query
// ahead of it. A non-positive n returns inv unchanged.
func Limit(inv Invoker, n int64, timeout time.Duration) Invoker {
	if n <= 0 {
		return inv
	}
	return &Limited{Invoker: inv, sem: semaphore.NewWeighted(n), max: n, timeout: timeout}
}

// Invoke waits for a free slot, honouring ctx and the timeout, then runs the
// wrapped backend under the same deadline.
func (l *Limited) Invoke(ctx context.Context, prompt string) (string, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	if !l.sem.TryAcquire(1) {
		slog.Debug("waiting for model slot", "max_concurrent", l.max)
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return "", ContextError(ctx, l.Model())
		}
	}
	defer l.sem.Release(1)

	return l.Invoker.Invoke(ctx, prompt)
}
