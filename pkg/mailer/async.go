package mailer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrClosed is returned by AsyncNotifier after Close.
var ErrClosed = errors.New("mailer: notifier closed")

// AsyncNotifier hands each notification to a background goroutine so callers
// return before the mail API answers. Close waits for sends in flight.
type AsyncNotifier struct {
	next    Notifier
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsyncNotifier wraps next. Each send gets its own timeout, detached from
// the caller's cancellation.
func NewAsyncNotifier(next Notifier, timeout time.Duration) *AsyncNotifier {
	return &AsyncNotifier{next: next, timeout: timeout}
}

// NotifyNewLead queues lead and returns at once. Send failures are logged.
func (a *AsyncNotifier) NotifyNewLead(ctx context.Context, lead LeadNotice) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		if err := a.next.NotifyNewLead(sctx, lead); err != nil {
			slog.Error("lead notification failed", "contact_id", lead.ID, "error", err)
		}
	}()
	return nil
}

// Close rejects new notifications and waits for queued ones until ctx is done.
func (a *AsyncNotifier) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
