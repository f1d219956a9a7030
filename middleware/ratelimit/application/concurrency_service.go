package application

import (
	"context"
	"time"

	"quote-api/middleware/ratelimit/domain"
)

// ConcurrencyService takes a slot per request, waiting at most AcquireTimeout,
// and reports every outcome to Observer.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
	Observer       domain.SlotObserver
}

// Acquire tries to take a slot. With AcquireTimeout <= 0 it waits until ctx is
// done. When ok is false no slot was taken and release is nil.
func (s ConcurrencyService) Acquire(ctx context.Context) (release func(), ok bool) {
	if s.Pool == nil {
		return func() {}, true
	}

	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	release, ok = s.Pool.Acquire(ctx)
	if !ok {
		if s.Observer != nil {
			s.Observer.SlotRejected()
		}
		return nil, false
	}
	if s.Observer == nil {
		return release, true
	}

	s.Observer.SlotAcquired(s.Pool.InUse())
	released := false
	return func() {
		if released {
			return
		}
		released = true
		release()
		s.Observer.SlotReleased(s.Pool.InUse())
	}, true
}
