package infra

import (
	"context"
	"sync"

	"quote-api/middleware/ratelimit/domain"
)

// ChanPool is a buffered channel used as a counting semaphore.
type ChanPool struct {
	sem chan struct{}
}

var _ domain.SlotPool = (*ChanPool)(nil)

func NewChanPool(size int) *ChanPool {
	if size < 1 {
		size = 1
	}
	return &ChanPool{sem: make(chan struct{}, size)}
}

func (p *ChanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, false
	}

	var once sync.Once
	return func() { once.Do(func() { <-p.sem }) }, true
}

func (p *ChanPool) InUse() int { return len(p.sem) }
func (p *ChanPool) Size() int  { return cap(p.sem) }
