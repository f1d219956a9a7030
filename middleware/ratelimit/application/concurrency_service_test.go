package application

import (
	"context"
	"testing"
	"time"

	"quote-api/middleware/ratelimit/infra"
)

type blockingPool struct{}

func (p *blockingPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case <-ctx.Done():
		return nil, false
	case <-time.After(5 * time.Second):
		return nil, false
	}
}

func (p *blockingPool) InUse() int { return 0 }
func (p *blockingPool) Size() int  { return 0 }

type recordingObserver struct {
	acquired []int
	released []int
	rejected int
}

func (o *recordingObserver) SlotAcquired(inUse int) { o.acquired = append(o.acquired, inUse) }
func (o *recordingObserver) SlotReleased(inUse int) { o.released = append(o.released, inUse) }
func (o *recordingObserver) SlotRejected()          { o.rejected++ }

func TestConcurrencyService_Acquire_AllowsWhenNoPool(t *testing.T) {
	release, ok := ConcurrencyService{}.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected ok")
	}
	release()
}

func TestConcurrencyService_Acquire_UsesTimeout(t *testing.T) {
	obs := &recordingObserver{}
	svc := ConcurrencyService{Pool: &blockingPool{}, AcquireTimeout: 10 * time.Millisecond, Observer: obs}

	if _, ok := svc.Acquire(context.Background()); ok {
		t.Fatalf("expected timeout and ok=false")
	}
	if obs.rejected != 1 {
		t.Fatalf("expected 1 rejection, got %d", obs.rejected)
	}
}

func TestConcurrencyService_Acquire_ReportsInUse(t *testing.T) {
	obs := &recordingObserver{}
	svc := ConcurrencyService{Pool: infra.NewChanPool(2), Observer: obs}

	r1, ok := svc.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected first acquire to succeed")
	}
	r2, ok := svc.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected second acquire to succeed")
	}
	r2()
	r2()
	r1()

	if len(obs.acquired) != 2 || obs.acquired[0] != 1 || obs.acquired[1] != 2 {
		t.Fatalf("unexpected acquired gauge values %v", obs.acquired)
	}
	if len(obs.released) != 2 || obs.released[0] != 1 || obs.released[1] != 0 {
		t.Fatalf("unexpected released gauge values %v", obs.released)
	}
}
