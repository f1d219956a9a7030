package infra

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// runJanitor calls sweep every interval on its own goroutine until ctx is done.
func runJanitor(ctx context.Context, clock clockwork.Clock, every time.Duration, sweep func()) {
	if every <= 0 {
		return
	}

	t := clock.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.Chan():
				sweep()
			}
		}
	}()
}
