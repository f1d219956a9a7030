package domain

import "context"

// SlotPool bounds the number of requests served at once.
//
// Acquire blocks until a slot is free or ctx is done. Calling release more
// than once has no further effect.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
	// InUse is the number of slots currently held.
	InUse() int
	Size() int
}

// SlotObserver is told about every acquire outcome, e.g. to export an
// in-flight gauge and a rejection counter.
type SlotObserver interface {
	SlotAcquired(inUse int)
	SlotReleased(inUse int)
	SlotRejected()
}
