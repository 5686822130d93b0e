/*
Package alloc keeps the real-time goroutine away from blocking memory work.

A goroutine that drives an engine calls BecomeRealTime once. From then on
memory it wants to release is handed to the returned Reclaimer, which queues
it to a dedicated worker goroutine without ever blocking. If the queue is
full, the memory is dropped and accounted in a process-wide leak counter:
leaking is preferred over stalling audio.

In verification builds (the rtcheck build tag) Alloc fails when called from a
real-time goroutine, so accidental allocations on the hot path surface in
tests.
*/
package alloc

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// QueueSize is the capacity of each reclamation queue.
const QueueSize = 256

// ErrRealTimeAlloc is returned when allocation is attempted on real-time
// goroutine in verification builds.
var ErrRealTimeAlloc = errors.New("allocation on real-time goroutine")

var (
	// reclaimers maps goroutine ids to their reclaimers.
	reclaimers sync.Map

	// strict enables allocation checks. It's set by build tags.
	strict = strictBuild

	leaked    atomic.Int64
	reclaimed atomic.Int64
)

// BecomeRealTime declares calling goroutine as real-time. The first call
// spawns a reclamation worker bound to the goroutine; consequent calls return
// the same reclaimer until every holder closes it. Each call must be paired
// with Close.
//
// Drivers that own their loop should also lock the goroutine to its OS thread.
func BecomeRealTime() *Reclaimer {
	gid := goid.Get()
	if v, ok := reclaimers.Load(gid); ok {
		r := v.(*Reclaimer)
		r.refs.Add(1)
		return r
	}
	r := newReclaimer(gid, QueueSize)
	reclaimers.Store(gid, r)
	go r.reclaim()
	return r
}

// IsRealTime returns true if calling goroutine was declared real-time.
func IsRealTime() bool {
	_, ok := reclaimers.Load(goid.Get())
	return ok
}

// Guard returns ErrRealTimeAlloc if allocations are checked and calling
// goroutine is real-time.
func Guard() error {
	if strict && IsRealTime() {
		return ErrRealTimeAlloc
	}
	return nil
}

// Alloc returns a new zeroed block of size bytes. It fails on real-time
// goroutines in verification builds.
func Alloc(size int) ([]byte, error) {
	if err := Guard(); err != nil {
		return nil, err
	}
	return make([]byte, size), nil
}

// Leaked returns the number of bytes dropped because reclamation queue
// was full or closed.
func Leaked() int64 {
	return leaked.Load()
}

// Reclaimed returns the number of bytes released by reclamation workers.
func Reclaimed() int64 {
	return reclaimed.Load()
}
