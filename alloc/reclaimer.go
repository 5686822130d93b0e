package alloc

import "sync/atomic"

type (
	// Garbage describes a value whose last real-time reference is dropped.
	Garbage struct {
		Value interface{}
		Size  int
	}

	// Releaser is implemented by values that hold resources beyond memory.
	// Release is called on reclamation goroutine.
	Releaser interface {
		Release()
	}

	// Reclaimer defers releases of real-time goroutine to a worker.
	// Dispose and Close must be called from the owning goroutine, or at
	// least never concurrently.
	Reclaimer struct {
		gid    int64
		refs   atomic.Int32 // holders that haven't closed it yet.
		queue  chan Garbage
		done   chan struct{}
		closed int32
	}
)

func newReclaimer(gid int64, size int) *Reclaimer {
	r := &Reclaimer{
		gid:   gid,
		queue: make(chan Garbage, size),
		done:  make(chan struct{}),
	}
	r.refs.Store(1)
	return r
}

// Dispose queues the value for release. It never blocks: if the queue is
// full or reclaimer is closed, the value is dropped in place and its size is
// added to the leak counter. Returns true if value was queued.
func (r *Reclaimer) Dispose(value interface{}, size int) bool {
	if atomic.LoadInt32(&r.closed) == 0 {
		select {
		case r.queue <- Garbage{Value: value, Size: size}:
			return true
		default:
		}
	}
	leaked.Add(int64(size))
	return false
}

// Close drops one holder. When the last holder closes it, the worker
// releases everything queued and stops, and the goroutine is unbound. Extra
// calls after that have no effect.
func (r *Reclaimer) Close() {
	if r.refs.Add(-1) > 0 {
		return
	}
	if !atomic.CompareAndSwapInt32(&r.closed, 0, 1) {
		return
	}
	reclaimers.Delete(r.gid)
	close(r.queue)
	<-r.done
}

// reclaim releases garbage until queue is closed.
func (r *Reclaimer) reclaim() {
	defer close(r.done)
	for g := range r.queue {
		release(g)
	}
}

func release(g Garbage) {
	if v, ok := g.Value.(Releaser); ok {
		v.Release()
	}
	reclaimed.Add(int64(g.Size))
}
