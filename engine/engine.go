/*
Package engine executes a graph of rack modules in real time.

The graph is split into two planes. Engine is the real-time plane: it owns
nodes, the schedule and the final output, and is driven by a single
goroutine that calls Tick once per sample. Graph is the control plane: any
number of goroutines use it to add, remove and wire modules. The planes
share nothing but a bounded command channel; the engine applies at most one
command per tick, after the whole schedule has run.

Within a tick nodes run in schedule order and ports are not double-buffered:
an output is visible to nodes scheduled later in the same tick and to nodes
scheduled earlier only on the next tick.
*/
package engine

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dudk/rack"
	"github.com/dudk/rack/alloc"
	"github.com/dudk/rack/metric"
)

const (
	// CommandsSize is the capacity of command channel.
	CommandsSize = 128
	// DefaultCapacity is the maximum number of nodes by default.
	DefaultCapacity = 1024
)

var (
	// ErrProtocol is used to panic when command refers to a node or port
	// that doesn't exist. It always means a bug in the caller.
	ErrProtocol = errors.New("protocol violation")

	// ErrUnexpectedResponse is used to panic when engine replies with the
	// response of a wrong kind.
	ErrUnexpectedResponse = errors.New("unexpected engine response")

	// ErrCapacity is returned when engine has no free slots for new nodes.
	ErrCapacity = errors.New("engine capacity exceeded")

	// ErrClosed is returned when graph is used after it was closed or its
	// driver has stopped.
	ErrClosed = errors.New("engine closed")
)

// Engine is a real-time plane of the graph. All methods except Ticks must
// be called from a single goroutine.
type Engine struct {
	nodes arena
	plan  *plan
	out   rack.Input

	commands <-chan message
	rt       *alloc.Reclaimer
	meter    *metric.Meter
	ticks    atomic.Uint64
}

func newEngine(capacity int, commands <-chan message, meter *metric.Meter) *Engine {
	return &Engine{
		nodes:    newArena(capacity),
		commands: commands,
		meter:    meter,
	}
}

// Tick runs the schedule once, applies at most one pending command and
// returns the final output value. First call makes the calling goroutine
// real-time.
func (e *Engine) Tick() float32 {
	if e.rt == nil {
		e.rt = alloc.BecomeRealTime()
	}
	if e.plan != nil {
		for _, id := range e.plan.nodes {
			e.node(id).run()
		}
	}
	select {
	case m := <-e.commands:
		e.apply(m)
		e.meter.Command()
	default:
	}
	e.ticks.Add(1)
	e.meter.Tick()
	return e.out.Get()
}

// Ticks returns the number of ticks executed. It's safe to call from any
// goroutine.
func (e *Engine) Ticks() uint64 {
	return e.ticks.Load()
}

// stop closes reclaimer. It must not be called concurrently with Tick.
func (e *Engine) stop() {
	if e.rt != nil {
		e.rt.Close()
		e.rt = nil
	}
}

func (e *Engine) apply(m message) {
	switch m.command {
	case add:
		id, ok := e.nodes.insert(m.node)
		if !ok {
			e.reply(m.reply, response{command: add, err: ErrCapacity})
			return
		}
		e.meter.Nodes(e.nodes.len)
		e.reply(m.reply, response{command: add, id: id})
	case remove:
		var module rack.Module
		if n := e.remove(m.id); n != nil {
			module = n.module
			n.module = nil
			e.rt.Dispose(n, n.size)
			e.meter.Nodes(e.nodes.len)
		}
		e.reply(m.reply, response{command: remove, module: module})
	case connect:
		out, in := e.node(m.out), e.node(m.id)
		in.inputs[inputPort(in, m.port)].ConnectTo(&out.outputs[outputPort(out, m.outPort)])
	case disconnect:
		n := e.node(m.id)
		n.inputs[inputPort(n, m.port)].Disconnect()
	case designate:
		n := e.node(m.id)
		e.out.ConnectTo(&n.outputs[outputPort(n, m.port)])
	case reschedule:
		old := e.plan
		e.plan = m.plan
		if old != nil {
			e.rt.Dispose(old, planSize+cap(old.nodes)*idSize)
		}
	case barrier:
		e.reply(m.reply, response{command: barrier})
	}
}

// remove deletes node and severs every input that reads its outputs,
// including the final output. Removed node is also dropped from the
// current schedule.
func (e *Engine) remove(id rack.NodeID) *node {
	removed := e.nodes.remove(id)
	if removed == nil {
		return nil
	}
	for i := range e.nodes.slots {
		n := e.nodes.slots[i].node
		if n == nil {
			continue
		}
		for j := range n.inputs {
			if n.inputs[j].PointsWithin(removed.outputs) {
				n.inputs[j].Disconnect()
			}
		}
	}
	if e.out.PointsWithin(removed.outputs) {
		e.out.Disconnect()
	}
	if e.plan != nil {
		s := e.plan.nodes[:0]
		for _, sid := range e.plan.nodes {
			if sid != id {
				s = append(s, sid)
			}
		}
		e.plan.nodes = s
	}
	return removed
}

// node resolves the id or panics.
func (e *Engine) node(id rack.NodeID) *node {
	n := e.nodes.get(id)
	if n == nil {
		panic(fmt.Errorf("%w: node %v doesn't exist", ErrProtocol, id))
	}
	return n
}

// reply never blocks: every reply channel has a free slot for its single
// response.
func (e *Engine) reply(c chan response, r response) {
	select {
	case c <- r:
	default:
	}
}

func inputPort(n *node, p int) int {
	if p < 0 || p >= len(n.inputs) {
		panic(fmt.Errorf("%w: input %d out of range", ErrProtocol, p))
	}
	return p
}

func outputPort(n *node, p int) int {
	if p < 0 || p >= len(n.outputs) {
		panic(fmt.Errorf("%w: output %d out of range", ErrProtocol, p))
	}
	return p
}
