package engine

import (
	"unsafe"

	"github.com/dudk/rack"
)

// node is an instantiated module with its ports.
type node struct {
	module  rack.Module
	inputs  []rack.Input
	outputs []rack.Output
	// size is a number of bytes released when node is disposed.
	size int
}

var (
	inputSize  = int(unsafe.Sizeof(rack.Input{}))
	outputSize = int(unsafe.Sizeof(rack.Output{}))
	nodeSize   = int(unsafe.Sizeof(node{}))
	idSize     = int(unsafe.Sizeof(rack.NodeID{}))
	planSize   = int(unsafe.Sizeof(plan{}))
)

// newNode allocates ports for the module. It's called on control goroutine.
func newNode(m rack.Module) *node {
	n := &node{
		module:  m,
		inputs:  make([]rack.Input, m.Inputs()),
		outputs: make([]rack.Output, m.Outputs()),
	}
	n.size = nodeSize + len(n.inputs)*inputSize + len(n.outputs)*outputSize
	return n
}

func (n *node) run() {
	n.module.Run(n.inputs, n.outputs)
}

// slot holds a node and the generation of the slot.
type slot struct {
	generation uint32
	node       *node
}

// arena is a fixed-capacity generational collection of nodes. Insert and
// remove never allocate.
type arena struct {
	slots []slot
	free  []uint32
	len   int
}

func newArena(capacity int) arena {
	a := arena{
		slots: make([]slot, capacity),
		free:  make([]uint32, capacity),
	}
	for i := range a.slots {
		// zero id must never resolve
		a.slots[i].generation = 1
		// lowest indices are used first
		a.free[i] = uint32(capacity - 1 - i)
	}
	return a
}

// insert returns false if arena is full.
func (a *arena) insert(n *node) (rack.NodeID, bool) {
	if len(a.free) == 0 {
		return rack.NodeID{}, false
	}
	i := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	a.slots[i].node = n
	a.len++
	return rack.NodeID{Index: i, Generation: a.slots[i].generation}, true
}

// get returns nil if id doesn't resolve to live node.
func (a *arena) get(id rack.NodeID) *node {
	if int(id.Index) >= len(a.slots) {
		return nil
	}
	s := a.slots[id.Index]
	if s.generation != id.Generation {
		return nil
	}
	return s.node
}

// remove returns nil if id doesn't resolve to live node.
func (a *arena) remove(id rack.NodeID) *node {
	n := a.get(id)
	if n == nil {
		return nil
	}
	s := &a.slots[id.Index]
	s.node = nil
	s.generation++
	a.free = append(a.free, id.Index)
	a.len--
	return n
}
