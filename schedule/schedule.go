// Package schedule keeps the logical wiring of engine nodes and derives the
// order nodes are executed within a tick.
package schedule

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/dudk/rack"
)

// Policy defines how the schedule is ordered.
type Policy int

const (
	// Topological runs producers before their consumers. Nodes within a
	// feedback cycle are run in insertion order, so cables that close the
	// cycle carry previous tick values.
	Topological Policy = iota
	// InsertionOrder runs nodes in the order they were added. Any consumer
	// added before its producer reads previous tick values.
	InsertionOrder
)

// ErrUnknownNode is returned when node is not in the graph.
var ErrUnknownNode = errors.New("unknown node")

type (
	// Cable is a logical edge between two node ports.
	Cable struct {
		From     rack.NodeID
		FromPort int
		To       rack.NodeID
		ToPort   int
	}

	// Graph mirrors engine wiring. It's not safe for concurrent use.
	Graph struct {
		g *simple.DirectedGraph
		// seq gives each node its insertion order.
		seq  map[rack.NodeID]int64
		next int64
		// cables are keyed by the input they feed. Single input is fed by
		// at most one cable.
		cables map[port]Cable
		// edges counts cables between a pair of nodes.
		edges map[pair]int
	}

	port struct {
		node rack.NodeID
		port int
	}

	pair struct {
		from, to rack.NodeID
	}
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case Topological:
		return "topological"
	case InsertionOrder:
		return "insertion"
	}
	return "unknown"
}

// ParsePolicy returns a policy by its name.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "topological":
		return Topological, nil
	case "insertion":
		return InsertionOrder, nil
	}
	return 0, fmt.Errorf("unknown schedule policy %q", s)
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		g:      simple.NewDirectedGraph(),
		seq:    make(map[rack.NodeID]int64),
		cables: make(map[port]Cable),
		edges:  make(map[pair]int),
	}
}

// nodeID packs node id into graph node id.
func nodeID(id rack.NodeID) int64 {
	return int64(id.Generation)<<32 | int64(id.Index)
}

// rackID unpacks graph node id.
func rackID(n graph.Node) rack.NodeID {
	v := n.ID()
	return rack.NodeID{Index: uint32(v), Generation: uint32(v >> 32)}
}

// AddNode adds node to the graph. Adding existing node has no effect.
func (g *Graph) AddNode(id rack.NodeID) {
	if _, ok := g.seq[id]; ok {
		return
	}
	g.g.AddNode(simple.Node(nodeID(id)))
	g.seq[id] = g.next
	g.next++
}

// RemoveNode removes node and all cables attached to it.
func (g *Graph) RemoveNode(id rack.NodeID) {
	if _, ok := g.seq[id]; !ok {
		return
	}
	for p, c := range g.cables {
		if c.From == id || c.To == id {
			g.removeCable(p)
		}
	}
	g.g.RemoveNode(nodeID(id))
	delete(g.seq, id)
}

// Has returns true if node is in the graph.
func (g *Graph) Has(id rack.NodeID) bool {
	_, ok := g.seq[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.seq)
}

// Connect adds a cable. Cable that already feeds the same input is replaced.
func (g *Graph) Connect(c Cable) error {
	if !g.Has(c.From) || !g.Has(c.To) {
		return ErrUnknownNode
	}
	p := port{node: c.To, port: c.ToPort}
	if _, ok := g.cables[p]; ok {
		g.removeCable(p)
	}
	g.cables[p] = c
	if c.From == c.To {
		// self-loops never affect the order
		return nil
	}
	e := pair{from: c.From, to: c.To}
	if g.edges[e] == 0 {
		g.g.SetEdge(g.g.NewEdge(simple.Node(nodeID(c.From)), simple.Node(nodeID(c.To))))
	}
	g.edges[e]++
	return nil
}

// Disconnect removes the cable that feeds the input. It returns false if
// input wasn't connected.
func (g *Graph) Disconnect(node rack.NodeID, input int) bool {
	p := port{node: node, port: input}
	if _, ok := g.cables[p]; !ok {
		return false
	}
	g.removeCable(p)
	return true
}

func (g *Graph) removeCable(p port) {
	c := g.cables[p]
	delete(g.cables, p)
	if c.From == c.To {
		return
	}
	e := pair{from: c.From, to: c.To}
	g.edges[e]--
	if g.edges[e] == 0 {
		delete(g.edges, e)
		g.g.RemoveEdge(nodeID(c.From), nodeID(c.To))
	}
}

// Cables returns all cables ordered by their destination.
func (g *Graph) Cables() []Cable {
	cables := make([]Cable, 0, len(g.cables))
	for _, c := range g.cables {
		cables = append(cables, c)
	}
	sort.Slice(cables, func(i, j int) bool {
		if cables[i].To != cables[j].To {
			return g.seq[cables[i].To] < g.seq[cables[j].To]
		}
		return cables[i].ToPort < cables[j].ToPort
	})
	return cables
}

// Compute returns the execution order for the policy. Every node is listed
// exactly once.
func (g *Graph) Compute(p Policy) []rack.NodeID {
	if p == InsertionOrder {
		return g.insertionOrder()
	}
	return g.topological()
}

func (g *Graph) insertionOrder() []rack.NodeID {
	ids := make([]rack.NodeID, 0, len(g.seq))
	for id := range g.seq {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return g.seq[ids[i]] < g.seq[ids[j]]
	})
	return ids
}

func (g *Graph) topological() []rack.NodeID {
	byInsertion := func(nodes []graph.Node) {
		sort.Slice(nodes, func(i, j int) bool {
			return g.seq[rackID(nodes[i])] < g.seq[rackID(nodes[j])]
		})
	}
	sorted, err := topo.SortStabilized(g.g, byInsertion)
	// cycles are marked with nil nodes in the order of unorderable components
	var cycles topo.Unorderable
	if err != nil {
		if !errors.As(err, &cycles) {
			// sort doesn't fail otherwise, keep engine running anyway
			return g.insertionOrder()
		}
	}
	ids := make([]rack.NodeID, 0, len(g.seq))
	for _, n := range sorted {
		if n != nil {
			ids = append(ids, rackID(n))
			continue
		}
		if len(cycles) == 0 {
			continue
		}
		component := cycles[0]
		cycles = cycles[1:]
		byInsertion(component)
		for _, c := range component {
			ids = append(ids, rackID(c))
		}
	}
	if len(ids) != len(g.seq) {
		return g.insertionOrder()
	}
	return ids
}
