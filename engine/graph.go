package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/davecgh/go-spew/spew"

	"github.com/dudk/rack"
	"github.com/dudk/rack/log"
	"github.com/dudk/rack/metric"
	"github.com/dudk/rack/schedule"
)

// Graph is a control plane of the engine. It's safe for concurrent use.
//
// Add and remove block until the engine applies them. Wiring methods return
// as soon as the command is queued. Calls that refer to unknown nodes or
// ports panic with ErrProtocol.
type Graph struct {
	uid      string
	name     string
	capacity int
	policy   schedule.Policy
	metered  bool
	log      log.Logger

	engine    *Engine
	commands  chan message
	cancel    context.CancelFunc
	done      chan struct{} // closed when engine stops.
	stopOnce  sync.Once
	closeOnce sync.Once
	err       error // driver error.

	mu       sync.Mutex
	graph    *schedule.Graph
	ports    map[rack.NodeID]ports
	schedule []rack.NodeID
}

// ports holds the number of node ports.
type ports struct {
	inputs, outputs int
}

// New creates a graph and its engine. The caller is responsible to drive
// the engine: Tick must be called from a single goroutine, otherwise every
// add and remove blocks forever.
func New(options ...Option) (*Graph, *Engine, error) {
	g := &Graph{
		uid:      rack.NewUID(),
		capacity: DefaultCapacity,
		policy:   schedule.Topological,
		log:      log.GetLogger(),
		commands: make(chan message, CommandsSize),
		done:     make(chan struct{}),
		graph:    schedule.New(),
		ports:    make(map[rack.NodeID]ports),
	}
	for _, option := range options {
		if err := option(g); err != nil {
			return nil, nil, err
		}
	}
	var meter *metric.Meter
	if g.metered {
		meter = metric.New(g.metricName())
	}
	g.engine = newEngine(g.capacity, g.commands, meter)
	return g, g.engine, nil
}

// Start creates a graph and runs its engine with the driver on a dedicated
// goroutine locked to its OS thread.
func Start(d Driver, options ...Option) (*Graph, error) {
	g, e, err := New(options...)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	go g.drive(ctx, d, e)
	g.log.Info(fmt.Sprintf("%v started", g))
	return g, nil
}

func (g *Graph) drive(ctx context.Context, d Driver, e *Engine) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	err := d.Drive(ctx, e.Tick)
	e.stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		g.err = fmt.Errorf("%v driver failed: %w", g, err)
		g.log.Warn(g.err)
	}
	g.stopOnce.Do(func() { close(g.done) })
}

// Close stops the driver and releases the engine. Graph cannot be used
// after close. If graph was created with New, the caller must stop calling
// Tick before Close. Returns driver error if any.
func (g *Graph) Close() error {
	g.closeOnce.Do(func() {
		if g.cancel != nil {
			g.cancel()
			<-g.done
		} else {
			g.engine.stop()
			g.stopOnce.Do(func() { close(g.done) })
		}
		g.log.Info(fmt.Sprintf("%v closed after %d ticks", g, g.engine.Ticks()))
	})
	return g.err
}

// Done returns a channel that's closed when engine stops.
func (g *Graph) Done() <-chan struct{} {
	return g.done
}

// AddModule adds module to the engine and returns id of its node.
func (g *Graph) AddModule(m rack.Module) (rack.NodeID, error) {
	n := newNode(m)
	g.mu.Lock()
	defer g.mu.Unlock()
	r, err := g.request(message{command: add, node: n})
	if err != nil {
		return rack.NodeID{}, err
	}
	if r.command != add {
		panic(ErrUnexpectedResponse)
	}
	if r.err != nil {
		return rack.NodeID{}, r.err
	}
	g.graph.AddNode(r.id)
	g.ports[r.id] = ports{inputs: len(n.inputs), outputs: len(n.outputs)}
	g.log.Debug(fmt.Sprintf("%v added %T as %v", g, m, r.id))
	return r.id, g.reschedule()
}

// RemoveModule removes the node and returns its module. If id doesn't
// resolve to live node, nil module is returned. Every input connected to
// removed node reads zero afterwards.
func (g *Graph) RemoveModule(id rack.NodeID) (rack.Module, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, err := g.request(message{command: remove, id: id})
	if err != nil {
		return nil, err
	}
	if r.command != remove {
		panic(ErrUnexpectedResponse)
	}
	if !g.graph.Has(id) {
		return r.module, nil
	}
	g.graph.RemoveNode(id)
	delete(g.ports, id)
	g.log.Debug(fmt.Sprintf("%v removed %v", g, id))
	return r.module, g.reschedule()
}

// Connect feeds input port of in node with output port of out node. Node
// can be connected to itself, then the input reads the output of previous
// tick.
func (g *Graph) Connect(out rack.NodeID, outPort int, in rack.NodeID, inPort int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mustOutput(out, outPort)
	g.mustInput(in, inPort)
	if err := g.send(message{command: connect, out: out, outPort: outPort, id: in, port: inPort}); err != nil {
		return err
	}
	if err := g.graph.Connect(schedule.Cable{From: out, FromPort: outPort, To: in, ToPort: inPort}); err != nil {
		panic(fmt.Errorf("%w: %v -> %v: %v", ErrProtocol, out, in, err))
	}
	return g.reschedule()
}

// Disconnect clears input port of the node.
func (g *Graph) Disconnect(node rack.NodeID, port int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mustInput(node, port)
	if err := g.send(message{command: disconnect, id: node, port: port}); err != nil {
		return err
	}
	if g.graph.Disconnect(node, port) {
		return g.reschedule()
	}
	return nil
}

// DesignateOutput makes output port of the node the final output of engine.
func (g *Graph) DesignateOutput(node rack.NodeID, port int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mustOutput(node, port)
	return g.send(message{command: designate, id: node, port: port})
}

// Sync blocks until engine applies every command sent before.
func (g *Graph) Sync() error {
	r, err := g.request(message{command: barrier})
	if err != nil {
		return err
	}
	if r.command != barrier {
		panic(ErrUnexpectedResponse)
	}
	return nil
}

// Schedule returns the latest execution order sent to engine.
func (g *Graph) Schedule() []rack.NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]rack.NodeID(nil), g.schedule...)
}

// Cables returns current wiring.
func (g *Graph) Cables() []schedule.Cable {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.graph.Cables()
}

// ID returns unique id of the graph.
func (g *Graph) ID() string {
	return g.uid
}

// Convert graph to string. Name is included if has value.
func (g *Graph) String() string {
	if g.name == "" {
		return g.uid
	}
	return fmt.Sprintf("%v %v", g.name, g.uid)
}

func (g *Graph) metricName() string {
	if g.name == "" {
		return g.uid
	}
	return g.name
}

// reschedule computes new schedule and sends it to engine. It must be
// called with mu held, so schedules arrive in the order they're computed.
func (g *Graph) reschedule() error {
	g.schedule = g.graph.Compute(g.policy)
	p := &plan{nodes: append([]rack.NodeID(nil), g.schedule...)}
	g.log.Debug(fmt.Sprintf("%v %v schedule: %s", g, g.policy, spew.Sdump(g.schedule)))
	return g.send(message{command: reschedule, plan: p})
}

// send blocks while command channel is full.
func (g *Graph) send(m message) error {
	select {
	case <-g.done:
		return ErrClosed
	default:
	}
	select {
	case g.commands <- m:
		return nil
	case <-g.done:
		return ErrClosed
	}
}

// request sends the command and waits for its response.
func (g *Graph) request(m message) (response, error) {
	m.reply = make(chan response, 1)
	if err := g.send(m); err != nil {
		return response{}, err
	}
	select {
	case r := <-m.reply:
		return r, nil
	case <-g.done:
		return response{}, ErrClosed
	}
}

func (g *Graph) mustInput(id rack.NodeID, port int) {
	p, ok := g.ports[id]
	if !ok {
		panic(fmt.Errorf("%w: node %v doesn't exist", ErrProtocol, id))
	}
	if port < 0 || port >= p.inputs {
		panic(fmt.Errorf("%w: node %v has no input %d", ErrProtocol, id, port))
	}
}

func (g *Graph) mustOutput(id rack.NodeID, port int) {
	p, ok := g.ports[id]
	if !ok {
		panic(fmt.Errorf("%w: node %v doesn't exist", ErrProtocol, id))
	}
	if port < 0 || port >= p.outputs {
		panic(fmt.Errorf("%w: node %v has no output %d", ErrProtocol, id, port))
	}
}
