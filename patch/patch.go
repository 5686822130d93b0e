/*
Package patch builds engine graphs from Lua scripts.

Scripts create modules and wire them with global functions:

	sine()                 sine oscillator, input 0 is pitch
	saw()                  sawtooth oscillator, input 0 is pitch
	const(v)               constant value
	mixer()                mean of up to 8 inputs
	vca()                  product of inputs 0 and 1
	connect(a, ap, b, bp)  feed input bp of b with output ap of a
	disconnect(n, p)       clear input p of n
	output(n, p)           make output p of n the final output
	remove(n)              remove the node

Module constructors return node handles. Ports are zero-based.
*/
package patch

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dudk/rack"
	"github.com/dudk/rack/amp"
	"github.com/dudk/rack/engine"
	"github.com/dudk/rack/log"
	"github.com/dudk/rack/mixer"
	"github.com/dudk/rack/osc"
)

// nodeType is the name of node handle metatable.
const nodeType = "node"

// Loader runs patch scripts against the graph. It is not safe for
// concurrent use.
type Loader struct {
	graph      *engine.Graph
	sampleRate int
	log        log.Logger
	modules    map[rack.NodeID]rack.Module
	nodes      []rack.NodeID
}

// New returns loader for the graph. Oscillators are created for the sample
// rate.
func New(g *engine.Graph, sampleRate int) *Loader {
	return &Loader{
		graph:      g,
		sampleRate: sampleRate,
		log:        log.GetLogger(),
		modules:    make(map[rack.NodeID]rack.Module),
	}
}

// File runs the script file.
func (l *Loader) File(path string) error {
	L := l.state()
	defer L.Close()
	if err := L.DoFile(path); err != nil {
		return fmt.Errorf("patch %v: %w", path, err)
	}
	l.log.Info(fmt.Sprintf("patch %v loaded %d nodes", path, len(l.nodes)))
	return nil
}

// String runs the script source.
func (l *Loader) String(source string) error {
	L := l.state()
	defer L.Close()
	if err := L.DoString(source); err != nil {
		return fmt.Errorf("patch: %w", err)
	}
	return nil
}

// Nodes returns live nodes created by scripts in order of creation.
func (l *Loader) Nodes() []rack.NodeID {
	return append([]rack.NodeID(nil), l.nodes...)
}

func (l *Loader) state() *lua.LState {
	L := lua.NewState()
	mt := L.NewTypeMetatable(nodeType)
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		id := l.checkNode(L, 1)
		L.Push(lua.LString(fmt.Sprintf("%T %v", l.modules[id], id)))
		return 1
	}))

	constructors := map[string]func(L *lua.LState) rack.Module{
		"sine":  func(*lua.LState) rack.Module { return osc.NewSine(l.sampleRate) },
		"saw":   func(*lua.LState) rack.Module { return osc.NewSaw(l.sampleRate) },
		"const": func(L *lua.LState) rack.Module { return osc.Const(L.CheckNumber(1)) },
		"mixer": func(*lua.LState) rack.Module { return mixer.New() },
		"vca":   func(*lua.LState) rack.Module { return amp.NewVCA() },
	}
	for name, fn := range constructors {
		L.SetGlobal(name, L.NewFunction(l.add(fn)))
	}
	L.SetGlobal("connect", L.NewFunction(l.connect))
	L.SetGlobal("disconnect", L.NewFunction(l.disconnect))
	L.SetGlobal("output", L.NewFunction(l.output))
	L.SetGlobal("remove", L.NewFunction(l.remove))
	return L
}

func (l *Loader) add(fn func(L *lua.LState) rack.Module) lua.LGFunction {
	return func(L *lua.LState) int {
		m := fn(L)
		id, err := l.graph.AddModule(m)
		if err != nil {
			L.RaiseError("add %T: %v", m, err)
			return 0
		}
		l.modules[id] = m
		l.nodes = append(l.nodes, id)
		ud := L.NewUserData()
		ud.Value = id
		L.SetMetatable(ud, L.GetTypeMetatable(nodeType))
		L.Push(ud)
		return 1
	}
}

func (l *Loader) connect(L *lua.LState) int {
	out, outPort := l.checkOutput(L, 1)
	in, inPort := l.checkInput(L, 3)
	if err := l.graph.Connect(out, outPort, in, inPort); err != nil {
		L.RaiseError("connect: %v", err)
	}
	return 0
}

func (l *Loader) disconnect(L *lua.LState) int {
	id, port := l.checkInput(L, 1)
	if err := l.graph.Disconnect(id, port); err != nil {
		L.RaiseError("disconnect: %v", err)
	}
	return 0
}

func (l *Loader) output(L *lua.LState) int {
	id, port := l.checkOutput(L, 1)
	if err := l.graph.DesignateOutput(id, port); err != nil {
		L.RaiseError("output: %v", err)
	}
	return 0
}

func (l *Loader) remove(L *lua.LState) int {
	id := l.checkNode(L, 1)
	if _, err := l.graph.RemoveModule(id); err != nil {
		L.RaiseError("remove: %v", err)
		return 0
	}
	delete(l.modules, id)
	for i := range l.nodes {
		if l.nodes[i] == id {
			l.nodes = append(l.nodes[:i], l.nodes[i+1:]...)
			break
		}
	}
	return 0
}

// checkNode returns live node id at stack position n.
func (l *Loader) checkNode(L *lua.LState, n int) rack.NodeID {
	ud := L.CheckUserData(n)
	id, ok := ud.Value.(rack.NodeID)
	if !ok {
		L.ArgError(n, "node expected")
		return rack.NodeID{}
	}
	if _, ok := l.modules[id]; !ok {
		L.ArgError(n, fmt.Sprintf("node %v was removed", id))
	}
	return id
}

// checkInput returns node and its input port at stack positions n, n+1.
func (l *Loader) checkInput(L *lua.LState, n int) (rack.NodeID, int) {
	id := l.checkNode(L, n)
	port := L.CheckInt(n + 1)
	if m := l.modules[id]; port < 0 || port >= m.Inputs() {
		L.ArgError(n+1, fmt.Sprintf("%T has no input %d", m, port))
	}
	return id, port
}

// checkOutput returns node and its output port at stack positions n, n+1.
func (l *Loader) checkOutput(L *lua.LState, n int) (rack.NodeID, int) {
	id := l.checkNode(L, n)
	port := L.CheckInt(n + 1)
	if m := l.modules[id]; port < 0 || port >= m.Outputs() {
		L.ArgError(n+1, fmt.Sprintf("%T has no output %d", m, port))
	}
	return id, port
}
