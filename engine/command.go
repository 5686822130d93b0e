package engine

import "github.com/dudk/rack"

// command identifies the type of structural change.
type command int

// types of commands.
const (
	add command = iota
	remove
	connect
	disconnect
	designate
	reschedule
	barrier
)

// message is passed into engine's command channel.
type message struct {
	command
	node     *node         // add.
	id       rack.NodeID   // remove, disconnect, designate; input node of connect.
	port     int           // disconnect, designate; input port of connect.
	out      rack.NodeID   // output node of connect.
	outPort  int           // output port of connect.
	plan     *plan         // reschedule.
	reply    chan response // add, remove, barrier.
}

// plan is an execution order of nodes. It's passed by pointer so disposing
// it on real-time goroutine doesn't allocate.
type plan struct {
	nodes []rack.NodeID
}

// response is sent back by engine for commands with reply channel.
type response struct {
	command
	id     rack.NodeID
	module rack.Module
	err    error
}

// Convert the command to a string.
func (c command) String() string {
	switch c {
	case add:
		return "add"
	case remove:
		return "remove"
	case connect:
		return "connect"
	case disconnect:
		return "disconnect"
	case designate:
		return "designate"
	case reschedule:
		return "schedule"
	case barrier:
		return "barrier"
	}
	return "unknown"
}
