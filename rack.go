package rack

import (
	"fmt"

	"github.com/rs/xid"
)

const (
	// DefaultSampleRate is a sample rate used by drivers when none is set.
	DefaultSampleRate = 44100
	// DefaultBufferSize is a number of frames drivers pull per buffer.
	DefaultBufferSize = 512
)

// Module is a signal processing unit. Ports number must not change during
// the lifetime of the module.
//
// Run is called once per tick on the real-time goroutine. It must not block,
// allocate or log. It is expected to write every output; outputs it skips keep
// the value from the previous tick.
type Module interface {
	Inputs() int
	Outputs() int
	Run(inputs []Input, outputs []Output)
}

// NodeID is a generational index of a node inside the engine. Ids of removed
// nodes never resolve again, even if the slot is reused.
type NodeID struct {
	Index      uint32
	Generation uint32
}

// String returns a string representation of id.
func (id NodeID) String() string {
	return fmt.Sprintf("%d/%d", id.Index, id.Generation)
}

// NewUID returns new unique id value.
func NewUID() string {
	return xid.New().String()
}
