package rack

// Output is a single sample cell written by its owning node once per tick.
// Cells are not synchronized: the schedule guarantees a single writer and
// orders readers relative to it.
type Output struct {
	value float32
}

// Set overwrites the current value.
func (o *Output) Set(v float32) {
	o.value = v
}

// Get returns the current value.
func (o *Output) Get() float32 {
	return o.value
}

// Input reads the value of at most one Output. Many inputs can share the
// same output.
type Input struct {
	cell *Output
}

// Get returns the value of connected output or 0 if input is disconnected.
func (in *Input) Get() float32 {
	if in.cell == nil {
		return 0
	}
	return in.cell.value
}

// IsConnected returns true if input reads some output.
func (in *Input) IsConnected() bool {
	return in.cell != nil
}

// ConnectTo binds input to the output. Previous connection is dropped.
//
// The node owning o must outlive the connection, or the input must be
// disconnected before that node is removed.
func (in *Input) ConnectTo(o *Output) {
	in.cell = o
}

// PointsWithin returns true if input reads one of the outputs in block.
func (in *Input) PointsWithin(block []Output) bool {
	if in.cell == nil {
		return false
	}
	for i := range block {
		if in.cell == &block[i] {
			return true
		}
	}
	return false
}

// Disconnect drops the connection. It's safe to call on disconnected input.
func (in *Input) Disconnect() {
	in.cell = nil
}
