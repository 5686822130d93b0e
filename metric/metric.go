// Package metric publishes engine counters with expvar.
package metric

import (
	"expvar"
	"fmt"
	"sync"

	"github.com/dudk/rack/alloc"
)

const (
	engineLabel = "rack.engine"
	allocLabel  = "rack.alloc"
)

const (
	// TickCounter counts engine ticks.
	TickCounter = "Ticks"
	// CommandCounter counts applied structural commands.
	CommandCounter = "Commands"
	// NodeCounter holds the number of live nodes.
	NodeCounter = "Nodes"
	// LeakCounter holds the number of bytes leaked by reclaimers.
	LeakCounter = "Leaked"
	// ReclaimCounter holds the number of bytes released by reclaimers.
	ReclaimCounter = "Reclaimed"
)

var (
	engines = meters{
		m: make(map[string]*Meter),
	}

	counters = []string{
		TickCounter,
		CommandCounter,
		NodeCounter,
	}
)

func init() {
	expvar.Publish(key(allocLabel, LeakCounter), expvar.Func(func() interface{} {
		return alloc.Leaked()
	}))
	expvar.Publish(key(allocLabel, ReclaimCounter), expvar.Func(func() interface{} {
		return alloc.Reclaimed()
	}))
}

// Meter captures counters of a single engine. All methods are atomic and
// don't allocate, so they are safe to call on real-time goroutine. Nil meter
// does nothing.
type Meter struct {
	name     string
	ticks    *expvar.Int
	commands *expvar.Int
	nodes    *expvar.Int
}

// New returns the meter for engine name. Meters are published once and
// reused when the same name is requested again.
func New(name string) *Meter {
	return engines.get(name)
}

// Tick advances tick counter.
func (m *Meter) Tick() {
	if m != nil {
		m.ticks.Add(1)
	}
}

// Command advances applied commands counter.
func (m *Meter) Command() {
	if m != nil {
		m.commands.Add(1)
	}
}

// Nodes sets the number of live nodes.
func (m *Meter) Nodes(n int) {
	if m != nil {
		m.nodes.Set(int64(n))
	}
}

// Get metrics values for provided engine name.
func Get(name string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		v := expvar.Get(key(engineLabel+"."+name, counter))
		if v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

// GetAll returns counters for all measured engines and reclaimers.
func GetAll() map[string]map[string]string {
	m := make(map[string]map[string]string)
	engines.Lock()
	defer engines.Unlock()
	for name := range engines.m {
		m[name] = Get(name)
	}
	m[allocLabel] = map[string]string{
		LeakCounter:    expvar.Get(key(allocLabel, LeakCounter)).String(),
		ReclaimCounter: expvar.Get(key(allocLabel, ReclaimCounter)).String(),
	}
	return m
}

type meters struct {
	sync.Mutex
	m map[string]*Meter
}

func (m *meters) get(name string) *Meter {
	m.Lock()
	defer m.Unlock()
	if meter, ok := m.m[name]; ok {
		return meter
	}
	prefix := engineLabel + "." + name
	meter := &Meter{
		name:     name,
		ticks:    expvar.NewInt(key(prefix, TickCounter)),
		commands: expvar.NewInt(key(prefix, CommandCounter)),
		nodes:    expvar.NewInt(key(prefix, NodeCounter)),
	}
	m.m[name] = meter
	return meter
}

func key(prefix, counter string) string {
	return fmt.Sprintf("%s.%s", prefix, counter)
}
