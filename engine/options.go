package engine

import (
	"errors"

	"github.com/dudk/rack/log"
	"github.com/dudk/rack/schedule"
)

// Option provides a way to set functional parameters to graph.
type Option func(g *Graph) error

// ErrInvalidCapacity is returned when capacity is not positive.
var ErrInvalidCapacity = errors.New("capacity must be positive")

// WithName sets name to graph. Name is used in logs and metrics.
func WithName(n string) Option {
	return func(g *Graph) error {
		g.name = n
		return nil
	}
}

// WithCapacity sets maximum number of nodes. Engine never allocates slots
// after creation.
func WithCapacity(n int) Option {
	return func(g *Graph) error {
		if n <= 0 {
			return ErrInvalidCapacity
		}
		g.capacity = n
		return nil
	}
}

// WithPolicy sets the order nodes run within a tick.
func WithPolicy(p schedule.Policy) Option {
	return func(g *Graph) error {
		g.policy = p
		return nil
	}
}

// WithLogger sets logger for control plane.
func WithLogger(l log.Logger) Option {
	return func(g *Graph) error {
		g.log = l
		return nil
	}
}

// WithMetric publishes engine counters under graph name, or its id if name
// is not set.
func WithMetric() Option {
	return func(g *Graph) error {
		g.metered = true
		return nil
	}
}
