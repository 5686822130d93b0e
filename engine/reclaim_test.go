package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/rack"
	"github.com/dudk/rack/alloc"
	"github.com/dudk/rack/mock"
)

// tickWhile ticks engines on the calling goroutine until fn returns.
func tickWhile(fn func(), engines ...*Engine) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	for {
		select {
		case <-done:
			return
		default:
			for _, e := range engines {
				e.Tick()
			}
		}
	}
}

func disposed() int64 {
	return alloc.Reclaimed() + alloc.Leaked()
}

func TestRemoveDisposes(t *testing.T) {
	g, e, err := New()
	assert.Nil(t, err)
	before := disposed()

	var id rack.NodeID
	tickWhile(func() {
		id, err = g.AddModule(&mock.Counter{})
		assert.Nil(t, err)
		assert.Nil(t, g.Sync())
	}, e)
	n := e.nodes.get(id)
	assert.NotNil(t, n)
	assert.Equal(t, nodeSize+outputSize, n.size)
	// first plan had nothing to replace
	assert.Equal(t, before, disposed())
	planBytes := int64(planSize + cap(e.plan.nodes)*idSize)

	tickWhile(func() {
		m, err := g.RemoveModule(id)
		assert.Nil(t, err)
		assert.NotNil(t, m)
		assert.Nil(t, g.Sync())
	}, e)
	assert.Nil(t, g.Close())

	// node storage and the replaced plan
	assert.Equal(t, int64(n.size)+planBytes, disposed()-before)
	assert.Nil(t, n.module)
}

func TestSharedGoroutine(t *testing.T) {
	g1, e1, err := New()
	assert.Nil(t, err)
	g2, e2, err := New()
	assert.Nil(t, err)
	tickWhile(func() {}, e1, e2)
	e1.Tick()
	e2.Tick()
	assert.True(t, e1.rt == e2.rt)

	assert.Nil(t, g1.Close())
	leaked, reclaimed := alloc.Leaked(), alloc.Reclaimed()
	tickWhile(func() {
		id, err := g2.AddModule(&mock.Counter{})
		assert.Nil(t, err)
		_, err = g2.RemoveModule(id)
		assert.Nil(t, err)
		assert.Nil(t, g2.Sync())
	}, e2)
	assert.Nil(t, g2.Close())

	assert.Equal(t, leaked, alloc.Leaked())
	assert.True(t, alloc.Reclaimed() > reclaimed)
}

func TestConnectBookkeeping(t *testing.T) {
	g, _, err := New()
	assert.Nil(t, err)
	defer g.Close()

	// ports are known but scheduler graph has drifted
	out := rack.NodeID{Index: 1, Generation: 1}
	in := rack.NodeID{Index: 2, Generation: 1}
	g.ports[out] = ports{outputs: 1}
	g.ports[in] = ports{inputs: 1}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if assert.True(t, ok, "expected error panic, got: %v", r) {
			assert.True(t, errors.Is(err, ErrProtocol), "unexpected panic: %v", err)
		}
	}()
	g.Connect(out, 0, in, 0)
}
