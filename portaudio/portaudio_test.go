//go:build portaudio

package portaudio_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/rack"
	"github.com/dudk/rack/engine"
	"github.com/dudk/rack/osc"
	"github.com/dudk/rack/portaudio"
)

func TestDriver(t *testing.T) {
	g, err := engine.Start(portaudio.New(rack.DefaultSampleRate, rack.DefaultBufferSize))
	assert.Nil(t, err)

	pitch, err := g.AddModule(osc.Const(0))
	assert.Nil(t, err)
	sine, err := g.AddModule(osc.NewSine(rack.DefaultSampleRate))
	assert.Nil(t, err)
	assert.Nil(t, g.Connect(pitch, 0, sine, 0))
	assert.Nil(t, g.DesignateOutput(sine, 0))

	time.Sleep(500 * time.Millisecond)
	assert.Nil(t, g.Close())
}
