package wav_test

import (
	"os"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dudk/rack"
	"github.com/dudk/rack/engine"
	"github.com/dudk/rack/log"
	"github.com/dudk/rack/osc"
	"github.com/dudk/rack/test"
	wavrack "github.com/dudk/rack/wav"
)

func TestMain(m *testing.M) {
	log.Discard()
	goleak.VerifyTestMain(m)
}

func TestNewRenderer(t *testing.T) {
	_, err := wavrack.NewRenderer(test.Out.Wav, rack.DefaultSampleRate, 24, 10)
	assert.Equal(t, wavrack.ErrUnsupportedBitDepth, err)
}

func TestRenderer(t *testing.T) {
	tests := []struct {
		value    float32
		bitDepth int
		frames   int
		expected int
	}{
		{value: 0.5, bitDepth: wavrack.BitDepth16, frames: 1000, expected: 16383},
		{value: 2, bitDepth: wavrack.BitDepth16, frames: rack.DefaultBufferSize, expected: 32767},
		{value: -1, bitDepth: wavrack.BitDepth16, frames: 1, expected: -32767},
		{value: 0.5, bitDepth: wavrack.BitDepth32, frames: 3000, expected: 1073741823},
	}
	require.Nil(t, os.MkdirAll(test.Out.Dir, 0755))

	for _, tt := range tests {
		r, err := wavrack.NewRenderer(test.Out.Wav, rack.DefaultSampleRate, tt.bitDepth, tt.frames)
		require.Nil(t, err)

		cue := make(chan struct{})
		g, err := engine.Start(engine.Cued(r, cue))
		require.Nil(t, err)
		id, err := g.AddModule(osc.Const(tt.value))
		assert.Nil(t, err)
		assert.Nil(t, g.DesignateOutput(id, 0))
		assert.Nil(t, g.Sync())
		close(cue)
		<-g.Done()
		assert.Nil(t, g.Close())

		f, err := os.Open(test.Out.Wav)
		require.Nil(t, err)
		d := wav.NewDecoder(f)
		assert.True(t, d.IsValidFile())
		buf, err := d.FullPCMBuffer()
		assert.Nil(t, err)
		assert.Equal(t, rack.DefaultSampleRate, buf.Format.SampleRate)
		assert.Equal(t, 1, buf.Format.NumChannels)
		assert.Equal(t, tt.bitDepth, int(d.BitDepth))
		assert.Equal(t, tt.frames, len(buf.Data))
		for _, v := range buf.Data {
			assert.Equal(t, tt.expected, v)
		}
		assert.Nil(t, f.Close())
	}
}
