// Package mp3 renders engine output to mp3 files.
package mp3

import (
	"context"
	"encoding/binary"
	"math"
	"os"

	"github.com/viert/lame"

	"github.com/dudk/rack"
	"github.com/dudk/rack/engine"
)

// Renderer is a driver that encodes a fixed number of frames into mono mp3
// file.
type Renderer struct {
	path       string
	sampleRate int
	bitRate    int
	quality    int
	frames     int
	bufferSize int
}

// NewRenderer creates new mp3 renderer. Bit rate is in kbps, quality is
// lame's algorithm quality from 0 (best) to 9 (fastest).
func NewRenderer(path string, sampleRate, bitRate, quality, frames int) *Renderer {
	return &Renderer{
		path:       path,
		sampleRate: sampleRate,
		bitRate:    bitRate,
		quality:    quality,
		frames:     frames,
		bufferSize: rack.DefaultBufferSize,
	}
}

// Drive encodes frames into the file.
func (r *Renderer) Drive(ctx context.Context, tick func() float32) (err error) {
	f, err := os.Create(r.path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	wr := lame.NewWriter(f)
	wr.Encoder.SetBitrate(r.bitRate)
	wr.Encoder.SetQuality(r.quality)
	wr.Encoder.SetNumChannels(1)
	wr.Encoder.SetInSamplerate(r.sampleRate)
	wr.Encoder.SetMode(lame.JOINT_STEREO)
	wr.Encoder.SetVBR(lame.VBR_RH)
	wr.Encoder.InitParams()
	defer func() {
		if cerr := wr.Close(); err == nil {
			err = cerr
		}
	}()

	// 16-bit little endian samples
	pcm := make([]byte, 2*r.bufferSize)
	return engine.Offline(r.frames, r.bufferSize, func(b []float32) error {
		for i, v := range b {
			binary.LittleEndian.PutUint16(pcm[2*i:], uint16(toInt16(v)))
		}
		_, err := wr.Write(pcm[:2*len(b)])
		return err
	}).Drive(ctx, tick)
}

func toInt16(v float32) int16 {
	switch {
	case v >= 1:
		return math.MaxInt16
	case v <= -1:
		return -math.MaxInt16
	}
	return int16(v * math.MaxInt16)
}
