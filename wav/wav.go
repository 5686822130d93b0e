// Package wav renders engine output to wav files.
package wav

import (
	"context"
	"errors"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/dudk/rack"
	"github.com/dudk/rack/engine"
)

// Supported bit depths.
const (
	BitDepth16 = 16
	BitDepth32 = 32
)

// pcm is wav audio format.
const pcm = 1

// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
var ErrUnsupportedBitDepth = errors.New("only 16 and 32 bit depth is supported")

// Renderer is a driver that writes a fixed number of frames into mono wav
// file. It can be reused for consequent runs, every run overwrites the file.
type Renderer struct {
	path       string
	sampleRate int
	bitDepth   int
	frames     int
	bufferSize int
}

// NewRenderer creates new wav renderer.
func NewRenderer(path string, sampleRate, bitDepth, frames int) (*Renderer, error) {
	if bitDepth != BitDepth16 && bitDepth != BitDepth32 {
		return nil, ErrUnsupportedBitDepth
	}
	return &Renderer{
		path:       path,
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
		frames:     frames,
		bufferSize: rack.DefaultBufferSize,
	}, nil
}

// Drive renders frames into the file. The file is finalized even if
// rendering is interrupted.
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
	e := wav.NewEncoder(f, r.sampleRate, r.bitDepth, 1, pcm)
	defer func() {
		if cerr := e.Close(); err == nil {
			err = cerr
		}
	}()

	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  r.sampleRate,
		},
		Data:           make([]int, r.bufferSize),
		SourceBitDepth: r.bitDepth,
	}
	max := float64(int(1)<<uint(r.bitDepth-1) - 1)
	return engine.Offline(r.frames, r.bufferSize, func(b []float32) error {
		ib.Data = ib.Data[:len(b)]
		for i, v := range b {
			ib.Data[i] = int(float64(clip(v)) * max)
		}
		return e.Write(ib)
	}).Drive(ctx, tick)
}

// clip limits the sample to [-1, 1].
func clip(v float32) float32 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
