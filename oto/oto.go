// Package oto plays engine output with oto player.
//
// Oto pulls samples on its own goroutine, while engine must be ticked by a
// single one. Driver fills a fixed set of buffers on the engine goroutine and
// player reads them in order.
package oto

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/dudk/rack/log"
)

// Buffers is the number of buffers in flight between engine and player.
const Buffers = 3

// sampleSize is the size of float32 sample in bytes.
const sampleSize = 4

// ErrSampleRate is returned when oto context was created with another
// sample rate. Oto allows a single context per process.
var ErrSampleRate = errors.New("oto context sample rate mismatch")

// shared is process-wide oto context.
var shared struct {
	sync.Mutex
	ctx        *oto.Context
	sampleRate int
}

func contextFor(sr int) (*oto.Context, error) {
	shared.Lock()
	defer shared.Unlock()
	if shared.ctx != nil {
		if shared.sampleRate != sr {
			return nil, fmt.Errorf("%w: %d != %d", ErrSampleRate, sr, shared.sampleRate)
		}
		return shared.ctx, nil
	}
	c, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sr,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	shared.ctx, shared.sampleRate = c, sr
	return c, nil
}

// Driver plays mono float32 signal.
type Driver struct {
	sampleRate int
	bufferSize int
	log        log.Logger
}

// New returns new oto driver.
func New(sampleRate, bufferSize int) *Driver {
	return &Driver{
		sampleRate: sampleRate,
		bufferSize: bufferSize,
		log:        log.GetLogger(),
	}
}

// Drive plays until ctx is done.
func (d *Driver) Drive(ctx context.Context, tick func() float32) error {
	c, err := contextFor(d.sampleRate)
	if err != nil {
		return err
	}
	s := newStream(d.bufferSize, Buffers)
	p := c.NewPlayer(s)
	p.Play()
	d.log.Info("oto player started")
	defer func() {
		s.close()
		if err := p.Close(); err != nil {
			d.log.Warn(fmt.Sprintf("oto player close: %v", err))
		}
	}()
	return s.fill(ctx, tick)
}

// stream passes filled buffers from engine to player.
type stream struct {
	free   chan []byte
	filled chan []byte
	buf    []byte // buffer being read.
	off    int
	done   chan struct{}
	once   sync.Once
}

func newStream(bufferSize, buffers int) *stream {
	s := &stream{
		free:   make(chan []byte, buffers),
		filled: make(chan []byte, buffers),
		done:   make(chan struct{}),
	}
	for i := 0; i < buffers; i++ {
		s.free <- make([]byte, bufferSize*sampleSize)
	}
	return s
}

// fill ticks engine into free buffers until ctx is done.
func (s *stream) fill(ctx context.Context, tick func() float32) error {
	for {
		var buf []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case buf = <-s.free:
		}
		for i := 0; i < len(buf); i += sampleSize {
			binary.LittleEndian.PutUint32(buf[i:], math.Float32bits(tick()))
		}
		s.filled <- buf
	}
}

// Read implements io.Reader for oto player.
func (s *stream) Read(p []byte) (int, error) {
	if s.buf == nil {
		select {
		case s.buf = <-s.filled:
			s.off = 0
		case <-s.done:
			return 0, io.EOF
		}
	}
	n := copy(p, s.buf[s.off:])
	s.off += n
	if s.off == len(s.buf) {
		s.free <- s.buf
		s.buf = nil
	}
	return n, nil
}

func (s *stream) close() {
	s.once.Do(func() { close(s.done) })
}
