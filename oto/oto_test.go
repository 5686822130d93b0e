package oto

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestStream(t *testing.T) {
	defer goleak.VerifyNone(t)
	const bufferSize = 4
	s := newStream(bufferSize, Buffers)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	var n float32
	go func() {
		done <- s.fill(ctx, func() float32 {
			n++
			return n
		})
	}()

	// odd read size splits samples between reads
	var (
		data []byte
		p    = make([]byte, 6)
	)
	for len(data) < 10*bufferSize*sampleSize {
		read, err := s.Read(p)
		assert.Nil(t, err)
		data = append(data, p[:read]...)
	}
	for i := 0; i < 10*bufferSize; i++ {
		v := math.Float32frombits(binary.LittleEndian.Uint32(data[i*sampleSize:]))
		assert.Equal(t, float32(i+1), v)
	}

	cancel()
	// drain so fill never blocks on free buffers
	go func() {
		for {
			if _, err := s.Read(p); err == io.EOF {
				return
			}
		}
	}()
	assert.Equal(t, context.Canceled, <-done)
	s.close()
}
