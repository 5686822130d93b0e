package engine

import (
	"context"
	"errors"
)

// ErrBufferSize is returned by drivers when buffer size is not positive.
var ErrBufferSize = errors.New("buffer size must be positive")

// Driver pulls samples from engine and delivers them to an output.
//
// Drive must call tick once per frame from a single goroutine until ctx is
// done or output fails. Tick calls must stop before Drive returns. Drive
// returns nil when output is finished, for example when all frames are
// rendered.
type Driver interface {
	Drive(ctx context.Context, tick func() float32) error
}

// DriverFunc is an adapter to use ordinary functions as drivers.
type DriverFunc func(ctx context.Context, tick func() float32) error

// Drive calls f(ctx, tick).
func (f DriverFunc) Drive(ctx context.Context, tick func() float32) error {
	return f(ctx, tick)
}

// Cued returns a driver that runs engine silently until cue is closed and
// then hands it over to d. It's used to apply initial patch before offline
// rendering starts.
func Cued(d Driver, cue <-chan struct{}) Driver {
	return DriverFunc(func(ctx context.Context, tick func() float32) error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-cue:
				return d.Drive(ctx, tick)
			default:
				tick()
			}
		}
	})
}

// Idle returns a driver that ticks engine as fast as possible and discards
// samples until ctx is done.
func Idle() Driver {
	return DriverFunc(func(ctx context.Context, tick func() float32) error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				tick()
			}
		}
	})
}

// Offline returns a driver that renders frames samples and passes them to
// write in buffers of bufferSize. The last buffer may be shorter. Buffer is
// reused between calls, so write must not retain it.
func Offline(frames, bufferSize int, write func([]float32) error) Driver {
	return DriverFunc(func(ctx context.Context, tick func() float32) error {
		if bufferSize <= 0 {
			return ErrBufferSize
		}
		buf := make([]float32, bufferSize)
		for left := frames; left > 0; {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			n := bufferSize
			if left < n {
				n = left
			}
			for i := 0; i < n; i++ {
				buf[i] = tick()
			}
			if err := write(buf[:n]); err != nil {
				return err
			}
			left -= n
		}
		return nil
	})
}
