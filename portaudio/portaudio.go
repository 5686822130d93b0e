// Package portaudio plays engine output on the default device.
package portaudio

import (
	"context"

	"github.com/gordonklaus/portaudio"

	"github.com/dudk/rack/log"
)

// Driver plays mono signal with blocking portaudio stream. Every buffer is
// filled by ticking the engine and then written to the device, so device
// clock paces the engine.
type Driver struct {
	sampleRate int
	bufferSize int
	log        log.Logger
}

// New returns new portaudio driver.
func New(sampleRate, bufferSize int) *Driver {
	return &Driver{
		sampleRate: sampleRate,
		bufferSize: bufferSize,
		log:        log.GetLogger(),
	}
}

// Drive plays until ctx is done or device fails. Portaudio is initialized
// for the duration of the call.
func (d *Driver) Drive(ctx context.Context, tick func() float32) (err error) {
	buf := make([]float32, d.bufferSize)
	if err = portaudio.Initialize(); err != nil {
		return err
	}
	defer func() {
		if terr := portaudio.Terminate(); err == nil {
			err = terr
		}
	}()
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(d.sampleRate), d.bufferSize, &buf)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stream.Close(); err == nil {
			err = cerr
		}
	}()
	if err = stream.Start(); err != nil {
		return err
	}
	d.log.Info("portaudio stream started")
	defer func() {
		if serr := stream.Stop(); err == nil {
			err = serr
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		for i := range buf {
			buf[i] = tick()
		}
		if err = stream.Write(); err != nil {
			return err
		}
	}
}
