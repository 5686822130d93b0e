package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dudk/rack"
	"github.com/dudk/rack/engine"
	"github.com/dudk/rack/log"
	"github.com/dudk/rack/metric"
	"github.com/dudk/rack/patch"
	"github.com/dudk/rack/schedule"
)

// reportInterval is how often engine counters are logged.
const reportInterval = time.Second

// policyValue is a flag value for schedule policy.
type policyValue struct {
	schedule.Policy
}

func (p *policyValue) Set(s string) (err error) {
	p.Policy, err = schedule.ParsePolicy(s)
	return
}

// engineFlags are shared by commands that run an engine.
type engineFlags struct {
	patch      string
	sampleRate int
	bufferSize int
	policy     policyValue
}

func (f *engineFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.patch, "patch", "", "lua patch script (required)")
	fs.IntVar(&f.sampleRate, "samplerate", rack.DefaultSampleRate, "sample rate")
	fs.IntVar(&f.bufferSize, "buffersize", rack.DefaultBufferSize, "frames per buffer")
	fs.Var(&f.policy, "policy", "schedule policy: topological or insertion")
}

func (f *engineFlags) validate() error {
	var message string
	if f.patch == "" {
		message = message + "Missing -patch required flag\n"
	}
	if f.sampleRate <= 0 {
		message = message + "Sample rate must be positive\n"
	}
	if f.bufferSize <= 0 {
		message = message + "Buffer size must be positive\n"
	}
	if message != "" {
		return errors.New(message)
	}
	return nil
}

// start runs the driver and loads the patch. If cue is not nil, it's closed
// once the patch is applied.
func (f *engineFlags) start(name string, d engine.Driver, cue chan struct{}) (*engine.Graph, error) {
	if cue != nil {
		d = engine.Cued(d, cue)
	}
	g, err := engine.Start(d,
		engine.WithName(name),
		engine.WithPolicy(f.policy.Policy),
		engine.WithMetric(),
	)
	if err != nil {
		return nil, err
	}
	err = patch.New(g, f.sampleRate).File(f.patch)
	if err == nil {
		err = g.Sync()
	}
	if err != nil {
		if cerr := g.Close(); cerr != nil {
			log.GetLogger().Warn(cerr)
		}
		return nil, err
	}
	if cue != nil {
		close(cue)
	}
	return g, nil
}

// wait blocks until engine stops, timeout expires or process is
// interrupted. Zero timeout means no limit. Counters are logged while
// waiting.
func wait(name string, g *engine.Graph, timeout time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	eg, ctx := errgroup.WithContext(ctx)
	stopped := make(chan struct{})
	eg.Go(func() error {
		defer close(stopped)
		select {
		case <-ctx.Done():
		case <-g.Done():
		}
		return g.Close()
	})
	eg.Go(func() error {
		t := time.NewTicker(reportInterval)
		defer t.Stop()
		for {
			select {
			case <-stopped:
				return nil
			case <-t.C:
				report(name)
			}
		}
	})
	err := eg.Wait()
	report(name)
	return err
}

func report(name string) {
	fields := logrus.Fields{}
	for k, v := range metric.Get(name) {
		fields[k] = v
	}
	log.GetLogger().WithFields(fields).Info(fmt.Sprintf("%v engine", name))
}
