package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/dudk/rack/engine"
	"github.com/dudk/rack/oto"
	"github.com/dudk/rack/portaudio"
)

type playCommand struct {
	engineFlags
	driver   string
	duration time.Duration
}

func (cmd *playCommand) Name() string {
	return "play"
}

func (cmd *playCommand) Help() string {
	return "Play patch on default audio device"
}

func (cmd *playCommand) Register(fs *flag.FlagSet) {
	cmd.engineFlags.register(fs)
	fs.StringVar(&cmd.driver, "driver", "portaudio", "audio driver: portaudio or oto")
	fs.DurationVar(&cmd.duration, "duration", 0, "stop after duration, plays until interrupted if zero")
}

func (cmd *playCommand) Run() error {
	if err := cmd.validate(); err != nil {
		return err
	}
	d, err := cmd.newDriver()
	if err != nil {
		return err
	}
	g, err := cmd.start(cmd.Name(), d, nil)
	if err != nil {
		return err
	}
	return wait(cmd.Name(), g, cmd.duration)
}

func (cmd *playCommand) newDriver() (engine.Driver, error) {
	switch cmd.driver {
	case "portaudio":
		return portaudio.New(cmd.sampleRate, cmd.bufferSize), nil
	case "oto":
		return oto.New(cmd.sampleRate, cmd.bufferSize), nil
	}
	return nil, fmt.Errorf("unknown driver %q", cmd.driver)
}
