package main

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dudk/rack/engine"
	"github.com/dudk/rack/mp3"
	"github.com/dudk/rack/wav"
)

type renderCommand struct {
	engineFlags
	out      string
	seconds  float64
	bitDepth int
	bitRate  int
	quality  int
}

func (cmd *renderCommand) Name() string {
	return "render"
}

func (cmd *renderCommand) Help() string {
	return "Render patch to wav or mp3 file"
}

func (cmd *renderCommand) Register(fs *flag.FlagSet) {
	cmd.engineFlags.register(fs)
	fs.StringVar(&cmd.out, "out", "", "output .wav or .mp3 file (required)")
	fs.Float64Var(&cmd.seconds, "seconds", 5, "length of rendered audio")
	fs.IntVar(&cmd.bitDepth, "bitdepth", wav.BitDepth16, "wav bit depth: 16 or 32")
	fs.IntVar(&cmd.bitRate, "bitrate", 192, "mp3 bit rate in kbps")
	fs.IntVar(&cmd.quality, "quality", 2, "mp3 quality from 0 (best) to 9 (fastest)")
}

func (cmd *renderCommand) Run() error {
	if err := cmd.validate(); err != nil {
		return err
	}
	if cmd.out == "" {
		return errors.New("Missing -out required flag")
	}
	if cmd.seconds <= 0 {
		return errors.New("Seconds must be positive")
	}
	r, err := cmd.newRenderer()
	if err != nil {
		return err
	}
	g, err := cmd.start(cmd.Name(), r, make(chan struct{}))
	if err != nil {
		return err
	}
	return wait(cmd.Name(), g, 0)
}

func (cmd *renderCommand) newRenderer() (engine.Driver, error) {
	frames := int(cmd.seconds * float64(cmd.sampleRate))
	switch ext := strings.ToLower(filepath.Ext(cmd.out)); ext {
	case ".wav":
		return wav.NewRenderer(cmd.out, cmd.sampleRate, cmd.bitDepth, frames)
	case ".mp3":
		return mp3.NewRenderer(cmd.out, cmd.sampleRate, cmd.bitRate, cmd.quality, frames), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", ext)
	}
}
