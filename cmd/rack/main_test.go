package main

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/rack"
	"github.com/dudk/rack/log"
	"github.com/dudk/rack/test"
)

func TestInit(t *testing.T) {
	assert.Equal(t, 2, len(commands))
	for _, cmd := range commands {
		assert.Equal(t, cmd, lookup(cmd.Name()))
	}
	assert.Nil(t, lookup("unknown"))
}

func TestUsage(t *testing.T) {
	tests := []struct {
		description string
		args        []string
		code        int
		output      string
	}{
		{
			description: "no command",
			code:        exitUsage,
			output:      "Usage: rack <command>",
		},
		{
			description: "unknown command",
			args:        []string{"unknown"},
			code:        exitUsage,
			output:      `unknown command "unknown"`,
		},
		{
			description: "command help",
			args:        []string{"render", "-h"},
			code:        exitOK,
			output:      "-patch",
		},
		{
			description: "bad flag",
			args:        []string{"play", "-policy", "random"},
			code:        exitUsage,
			output:      "unknown schedule policy",
		},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		assert.Equal(t, tt.code, run(tt.args, &buf), tt.description)
		assert.Contains(t, buf.String(), tt.output, tt.description)
	}
	var buf bytes.Buffer
	run(nil, &buf)
	for _, cmd := range commands {
		assert.Contains(t, buf.String(), cmd.Name())
	}
}

func TestRender(t *testing.T) {
	log.Discard()
	require.Nil(t, os.MkdirAll(test.Out.Dir, 0755))
	code := run([]string{"render",
		"-patch", test.Patch.Sine,
		"-out", test.Out.Cmd,
		"-seconds", "0.5",
		"-policy", "insertion",
	}, io.Discard)
	assert.Equal(t, exitOK, code)

	f, err := os.Open(test.Out.Cmd)
	require.Nil(t, err)
	defer f.Close()
	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	assert.Nil(t, err)
	assert.Equal(t, rack.DefaultSampleRate/2, len(buf.Data))

	code = run([]string{"render", "-patch", "missing.lua", "-out", test.Out.Cmd}, io.Discard)
	assert.Equal(t, exitFailure, code)
}

func TestRenderErrors(t *testing.T) {
	log.Discard()
	tests := []struct {
		description string
		cmd         renderCommand
	}{
		{
			description: "missing patch",
			cmd:         renderCommand{out: test.Out.Cmd, seconds: 1},
		},
		{
			description: "unsupported format",
			cmd: renderCommand{
				engineFlags: engineFlags{patch: test.Patch.Sine, sampleRate: rack.DefaultSampleRate, bufferSize: rack.DefaultBufferSize},
				out:         "out.flac",
				seconds:     1,
			},
		},
		{
			description: "missing patch file",
			cmd: renderCommand{
				engineFlags: engineFlags{patch: "missing.lua", sampleRate: rack.DefaultSampleRate, bufferSize: rack.DefaultBufferSize},
				out:         test.Out.Cmd,
				bitDepth:    16,
				seconds:     1,
			},
		},
	}
	for _, tt := range tests {
		assert.NotNil(t, tt.cmd.Run(), tt.description)
	}
}

func TestPlayDriver(t *testing.T) {
	cmd := playCommand{driver: "alsa"}
	_, err := cmd.newDriver()
	assert.NotNil(t, err)
}
