// Package test contains helper values useful for testing rack packages.
package test

import (
	"path/filepath"
	"runtime"
)

// All test assets should be listed here so they could be accessible in all test packages.
var (
	testdata = resolvePath("../_testdata")

	// Patch scripts.
	Patch = struct {
		Sine  string
		Chord string
	}{
		Sine:  filepath.Join(testdata, "sine.lua"),  // Sine plays 440 Hz.
		Chord: filepath.Join(testdata, "chord.lua"), // Chord mixes three sines through vca.
	}

	// List of all outputs to avoid collision.
	Out = struct {
		Dir string
		Wav string
		Mp3 string
		Cmd string
	}{
		Dir: filepath.Join(testdata, "out"),
		Wav: filepath.Join(testdata, "out", "render.wav"),
		Mp3: filepath.Join(testdata, "out", "render.mp3"),
		Cmd: filepath.Join(testdata, "out", "cmd.wav"),
	}
)

// resolvePath returns absolute path relative to this package, so assets
// resolve the same from any test package.
func resolvePath(path string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), path)
}
