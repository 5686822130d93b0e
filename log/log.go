// Package log provides loggers for rack components.
package log

import (
	"io"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// DebugEnv is an environment variable that enables debug logging.
const DebugEnv = "RACK_DEBUG"

var (
	debug  bool
	silent atomic.Bool
)

// Logger is a global interface for rack loggers.
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
}

func init() {
	var err error
	debug, err = strconv.ParseBool(os.Getenv(DebugEnv))
	if err != nil {
		debug = false
	}
}

// GetLogger returns a new logger instance.
func GetLogger() *logrus.Logger {
	l := logrus.New()
	switch {
	case silent.Load():
		l.SetOutput(io.Discard)
		l.SetLevel(logrus.PanicLevel)
	case debug:
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Discard makes loggers created afterwards drop everything. Tests use it to
// keep output clean.
func Discard() {
	silent.Store(true)
}
