package log_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/dudk/rack/log"
)

func TestGetLogger(t *testing.T) {
	var l log.Logger = log.GetLogger()
	assert.NotNil(t, l)
	assert.NotEqual(t, logrus.PanicLevel, log.GetLogger().GetLevel())

	log.Discard()
	d := log.GetLogger()
	assert.Equal(t, logrus.PanicLevel, d.GetLevel())
	d.Info("dropped")
}
