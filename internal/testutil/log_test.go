package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaptureLogger(t *testing.T) {
	logger, buf := CaptureLogger()
	logger.Debug("calculated", "knowledge", 1001)

	assert.Contains(t, buf.String(), "msg=calculated")
	assert.Contains(t, buf.String(), "knowledge=1001")
}

func TestDiscardLogger(t *testing.T) {
	assert.NotPanics(t, func() { DiscardLogger().Info("dropped") })
}
