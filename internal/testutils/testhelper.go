package testutils

import (
	"bytes"

	"github.com/sirupsen/logrus"
)

// NewCapturingLogger returns a debug-level logger writing plain text into buf.
func NewCapturingLogger(buf *bytes.Buffer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	return logger
}
