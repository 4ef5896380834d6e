package logger

import (
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var enabled atomic.Bool

// SetLogging switches diagnostic logging process-wide. Enabled means debug
// level with timestamps; disabled drops back to warnings and errors only.
// It affects every predictor instance and never fails.
func SetLogging(on bool) {
	enabled.Store(on)
	if on {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		log.Debug("Diagnostic logging enabled")
		return
	}
	log.SetLevel(log.WarnLevel)
	log.SetReportTimestamp(false)
}

// Enabled reports the last value passed to SetLogging.
func Enabled() bool {
	return enabled.Load()
}
