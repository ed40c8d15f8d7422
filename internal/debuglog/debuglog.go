// Package debuglog hands out per-subsystem loggers. They discard everything
// unless FACADE_DEBUG_<SUBSYSTEM>=1 is set, e.g. FACADE_DEBUG_COMPACTION=1.
package debuglog

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

const timeFormat = "15:04:05.00"

// New returns the logger for a subsystem.
func New(subsystem string) *log.Logger {
	if !Enabled(subsystem) {
		return log.NewWithOptions(io.Discard, log.Options{Prefix: subsystem})
	}
	return log.NewWithOptions(os.Stdout, log.Options{
		Prefix:          subsystem,
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Level:           log.DebugLevel,
	})
}

// Enabled reports whether debugging is switched on for the subsystem.
func Enabled(subsystem string) bool {
	return os.Getenv("FACADE_DEBUG_"+strings.ToUpper(subsystem)) == "1"
}
