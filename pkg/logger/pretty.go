package logger

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewPretty returns a colorized, human-friendly logger for interactive CLI
// commands such as "scribe ask". Services log through zap instead.
func NewPretty(w io.Writer, debug bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          "scribe",
		ReportTimestamp: false,
	})
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return l
}
