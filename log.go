package apstatus

import (
	"fmt"
)

// Logger is the logging surface the core needs. internal/logging adapts zap to it.
type Logger interface {
	Debug(msg string)
	Debugf(format string, v ...any)
	Info(msg string)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// stderrLogger writes every level to whatever println is hooked up to, tagged with the level name. It is the default
// when Options.Logger is nil.
type stderrLogger struct{}

func (stderrLogger) Debug(msg string) {
	println("DEBUG", msg)
}

func (stderrLogger) Debugf(format string, v ...any) {
	println("DEBUG", fmt.Sprintf(format, v...))
}

func (stderrLogger) Info(msg string) {
	println("INFO", msg)
}

func (stderrLogger) Infof(format string, v ...any) {
	println("INFO", fmt.Sprintf(format, v...))
}

func (stderrLogger) Warnf(format string, v ...any) {
	println("WARN", fmt.Sprintf(format, v...))
}

func (stderrLogger) Errorf(format string, v ...any) {
	println("ERROR", fmt.Sprintf(format, v...))
}

type nopEvents struct{}

func (nopEvents) Redrawn(ScreenKind)          {}
func (nopEvents) ActionApplied(Action, error) {}
func (nopEvents) TouchDiscarded(string)       {}
