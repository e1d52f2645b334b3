package h2

import (
	"io"
	"log"
	"os"
)

// Logger abstracts the logging used for admission refusals and GOAWAY
// progress, giving callers the choice of backend. Errors are still
// returned to callers; logging never replaces them.
type Logger interface {
	Errorf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

// NewLogger builds a Logger writing to output with the standard
// library's log flags.
func NewLogger(output io.Writer, prefix string, flag int) Logger {
	return &logger{l: log.New(output, prefix, flag)}
}

// NewFromStandardLogger wraps a standard library logger.
func NewFromStandardLogger(l *log.Logger) Logger {
	return &logger{l: l}
}

func createLogger() *logger {
	return &logger{l: log.New(os.Stderr, "", log.Ldate|log.Lmicroseconds)}
}

var _ Logger = (*logger)(nil)

type disableLogger struct{}

func (l *disableLogger) Errorf(format string, v ...interface{}) {}
func (l *disableLogger) Warnf(format string, v ...interface{})  {}
func (l *disableLogger) Debugf(format string, v ...interface{}) {}

type logger struct {
	l *log.Logger
}

func (l *logger) Errorf(format string, v ...interface{}) {
	l.output("ERROR", format, v...)
}

func (l *logger) Warnf(format string, v ...interface{}) {
	l.output("WARN", format, v...)
}

func (l *logger) Debugf(format string, v ...interface{}) {
	l.output("DEBUG", format, v...)
}

func (l *logger) output(level, format string, v ...interface{}) {
	format = level + " [h2] " + format
	if len(v) == 0 {
		l.l.Print(format)
		return
	}
	l.l.Printf(format, v...)
}
