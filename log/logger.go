// Package log wraps github.com/op/go-logging with the small leveled
// interface the command-line and web entry points and the web driver log
// through. The render core (BVH, integrators, chains) does not log.
package log

import (
	"io"
	"os"

	logging "github.com/op/go-logging"
)

// Level mirrors the go-logging severities this package exposes.
type Level int

const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

// Logger is the interface the rest of the module logs through.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Notice(args ...interface{})
	Noticef(format string, args ...interface{})
	Warning(args ...interface{})
	Warningf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

var backend = logging.NewLogBackend(os.Stdout, "", 0)

func init() {
	formatter := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05.000} %{module} %{level:.4s} %{message}`,
	)
	formatted := logging.NewBackendFormatter(backend, formatter)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.NOTICE, "")
	logging.SetBackend(leveled)
}

// New returns a named logger, e.g. New("bvh") or New("mlt").
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// SetSink redirects all logger output to w.
func SetSink(w io.Writer) {
	backend = logging.NewLogBackend(w, "", 0)
	logging.SetBackend(backend)
}

// SetLevel sets the minimum severity logged across every module.
func SetLevel(l Level) {
	var lv logging.Level
	switch l {
	case Debug:
		lv = logging.DEBUG
	case Info:
		lv = logging.INFO
	case Notice:
		lv = logging.NOTICE
	case Warning:
		lv = logging.WARNING
	case Error:
		lv = logging.ERROR
	}
	logging.SetLevel(lv, "")
}
