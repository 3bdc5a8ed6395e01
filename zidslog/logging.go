// Package zidslog wires github.com/op/go-logging into a single
// package-level logger shared by every ZIDS package: a colored formatter
// for terminals, a syslog-style formatter for everything else, and a level
// overridable by an environment variable.
package zidslog

import (
	"os"

	"github.com/op/go-logging"
)

// Log is the shared logger every ZIDS package logs through. It starts with
// a default stderr backend at logging.NOTICE; call Setup to reconfigure.
var Log = logging.MustGetLogger("zids")

var stderrFormat = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} %{level:.4s} %{module} ▶%{color:reset} %{message}`,
)

var fileFormat = logging.MustStringFormatter(
	`%{time:2006-01-02T15:04:05.000Z07:00} %{level:.6s} %{module} ▶ %{message}`,
)

func init() {
	Setup("zids", logging.NOTICE, os.Stderr)
}

// Setup installs a leveled backend writing to w, formatted for a terminal
// when w is os.Stderr/os.Stdout and as plain syslog-style lines otherwise.
// If ZIDS_LOG_LEVEL is set to one of CRITICAL, ERROR, WARNING, NOTICE,
// INFO, DEBUG when Setup runs, that level replaces defaultLevel; the
// variable is not read again afterwards.
func Setup(prefix string, defaultLevel logging.Level, w *os.File) *logging.Logger {
	backend := logging.NewLogBackend(w, prefix+" ", 0)
	if w == os.Stderr || w == os.Stdout {
		logging.SetFormatter(stderrFormat)
	} else {
		logging.SetFormatter(fileFormat)
	}

	leveled := logging.AddModuleLevel(backend)
	level := defaultLevel
	switch os.Getenv("ZIDS_LOG_LEVEL") {
	case "CRITICAL":
		level = logging.CRITICAL
	case "ERROR":
		level = logging.ERROR
	case "WARNING":
		level = logging.WARNING
	case "NOTICE":
		level = logging.NOTICE
	case "INFO":
		level = logging.INFO
	case "DEBUG":
		level = logging.DEBUG
	}
	leveled.SetLevel(level, "")

	logging.SetBackend(leveled)
	return Log
}
