// Package logger builds the logrus loggers used by the binaries. The engine
// core never reaches for a global: it is handed a logrus.FieldLogger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to out at the given level ("debug", "info", ...)
// and format ("json" or "text"). An unparseable level falls back to info.
func New(level, format string, out io.Writer) *logrus.Logger {
	log := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			DisableColors:    out != os.Stdout && out != os.Stderr,
			DisableQuote:     true,
			QuoteEmptyFields: true,
		})
	}

	log.SetOutput(out)
	return log
}

// FromEnv builds a stderr logger from LOG_LEVEL and LOG_FORMAT, using the
// supplied fallbacks when a variable is unset.
func FromEnv(defLevel, defFormat string) *logrus.Logger {
	level, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		level = defLevel
	}
	format, ok := os.LookupEnv("LOG_FORMAT")
	if !ok {
		format = defFormat
	}
	return New(level, format, os.Stderr)
}

// Discard returns a logger that drops everything. It is the default for the
// engine when no logger is injected.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}
