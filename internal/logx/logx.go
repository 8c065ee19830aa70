// Package logx builds the process logger. Logs go to stderr because stdout
// carries the protocol stream.
package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects the log level and output format. Debug lowers the level to
// debug and adds caller information; PrettyFormat switches to the console
// writer.
type Config struct {
	Debug        bool `split_words:"true" default:"false"`
	PrettyFormat bool `envconfig:"PRETTY_LOGS" default:"false"`
}

// New returns a logger for conf writing to stderr and installs it as the
// global zerolog logger.
func New(conf Config) zerolog.Logger {
	return NewWriter(os.Stderr, conf)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, conf Config) zerolog.Logger {
	var logger zerolog.Logger
	if conf.PrettyFormat {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(w).With().Timestamp().Logger()
	}

	if conf.Debug {
		logger = logger.Level(zerolog.DebugLevel).With().Caller().Logger()
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	log.Logger = logger
	return logger
}
