package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// FormatConsole selects the human readable writer; anything else is JSON
const FormatConsole = "console"

// New builds a logger writing to stdout
func New(level, format string) zerolog.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter builds a logger writing to w
func NewWithWriter(w io.Writer, level, format string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := w
	if format == FormatConsole {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "2006-01-02 15:04:05",
		}
	}

	log := zerolog.New(out).With().Timestamp().Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		if level != "" {
			log.Warn().Str("level", level).Msg("invalid log level, defaulting to info")
		}
		lvl = zerolog.InfoLevel
	}
	return log.Level(lvl)
}
