package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// New builds the service logger. The effective level is set globally once
// configuration is loaded.
func New() zerolog.Logger {
	return NewWithWriter(os.Stdout)
}

func NewWithWriter(w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Str("service", "spilcafe-catalog").
		Logger().
		Level(zerolog.DebugLevel)

	zerolog.DefaultContextLogger = &logger

	return logger
}

var Module = fx.Provide(New)
