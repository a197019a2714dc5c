package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger sets up the process-wide logger for a daemon. Webhook traffic
// goes to stdout, so log output stays on stderr.
func InitLogger(service string) zerolog.Logger {
	logger := newLogger(os.Stderr, service)
	log.Logger = logger
	return logger
}

func newLogger(out io.Writer, service string) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(writer).With().Timestamp().Str("service", service).Logger()
}
