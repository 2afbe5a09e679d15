// Package logging provides the process-wide structured logger used by
// cmd/demo and by the worker pool's crash-diagnostics path.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the shared logger. It always writes human-readable console
// output (zerolog.ConsoleWriter) with timestamps to stderr, whatever kind of
// stream stderr is; there is no plain-JSON mode. Callers that need a differently-configured logger can build their own
// zerolog.Logger and ignore this one entirely.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// SetLevel adjusts the global minimum level for Logger and any logger
// derived from zerolog's package-level defaults.
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
