// Package logging sets up the host's diagnostic logger. It is strictly a
// host-level concern: pkg/cell and pkg/interp never import this package
// and never log on their own — they report failures through Go errors,
// and it is main's job to decide whether/how those get printed.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger writing human-readable output to w (color
// disabled when w isn't a terminal). verbose lowers the level to debug;
// otherwise only info-and-above is emitted.
func New(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: !isTerminal(w)}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// Default builds the logger used when main starts up: stderr, non-verbose.
func Default() zerolog.Logger {
	return New(os.Stderr, false)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
