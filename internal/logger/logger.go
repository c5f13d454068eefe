// Package logger provides structured logging configuration and setup for the application.
package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds the process logger. Output goes to stderr so command output on stdout stays clean.
func New(level, format string) zerolog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

func NewWithWriter(out io.Writer, level, format string) zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
		if level != "" {
			fmt.Fprintf(os.Stderr, "Invalid log level '%s', defaulting to 'info'\n", level)
		}
	}

	w := out
	if !strings.EqualFold(format, FormatJSON) {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	goVersion, gitRevision := buildInfo()

	l := zerolog.New(w).
		Level(logLevel).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Str("go_version", goVersion).
		Str("git_revision", gitRevision).
		Logger()

	if logLevel <= zerolog.DebugLevel {
		l = l.With().Caller().Logger()
	}

	zerolog.DefaultContextLogger = &l
	return l
}

func buildInfo() (goVersion, gitRevision string) {
	goVersion, gitRevision = "unknown", "unknown"

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	goVersion = info.GoVersion
	for _, v := range info.Settings {
		if v.Key == "vcs.revision" {
			gitRevision = v.Value
			break
		}
	}
	return
}
