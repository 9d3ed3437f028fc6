package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
)

const TimeFormat = "15:04:05.000"

// Levels lists the names ParseLevel accepts, most verbose first.
func Levels() []string {
	return []string{"trace", "debug", "info", "warn", "error"}
}

func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q, use one of %s", name, strings.Join(Levels(), ", "))
	}
}

// Setup returns a console logger on colorable stdout.
func Setup(level string) (zerolog.Logger, error) {
	return New(colorable.NewColorableStdout(), level)
}

// New returns a console logger writing to out at the given level.
func New(out io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: TimeFormat,
	}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger(), nil
}
