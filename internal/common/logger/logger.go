package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Format selects how lines are encoded.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// ParseFormat accepts "console" or "json", case-insensitively. Empty means console.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatConsole:
		return FormatConsole, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown log format %q", s)
	}
}

// Options describe the process logger.
type Options struct {
	Service string
	Debug   bool
	Format  Format
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "timestamp"
	zerolog.MessageFieldName = "message"
}

// New builds a logger writing to out without touching the global one.
func New(out io.Writer, opts Options) zerolog.Logger {
	if opts.Format != FormatJSON {
		out = consoleWriter(out)
	}

	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", opts.Service).
		Logger()
}

// Init installs New(os.Stdout, opts) as the global logger.
func Init(opts Options) {
	InitWithWriter(os.Stdout, opts)
}

// InitWithWriter is Init with an explicit sink. The global logger also becomes
// the fallback for zerolog.Ctx on contexts that carry none.
func InitWithWriter(out io.Writer, opts Options) {
	log.Logger = New(out, opts)
	zerolog.DefaultContextLogger = &log.Logger

	l := Component("logger")
	l.Debug().Str("format", string(opts.Format)).Msg("Logger initialized")
}

// Component returns a child of the global logger tagged with name. The child
// keeps the sink and level the global logger had when it was created, so
// components are built after Init.
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}

// consoleWriter renders "| level | message key:value" columns. Colors are
// only used when writing to a file such as stdout.
func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	_, isFile := out.(*os.File)
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !isFile,
		TimeFormat: time.RFC3339,
		FormatLevel: func(i interface{}) string {
			return fmt.Sprintf("| %-6s|", i)
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("| %s", i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s:", i)
		},
		FormatFieldValue: func(i interface{}) string {
			return fmt.Sprintf("%s", i)
		},
	}
}
