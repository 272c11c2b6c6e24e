package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/YuminosukeSato/salaryforest/pkg/errors"
	"github.com/rs/zerolog"
)

// Output formats accepted by SetupLogger.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// SetupLogger configures the global zerolog provider.
// level is one of debug, info, warn, error; format is console or json.
// Library warnings (pkg/errors.Warn) are routed to the same logger.
func SetupLogger(level, format string, w io.Writer) error {
	lvl, err := ToLogLevel(level)
	if err != nil {
		return err
	}
	if w == nil {
		w = os.Stderr
	}

	zerolog.ErrorStackMarshaler = marshalStack

	switch strings.ToLower(format) {
	case FormatConsole, "":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case FormatJSON:
	default:
		return errors.NewValidationError("log.format", "must be console or json", format)
	}

	p := NewZerologProvider(w, lvl)
	SetProvider(p)

	warnLogger := p.GetLoggerWithName("warnings")
	errors.SetZerologWarnFunc(func(warning error) {
		warnLogger.Warn(warning.Error(), "warning", warning)
	})
	return nil
}

// ToLogLevel parses a level name.
func ToLogLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.NewValidationError("log.level", "must be debug, info, warn or error", level)
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)
