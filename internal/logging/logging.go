// Package logging builds the zap logger used across speechcut.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ErrInvalidOption indicates an unknown level or format.
var ErrInvalidOption = errors.New("invalid logging option")

// Options describes logger construction parameters.
// Zero values mean level "warn", console format, and os.Stderr.
type Options struct {
	Level  string
	Format string
	Writer io.Writer
}

// New constructs a logger from opts.
func New(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	format, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	var enc zapcore.Encoder
	if format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encCfg.EncodeDuration = zapcore.StringDurationEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core), nil
}

// ParseLevel maps a level name to a zap level. Empty means warn, so a normal
// run only prints the report.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return zapcore.WarnLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("%w: log level %q (use debug, info, warn, or error)", ErrInvalidOption, s)
}

// ParseFormat normalizes a format name. Empty means console.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "":
		return FormatConsole, nil
	case FormatConsole, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: log format %q (use console or json)", ErrInvalidOption, s)
}
