// Package logging builds the logr.Logger used throughout complykit.
package logging

import (
	"io"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the logger.
type Options struct {
	// Verbose enables V(1) messages such as HINT issues.
	Verbose bool
	// JSON switches from console to JSON encoding.
	JSON bool
}

// New returns a logger writing to w. Logs go to stderr in the CLI so that
// stdout stays parseable for --json and --yaml output.
func New(w io.Writer, opts Options) logr.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encoder := zapcore.NewConsoleEncoder(encCfg)
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	// zapr maps logr V(n) to zap level -n.
	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zapr.NewLogger(zap.New(core))
}
