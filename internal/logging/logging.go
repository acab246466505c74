// Package logging builds the process logger: zap underneath, logr on top.
package logging

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls the logger built by New.
type Options struct {
	// Debug lowers the level so V(1) and V(2) messages are written.
	Debug bool
	// Output receives log lines; stderr when nil.
	Output io.Writer
}

// New returns a console logger and a flush function to defer.
func New(opts Options) (logr.Logger, func(), error) {
	zc := zap.NewDevelopmentConfig()
	zc.DisableStacktrace = true
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	// logr V(n) maps to zap level -n.
	zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.Level(-2))
	}

	var (
		zl  *zap.Logger
		err error
	)
	if opts.Output != nil {
		enc := zapcore.NewConsoleEncoder(zc.EncoderConfig)
		zl = zap.New(zapcore.NewCore(enc, zapcore.AddSync(opts.Output), zc.Level))
	} else {
		zl, err = zc.Build()
		if err != nil {
			return logr.Discard(), func() {}, fmt.Errorf("build logger: %w", err)
		}
	}
	return zapr.NewLogger(zl).WithName("pivotree"), func() { _ = zl.Sync() }, nil
}
