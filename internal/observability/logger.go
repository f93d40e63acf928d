// Package observability holds the process-wide CLI logger.
package observability

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the logger used by commands. It discards everything until
// InitCLILogger runs.
var CLILogger = zap.NewNop()

// InitCLILogger builds a console logger on stderr. verbose forces debug level.
func InitCLILogger(name string, verbose bool) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	CLILogger = NewConsoleLogger(name, zapcore.Lock(os.Stderr), level)
}

// SetLevel rebuilds CLILogger at the named level (debug, info, warn, error).
// Unknown names leave the logger unchanged and return the parse error.
func SetLevel(name, level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	CLILogger = NewConsoleLogger(name, zapcore.Lock(os.Stderr), lvl)
	return nil
}

// NewConsoleLogger returns a human-readable logger writing to ws.
func NewConsoleLogger(name string, ws zapcore.WriteSyncer, level zapcore.Level) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, level)
	return zap.New(core).Named(name)
}
