// Package logger holds the process-wide structured logger.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is safe to use before Initialize; it discards everything until then.
var Logger *zap.SugaredLogger = zap.NewNop().Sugar()

// Initialize replaces the global logger. JSON output suits log collection;
// the console encoder is for interactive use.
func Initialize(jsonOutput bool, level string) error {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	var zl *zap.Logger
	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.OutputPaths = []string{"stderr"}
		zl, err = cfg.Build()
		if err != nil {
			return err
		}
	} else {
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zl = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(enc),
			zapcore.AddSync(os.Stderr),
			lvl,
		))
	}

	Logger = zl.Sugar()
	return nil
}

// Sync flushes buffered entries.
func Sync() {
	_ = Logger.Sync()
}
