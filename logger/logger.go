package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the process-wide logger built by Initialize
	Logger *zap.Logger
)

// New builds a logger for the given level without touching the globals
func New(level string) (*zap.Logger, error) {
	var config zap.Config
	if level == "debug" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	return config.Build()
}

// Initialize sets up the logger with the specified log level and replaces the zap globals
func Initialize(level string) error {
	built, err := New(level)
	if err != nil {
		return err
	}
	Logger = built
	zap.ReplaceGlobals(Logger)
	return nil
}

// ForPackage returns the global logger tagged with the calling package
func ForPackage(name string) *zap.Logger {
	return zap.L().With(zap.String("package", name))
}

// Sync flushes any buffered log entries
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
