package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger *slog.Logger

// ParseLevel maps a config level string onto slog and zap levels. Unknown
// values fall back to info.
func ParseLevel(levelStr string) (slog.Level, zapcore.Level) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return slog.LevelDebug, zapcore.DebugLevel
	case "WARN", "WARNING":
		return slog.LevelWarn, zapcore.WarnLevel
	case "ERROR":
		return slog.LevelError, zapcore.ErrorLevel
	default:
		return slog.LevelInfo, zapcore.InfoLevel
	}
}

// NewZap builds the zap logger the rest of the process logs through.
// format "console" gives the development encoder, anything else JSON.
func NewZap(levelStr, format string) (*zap.Logger, error) {
	_, zapLevel := ParseLevel(levelStr)
	var cfg zap.Config
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	return cfg.Build()
}

// Init routes the global slog logger into zapLogger.
func Init(zapLogger *zap.Logger, levelStr string) {
	slogLevel, _ := ParseLevel(levelStr)
	handler := slogzap.Option{
		Level:  slogLevel,
		Logger: zapLogger,
	}.NewZapHandler()
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

// InitSlog initializes the global slog logger with a JSON handler on stdout.
// Used by tests and tools that do not need zap.
func InitSlog(levelStr string) {
	slogLevel, _ := ParseLevel(levelStr)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel})
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

func ensureInitialized() {
	if globalLogger == nil {
		InitSlog("INFO")
	}
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) {
	ensureInitialized()
	if globalLogger.Enabled(context.Background(), slog.LevelDebug) {
		globalLogger.Debug(msg, args...)
	}
}

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) {
	ensureInitialized()
	if globalLogger.Enabled(context.Background(), slog.LevelInfo) {
		globalLogger.Info(msg, args...)
	}
}

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) {
	ensureInitialized()
	if globalLogger.Enabled(context.Background(), slog.LevelWarn) {
		globalLogger.Warn(msg, args...)
	}
}

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) {
	ensureInitialized()
	if globalLogger.Enabled(context.Background(), slog.LevelError) {
		globalLogger.Error(msg, args...)
	}
}

// Fatal logs a message at ErrorLevel then exits.
func Fatal(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Error(msg, args...)
	os.Exit(1)
}
