package logger

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const InfoLogLevel = "info"

// Global variables
var (
	globalLogger *Logger
	loggerMutex  sync.RWMutex
	once         sync.Once

	GlobalLogLevel string = InfoLogLevel
)

// Logger wraps zap with the formatted helpers used across the codebase.
type Logger struct {
	*zap.Logger
}

// InitLoggerOutputs loads logger settings from viper if available.
func InitLoggerOutputs() {
	if viper.IsSet("general.log_level") {
		GlobalLogLevel = viper.GetString("general.log_level")
	}
}

// InitProduction initializes the global logger. Safe to call more than once;
// only the first call takes effect.
func InitProduction() {
	once.Do(func() {
		if GlobalLogLevel == "" {
			GlobalLogLevel = InfoLogLevel
		}

		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(getZapLevel(GlobalLogLevel))
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		zapLogger, err := config.Build(zap.AddCaller())
		if err != nil {
			zapLogger = zap.NewNop()
		}

		loggerMutex.Lock()
		globalLogger = &Logger{Logger: zapLogger.Named("edgequery")}
		loggerMutex.Unlock()
	})
}

// Get returns the global logger, initializing it if needed.
func Get() *Logger {
	loggerMutex.RLock()
	l := globalLogger
	loggerMutex.RUnlock()
	if l == nil {
		InitProduction()
		loggerMutex.RLock()
		l = globalLogger
		loggerMutex.RUnlock()
	}
	return l
}

// SetGlobalLogger replaces the global logger. Used by tests.
func SetGlobalLogger(l *Logger) {
	loggerMutex.Lock()
	globalLogger = l
	loggerMutex.Unlock()
}

func getZapLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Formatted logging methods
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}
