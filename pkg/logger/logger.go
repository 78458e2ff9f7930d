package logger

import (
	"os"

	"go.uber.org/zap"
)

type Logger interface {
	Info(msg string, values ...any)
	Warn(msg string, values ...any)
	Error(msg string, values ...any)
	Debug(msg string, values ...any)
	Fatal(error error, values ...any)
	Printf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

func init() {
	if err := Configure(os.Getenv("LOG_ENV")); err != nil {
		panic(err)
	}
}

// Configure rebuilds the package logger for env: "production" logs JSON at
// info level, anything else uses the development console encoder. Fields
// added with With are dropped.
func Configure(env string) error {
	config := zap.NewDevelopmentConfig()
	if env == "production" {
		config = zap.NewProductionConfig()
	}

	_, err := NewLogger(config)
	return err
}

func Info(msg string, values ...any) {
	GetLogger().Info(msg, values...)
}

func Warn(msg string, values ...any) {
	GetLogger().Warn(msg, values...)
}

func Error(msg string, values ...any) {
	GetLogger().Error(msg, values...)
}

func Debug(msg string, values ...any) {
	GetLogger().Debug(msg, values...)
}

func Fatal(error error, values ...any) {
	GetLogger().Fatal(error, values...)
}

// With attaches key/value pairs to every entry written by the package logger
// from now on.
func With(values ...any) {
	l := GetLogger()
	zapLogger = &ZapLogger{log: l.log.With(values...)}
}

func Sync() {
	_ = GetLogger().log.Sync()
}
