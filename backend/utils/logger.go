package utils

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// InitLogger инициализирует глобальный JSON-логгер.
func InitLogger(level string) *zap.Logger {
	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		lvl = zapcore.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		CallerKey:      "caller",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		lvl,
	)

	log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return log
}

// Logger возвращает глобальный логгер (инициализирует по умолчанию, если нужно).
func Logger() *zap.Logger {
	if log == nil {
		InitLogger("info")
	}
	return log
}

func LogInfo(msg string, fields ...zap.Field) {
	Logger().Info(msg, fields...)
}

func LogWarn(msg string, fields ...zap.Field) {
	Logger().Warn(msg, fields...)
}

func LogError(msg string, fields ...zap.Field) {
	Logger().Error(msg, fields...)
}

func SyncLogger() {
	if log != nil {
		log.Sync()
	}
}
