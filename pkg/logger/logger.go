package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const functionKey = "func"

// New builds the process logger. Production emits JSON at info level,
// everything else gets the colored development console encoder.
func New(production bool) (*zap.Logger, error) {
	var zapConfig zap.Config
	if production {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapConfig.EncoderConfig.FunctionKey = functionKey
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapConfig.Build(zap.AddCaller())
}

// SafeError is a zap field carrying a sanitized error string.
func SafeError(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.String("error", SanitizeLogMessage(err.Error()))
}
