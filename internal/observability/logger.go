package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// prodならJSON、それ以外はコンソール向け
func NewLogger(goEnv string) (*zap.Logger, error) {
	if goEnv == "prod" {
		return zap.NewProduction()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}
