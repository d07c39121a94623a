package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New は設定に応じた zap.Logger を構築します。format が "console" の場合は
// 開発向け、それ以外は JSON の本番向け構成になります。
func New(level, format string) (*zap.Logger, error) {
	lv := zapcore.InfoLevel
	switch level {
	case "debug":
		lv = zapcore.DebugLevel
	case "warn":
		lv = zapcore.WarnLevel
	case "error":
		lv = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lv)

	return cfg.Build()
}
