package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L 行程共用的 logger，import 後即可用
var L *zap.Logger

func init() {
	L = newLogger(os.Getenv("LOG_LEVEL"))
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// LOG_LEVEL 沒設或設錯就維持 info
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	return l
}

// WithComponent 替每一層掛上 component 欄位，報名高峰看 log 才分得出是
// handler、service 還是 queue 在叫
func WithComponent(name string) *zap.Logger {
	return L.With(zap.String("component", name))
}
