// Package logging 构造 zap logger。
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 返回写到 w 的 logger（w 为 nil 时写 stderr）。
//
// - development：控制台格式、彩色级别、Debug 起步
// - 否则：JSON、Info 起步
//
// stdout 留给结构化报告，日志永远不写 stdout。
func New(development bool, w io.Writer) *zap.Logger {
	if w == nil {
		w = os.Stderr
	}
	var (
		enc   zapcore.Encoder
		level zapcore.Level
	)
	if development {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
		level = zapcore.DebugLevel
	} else {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
		level = zapcore.InfoLevel
	}
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level)
	opts := []zap.Option{zap.AddCaller()}
	if development {
		opts = append(opts, zap.Development())
	}
	return zap.New(core, opts...)
}
