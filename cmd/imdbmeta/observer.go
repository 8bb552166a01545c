package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/John-Robertt/imdbmeta/internal/app/gather"
	"github.com/John-Robertt/imdbmeta/internal/config"
	"github.com/John-Robertt/imdbmeta/internal/domain"
)

var _ gather.Observer = (*logObserver)(nil)

// logObserver 把 gather 的事件写成结构化日志（stderr），不影响 stdout 的 JSON 输出。
type logObserver struct {
	log *zap.Logger
}

func newLogObserver(log *zap.Logger) *logObserver {
	if log == nil {
		log = zap.NewNop()
	}
	return &logObserver{log: log.Named("gather")}
}

func (o *logObserver) OnStart(eff config.EffectiveConfig, req gather.Request) {
	o.log.Info("开始",
		zap.String("url", req.URL),
		zap.Bool("apply", eff.Apply),
		zap.String("out_dir", eff.OutDir),
		zap.String("config", eff.Source),
	)
}

func (o *logObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	zf := make([]zap.Field, 0, len(fields)+2)
	zf = append(zf, zap.String("phase", name), zap.Duration("took", dur))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	o.log.Debug("阶段完成", zf...)
}

func (o *logObserver) OnFileDone(f domain.FileResult) {
	lvl := o.log.Info
	if f.Status == domain.FileStatusFailed {
		lvl = o.log.Warn
	}
	lvl("文件", zap.String("kind", f.Kind), zap.String("path", f.Path), zap.String("status", f.Status))
}
