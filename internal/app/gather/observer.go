package gather

import (
	"time"

	"github.com/John-Robertt/imdbmeta/internal/config"
	"github.com/John-Robertt/imdbmeta/internal/domain"
)

// Observer 用于把“阶段/文件结果”从核心执行流程中解耦出来。
//
// 约束：
// - gather 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）
// - Observer 的实现必须并发安全
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用。
	OnStart(eff config.EffectiveConfig, req Request)
	// OnPhaseDone 在阶段结束时调用（validate / scrape / render / write）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnFileDone 在每个 sidecar 写入（或在 dry-run 中规划）后调用。
	OnFileDone(f domain.FileResult)
}
