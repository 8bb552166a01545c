package main

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/John-Robertt/imdbmeta/internal/app/gather"
	"github.com/John-Robertt/imdbmeta/internal/config"
)

// Dependencies 是各子命令共享的运行环境（通过 kong.Bind 注入）。
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Cwd    string

	Globals Globals

	NewScraper func(eff config.EffectiveConfig, log *zap.Logger) (gather.Scraper, error)
}

// Globals 是所有子命令通用的参数。
type Globals struct {
	Config string `short:"c" help:"配置文件路径（默认自动发现 ./imdbmeta.{json,yaml,toml}）"`
	Debug  bool   `help:"输出调试日志（控制台格式）"`
}

// CLI 定义 kong 的命令结构。
type CLI struct {
	Globals

	Gather GatherCmd `cmd:"" help:"抓取影片并生成封面/Tags.xml/movie.nfo（默认 dry-run）"`
	Scrape ScrapeCmd `cmd:"" help:"只抓取并输出影片元数据 JSON"`
}

// GatherCmd 是 "gather" 子命令。
type GatherCmd struct {
	URL       string   `arg:"" help:"IMDb 影片页地址，例如 https://www.imdb.com/title/tt0111161/"`
	Languages []string `short:"l" name:"lang" sep:"," help:"音轨语言（ISO 639 代码，可重复或逗号分隔）"`
	Subtitles []string `short:"s" name:"subs" sep:"," help:"字幕语言（ISO 639 代码，可重复或逗号分隔）"`
	Out       string   `short:"o" help:"输出目录（默认配置 out_dir 或当前目录）"`
	Apply     *bool    `help:"执行落盘（默认 dry-run）；支持 --apply=false 覆盖配置中的 apply=true"`
}

// ScrapeCmd 是 "scrape" 子命令。
type ScrapeCmd struct {
	URL string `arg:"" help:"IMDb 影片页地址"`
}
