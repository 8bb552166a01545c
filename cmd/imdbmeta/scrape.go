package main

import (
	"encoding/json"
	"fmt"

	"github.com/John-Robertt/imdbmeta/internal/config"
	"github.com/John-Robertt/imdbmeta/internal/domain"
	"github.com/John-Robertt/imdbmeta/internal/logging"
)

// Run 执行 scrape：只抓取，不写任何文件；stdout 输出 MovieSummary JSON。
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	u, err := domain.ParseMovieURL(c.URL)
	if err != nil {
		return fmt.Errorf("URL 无效：%w", err)
	}

	eff, err := config.LoadEffective(deps.Cwd, config.CLIArgs{
		ConfigFile: deps.Globals.Config,
		Debug:      deps.Globals.Debug,
	})
	if err != nil {
		return err
	}
	// scrape 从不落盘：缓存只读。
	eff.Apply = false

	log := logging.New(eff.Debug, deps.Stderr)
	defer func() { _ = log.Sync() }()

	s, err := deps.NewScraper(eff, log)
	if err != nil {
		return fmt.Errorf("初始化网络客户端失败：%w", err)
	}
	movie, err := s.Scrape(deps.Ctx, u)
	if err != nil {
		return err
	}
	defer movie.Release()

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(domain.Summarize(u.TitleID(), movie))
}
