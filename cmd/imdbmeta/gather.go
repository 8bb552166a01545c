package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/John-Robertt/imdbmeta/internal/app/gather"
	"github.com/John-Robertt/imdbmeta/internal/config"
	"github.com/John-Robertt/imdbmeta/internal/domain"
	"github.com/John-Robertt/imdbmeta/internal/logging"
)

// Run 执行 gather：stdout 必须且仅输出一个 GatherReport JSON。
func (c *GatherCmd) Run(deps *Dependencies) error {
	cli := config.CLIArgs{
		ConfigFile: deps.Globals.Config,
		OutDir:     c.Out,
		Debug:      deps.Globals.Debug,
	}
	if c.Apply != nil {
		cli.Apply = *c.Apply
		cli.ApplySet = true
	}

	eff, err := config.LoadEffective(deps.Cwd, cli)
	if err != nil {
		r := reportForConfigError(c.URL, cli, err)
		if e := emitReport(deps.Stdout, r); e != nil {
			return e
		}
		fmt.Fprintln(deps.Stderr, err)
		return errReported
	}

	log := logging.New(eff.Debug, deps.Stderr)
	defer func() { _ = log.Sync() }()

	s, err := deps.NewScraper(eff, log)
	if err != nil {
		r := domain.GatherReport{
			URL:       strings.TrimSpace(c.URL),
			DryRun:    !eff.Apply,
			StartedAt: time.Now().UTC(),
			Status:    domain.StatusFailed,
			ErrorCode: domain.ErrCodeConfigInvalid,
			ErrorMsg:  fmt.Sprintf("初始化网络客户端失败：%v", err),
		}
		r.FinishedAt = r.StartedAt
		r.Finalize()
		if e := emitReport(deps.Stdout, r); e != nil {
			return e
		}
		return errReported
	}

	r := gather.ExecuteWithObserver(deps.Ctx, eff, s, gather.Request{
		URL:       c.URL,
		Languages: c.Languages,
		Subtitles: c.Subtitles,
	}, newLogObserver(log))

	if err := emitReport(deps.Stdout, r); err != nil {
		return err
	}
	log.Info("完成",
		zap.String("status", r.Status),
		zap.String("error_code", r.ErrorCode),
		zap.String("file_name", r.FileName),
		zap.Int("files", len(r.Files)),
	)
	if r.Status == domain.StatusFailed {
		fmt.Fprintf(deps.Stderr, "%s: %s\n", r.ErrorCode, r.ErrorMsg)
		return errReported
	}
	return nil
}

func emitReport(w io.Writer, r domain.GatherReport) error {
	if err := json.NewEncoder(w).Encode(r); err != nil {
		return fmt.Errorf("输出报告失败：%w", err)
	}
	return nil
}

func reportForConfigError(rawURL string, cli config.CLIArgs, err error) domain.GatherReport {
	now := time.Now().UTC()
	code := config.Code(err)
	if code == "" {
		code = domain.ErrCodeConfigInvalid
	}
	r := domain.GatherReport{
		URL:        strings.TrimSpace(rawURL),
		DryRun:     !(cli.ApplySet && cli.Apply),
		StartedAt:  now,
		FinishedAt: now,
		Status:     domain.StatusFailed,
		ErrorCode:  code,
		ErrorMsg:   err.Error(),
	}
	r.Finalize()
	return r
}
