package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/John-Robertt/imdbmeta/internal/app/gather"
	"github.com/John-Robertt/imdbmeta/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()
	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		// 失败报告已经写到 stdout；这里只补一行人类可读的原因。
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

// errReported 表示失败已经体现在 stdout 的 JSON 报告里。
var errReported = errors.New("failed")

// Main 是程序本体；字段用于测试注入。
type Main struct {
	// Cwd 为空时使用进程当前目录（配置发现与相对 out_dir 都以它为基准）。
	Cwd string

	// NewScraper 按最终配置构造抓取器；为 nil 时使用 gather.NewScraper。
	NewScraper func(eff config.EffectiveConfig, log *zap.Logger) (gather.Scraper, error)
}

// NewMain 返回带默认依赖的 Main。
func NewMain() *Main {
	return &Main{
		NewScraper: func(eff config.EffectiveConfig, log *zap.Logger) (gather.Scraper, error) {
			return gather.NewScraper(eff, log)
		},
	}
}

// Run 解析 args 并执行对应子命令。stdout 只输出一个 JSON 文档；日志与提示走 stderr。
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cwd := m.Cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("读取当前目录失败：%w", err)
		}
		cwd = wd
	}
	newScraper := m.NewScraper
	if newScraper == nil {
		newScraper = NewMain().NewScraper
	}

	deps := &Dependencies{
		Ctx:        ctx,
		Stdout:     stdout,
		Stderr:     stderr,
		Cwd:        cwd,
		NewScraper: newScraper,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("imdbmeta"),
		kong.Description("从 IMDb 影片页抓取元数据，生成封面、Tags.xml 与 movie.nfo"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("创建参数解析器失败：%w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("未指定命令。使用 'imdbmeta --help' 查看可用命令")
	}
	if len(args) == 1 && isHelp(args[0]) {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	deps.Globals = cli.Globals
	return kctx.Run(deps)
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}
