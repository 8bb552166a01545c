package gather

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/John-Robertt/imdbmeta/internal/config"
	"github.com/John-Robertt/imdbmeta/internal/domain"
	"github.com/John-Robertt/imdbmeta/internal/infra/cache"
	"github.com/John-Robertt/imdbmeta/internal/infra/fsx"
	"github.com/John-Robertt/imdbmeta/internal/infra/httpx"
	"github.com/John-Robertt/imdbmeta/internal/infra/imgx"
	"github.com/John-Robertt/imdbmeta/internal/naming"
	"github.com/John-Robertt/imdbmeta/internal/nfo"
	"github.com/John-Robertt/imdbmeta/internal/provider"
	"github.com/John-Robertt/imdbmeta/internal/provider/imdb"
	"github.com/John-Robertt/imdbmeta/internal/tags"
)

// Scraper 是 gather 依赖的抓取能力（provider.Scraper 的抽象，便于测试替换）。
type Scraper interface {
	Scrape(ctx context.Context, u domain.MovieURL) (*domain.Movie, error)
}

// Request 是一次 gather 的输入。
type Request struct {
	URL       string
	Languages []string // 音轨语言，至少一个
	Subtitles []string // 字幕语言，可为空
}

const (
	KindCover = "cover"
	KindTags  = "tags"
	KindNFO   = "nfo"
)

// NewScraper 按配置组装抓取链路：httpx.Client（可选 cache.Fetcher 包裹）+ imdb.Factory。
func NewScraper(eff config.EffectiveConfig, log *zap.Logger) (*provider.Scraper, error) {
	if log == nil {
		log = zap.NewNop()
	}
	client, err := httpx.NewClient(eff.HTTPOptions(), log.Named("http"))
	if err != nil {
		return nil, err
	}
	var f provider.Fetcher = client
	if eff.Cache {
		f = &cache.Fetcher{
			Next:  client,
			Store: cache.New(eff.OutDir, !eff.Apply),
			Log:   log.Named("cache"),
		}
	}
	return &provider.Scraper{Fetcher: f, Factory: imdb.Factory{}, Logger: log.Named("scrape")}, nil
}

// Execute 执行一次 gather（dry-run/apply），并返回对外稳定的 GatherReport。
func Execute(ctx context.Context, eff config.EffectiveConfig, s Scraper, req Request) domain.GatherReport {
	return ExecuteWithObserver(ctx, eff, s, req, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 输出阶段信息。
//
// 流程：校验输入 -> 抓取 -> 生成 sidecar -> （apply）写入 out_dir。
// 无论成功失败，Movie 持有的封面都会在返回前释放。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, s Scraper, req Request, obs Observer) domain.GatherReport {
	if obs == nil {
		obs = nopObserver{}
	}
	obs.OnStart(eff, req)

	r := domain.GatherReport{
		URL:       strings.TrimSpace(req.URL),
		DryRun:    !eff.Apply,
		StartedAt: time.Now().UTC(),
	}
	finish := func() domain.GatherReport {
		r.FinishedAt = time.Now().UTC()
		r.Finalize()
		return r
	}
	fail := func(code, msg string) domain.GatherReport {
		r.Status = domain.StatusFailed
		r.ErrorCode = code
		r.ErrorMsg = msg
		return finish()
	}

	// 1) 输入校验：全部在 I/O 之前完成。
	phase := time.Now()
	u, err := domain.ParseMovieURL(req.URL)
	if err != nil {
		if errors.Is(err, domain.ErrNotMovieURL) {
			return fail(domain.ErrCodeNotMovieURL, fmt.Sprintf("不是 IMDb 影片详情页地址（形如 https://www.imdb.com/title/tt0111161/）：%q", r.URL))
		}
		return fail(domain.ErrCodeInvalidURL, fmt.Sprintf("不是有效的 URL：%q", r.URL))
	}
	langs, err := domain.ParseLanguages(req.Languages)
	if err != nil {
		return fail(domain.ErrCodeInvalidArgs, fmt.Sprintf("音轨语言无效：%v", err))
	}
	if len(langs) == 0 {
		return fail(domain.ErrCodeInvalidArgs, "至少需要一个音轨语言（--lang）")
	}
	subs, err := domain.ParseLanguages(req.Subtitles)
	if err != nil {
		return fail(domain.ErrCodeInvalidArgs, fmt.Sprintf("字幕语言无效：%v", err))
	}
	obs.OnPhaseDone("validate", map[string]any{"title_id": u.TitleID(), "languages": len(langs), "subtitles": len(subs)}, time.Since(phase))

	// 2) 抓取。
	phase = time.Now()
	movie, err := s.Scrape(ctx, u)
	if err != nil {
		code, msg := classifyScrapeError(err)
		return fail(code, msg)
	}
	defer movie.Release()
	r.Movie = domain.Summarize(u.TitleID(), movie)
	r.FileName = naming.FileName(movie, langs, subs)
	obs.OnPhaseDone("scrape", map[string]any{"title": movie.Title(), "year": movie.Year()}, time.Since(phase))

	// 3) 生成 sidecar（dry-run 也生成，用于尽早暴露问题）。
	phase = time.Now()
	outs, err := render(eff, u, movie, langs, subs)
	if err != nil {
		return fail(domain.ErrCodeIOFailed, fmt.Sprintf("生成文件失败：%v", err))
	}
	obs.OnPhaseDone("render", map[string]any{"files": len(outs)}, time.Since(phase))

	// 4) 写入。
	phase = time.Now()
	for _, o := range outs {
		fr := domain.FileResult{Path: filepath.Join(eff.OutDir, o.name), Kind: o.kind, Status: domain.FileStatusPlanned}
		if eff.Apply {
			if err := fsx.WriteFile(eff.OutDir, o.name, o.data, eff.Overwrite); err != nil {
				fr.Status = domain.FileStatusFailed
				r.Files = append(r.Files, fr)
				obs.OnFileDone(fr)
				if fsx.IsTargetConflict(err) {
					return fail(domain.ErrCodeTargetConflict, fmt.Sprintf("目标已存在或类型冲突：%q（如需覆盖请设置 overwrite=true）", fr.Path))
				}
				return fail(domain.ErrCodeIOFailed, fmt.Sprintf("写入 %s 失败：%v", o.kind, err))
			}
			fr.Status = domain.FileStatusWritten
		}
		r.Files = append(r.Files, fr)
		obs.OnFileDone(fr)
	}
	obs.OnPhaseDone("write", map[string]any{"files": len(r.Files), "apply": eff.Apply}, time.Since(phase))

	if eff.Apply {
		r.Status = domain.StatusProcessed
	} else {
		r.Status = domain.StatusPlanned
	}
	return finish()
}

type output struct {
	kind string
	name string
	data []byte
}

func render(eff config.EffectiveConfig, u domain.MovieURL, m *domain.Movie, langs, subs []domain.Language) ([]output, error) {
	cover, err := m.Cover()
	if err != nil {
		return nil, fmt.Errorf("封面不可用：%w", err)
	}
	coverJPEG, err := imgx.EncodeJPEG(cover)
	if err != nil {
		return nil, fmt.Errorf("封面编码失败：%w", err)
	}
	tagsXML, err := tags.Encode(m, langs, subs, eff.Tags)
	if err != nil {
		return nil, fmt.Errorf("tags 编码失败：%w", err)
	}
	outs := []output{
		{kind: KindCover, name: eff.CoverName, data: coverJPEG},
		{kind: KindTags, name: eff.TagsName, data: tagsXML},
	}
	if eff.NFO {
		b, err := nfo.Encode(m, nfo.Options{TitleID: u.TitleID(), Website: u.String(), Thumb: eff.CoverName})
		if err != nil {
			return nil, fmt.Errorf("nfo 编码失败：%w", err)
		}
		outs = append(outs, output{kind: KindNFO, name: config.DefaultNFOName, data: b})
	}
	return outs, nil
}

// classifyScrapeError 把抓取错误映射为 error_code + 可操作的 error_msg。
func classifyScrapeError(err error) (string, string) {
	if domain.IsMissingField(err) {
		return domain.ErrCodeMissingField, fmt.Sprintf("页面缺少必需字段，页面结构可能已变化：%v", err)
	}
	var pe *provider.Error
	if errors.As(err, &pe) {
		switch pe.Stage {
		case provider.StageFetch:
			return domain.ErrCodeFetchFailed, humanizeFetchError(pe.URL, pe.Err)
		case provider.StageParse:
			return domain.ErrCodeParseFailed, humanizeParseError(pe.URL, pe.Err)
		}
	}
	return domain.ErrCodeFetchFailed, fmt.Sprintf("抓取失败：%v", err)
}

func humanizeFetchError(url string, err error) string {
	// HTTP 非 2xx：尽量给出可操作提示（反爬/限流是最常见问题）。
	var hs *provider.HTTPStatusError
	if errors.As(err, &hs) {
		loc := strings.TrimSpace(hs.Location)
		switch hs.StatusCode {
		case 403, 429:
			return fmt.Sprintf("%s 返回 HTTP %d（可能触发反爬/限流）。建议降低 rate_limit 或配置 proxy.url。", url, hs.StatusCode)
		case 404:
			return fmt.Sprintf("%s 返回 HTTP 404（影片不存在或地址有误）。", url)
		default:
			if loc != "" {
				return fmt.Sprintf("%s 返回 HTTP %d（重定向）：%s", url, hs.StatusCode, loc)
			}
			return fmt.Sprintf("%s 返回 HTTP %d。", url, hs.StatusCode)
		}
	}

	low := strings.ToLower(err.Error())
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(low, "timeout") {
		return fmt.Sprintf("%s 抓取超时。建议检查网络/代理后重试。", url)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Sprintf("%s 抓取已取消。", url)
	}
	if strings.Contains(low, "tls") || strings.Contains(low, "handshake") {
		return fmt.Sprintf("%s 连接失败（TLS/SSL）。建议配置 proxy.url 或稍后重试。", url)
	}
	return fmt.Sprintf("%s 抓取失败：%v", url, err)
}

func humanizeParseError(url string, err error) string {
	if errors.Is(err, imdb.ErrEmptyHTML) {
		return fmt.Sprintf("%s 返回了空页面。", url)
	}
	// 解析失败通常意味着站点结构漂移或被返回了非详情页内容。
	return fmt.Sprintf("%s 解析失败（站点结构可能变化）：%v", url, err)
}

type nopObserver struct{}

func (nopObserver) OnStart(config.EffectiveConfig, Request)           {}
func (nopObserver) OnPhaseDone(string, map[string]any, time.Duration) {}
func (nopObserver) OnFileDone(domain.FileResult)                      {}
