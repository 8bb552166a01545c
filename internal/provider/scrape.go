package provider

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/imdbmeta/internal/domain"
)

// Scraper 编排一次影片抓取：详情页 + 封面 与 演职员页 并发进行，全部完成后组装 Movie。
//
// 约束：
// - 要么返回完整的 Movie，要么返回错误；不返回半成品
// - 任何失败路径上，已下载的封面都会被释放
// - 两个 goroutine 只写各自的局部变量，errgroup.Wait 之后才读取
type Scraper struct {
	Fetcher Fetcher
	Factory ParserFactory
	Logger  *zap.Logger
}

// Scrape 抓取并解析 u 指向的影片。
func (s *Scraper) Scrape(ctx context.Context, u domain.MovieURL) (movie *domain.Movie, err error) {
	if u.IsZero() {
		return nil, fmt.Errorf("%w: movie url 为空", domain.ErrInvalidInput)
	}
	if s.Fetcher == nil || s.Factory == nil {
		return nil, fmt.Errorf("scraper 未配置 fetcher/factory")
	}
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("title_id", u.TitleID()))

	var (
		detail  DetailParser
		cover   *domain.Cover
		credits CreditsParser
	)
	defer func() {
		if err != nil && cover != nil {
			cover.Release()
			log.Warn("抓取失败，已释放封面", zap.Error(err))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pageURL := u.String()
		log.Debug("抓取详情页", zap.String("url", pageURL))
		html, err := s.Fetcher.FetchText(gctx, pageURL)
		if err != nil {
			return &Error{Stage: StageFetch, URL: pageURL, Err: err}
		}
		p, err := s.Factory.NewDetailParser(html)
		if err != nil {
			return &Error{Stage: StageParse, URL: pageURL, Err: err}
		}
		detail = p

		coverURL := p.CoverURL()
		log.Debug("下载封面", zap.String("url", coverURL))
		c, err := p.Cover(gctx, s.Fetcher)
		if err != nil {
			stage := StageFetch
			if errors.Is(err, domain.ErrPageDefect) {
				stage = StageParse
			}
			return &Error{Stage: stage, URL: coverURL, Err: err}
		}
		cover = c
		return nil
	})
	g.Go(func() error {
		pageURL := u.CreditsURL()
		log.Debug("抓取演职员页", zap.String("url", pageURL))
		html, err := s.Fetcher.FetchText(gctx, pageURL)
		if err != nil {
			return &Error{Stage: StageFetch, URL: pageURL, Err: err}
		}
		p, err := s.Factory.NewCreditsParser(html)
		if err != nil {
			return &Error{Stage: StageParse, URL: pageURL, Err: err}
		}
		credits = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	year, err := detail.Year()
	if err != nil {
		return nil, &Error{Stage: StageParse, URL: u.String(), Err: err}
	}
	movie, err = domain.NewMovie(
		detail.Title(),
		year,
		detail.Genres(),
		credits.Directors(),
		credits.Writers(),
		credits.Cast(),
		cover,
	)
	if err != nil {
		return nil, &Error{Stage: StageBuild, URL: u.String(), Err: err}
	}
	log.Info("抓取完成",
		zap.String("title", movie.Title()),
		zap.Int("year", movie.Year()),
		zap.Int("directors", len(movie.Directors())),
		zap.Int("cast", len(movie.Cast())),
	)
	return movie, nil
}
