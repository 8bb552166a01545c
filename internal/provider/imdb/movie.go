package imdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/John-Robertt/imdbmeta/internal/domain"
	"github.com/John-Robertt/imdbmeta/internal/htmlscan"
	"github.com/John-Robertt/imdbmeta/internal/provider"
)

const (
	markerOriginalTitle = `class="originalTitle"`
	markerTitle         = `<h1`
	markerYear          = `id="titleYear"`
	markerSubtext       = `class="subtext"`
	markerGenreLink     = `<a href=`
	markerGenreEnd      = `class="ghost"`
	markerPoster        = `class="poster"`
	markerSrc           = `src`
)

var (
	// ErrEmptyHTML：页面为空或只有空白。
	ErrEmptyHTML = fmt.Errorf("%w: html is empty", domain.ErrInvalidInput)
	// ErrCoverNotFound：详情页上找不到海报地址。
	ErrCoverNotFound = fmt.Errorf("%w: cover not found", domain.ErrPageDefect)
)

// MovieParser 从影片详情页抽取标题、年份、类型与海报地址。
//
// 约束：
// - 构造时一次性做实体解码（之后丢弃字面量 &nbsp;），之后只读
// - 标记缺失 => 空值；只有“标记在但内容无法解释”才是错误
type MovieParser struct {
	page string
}

var _ provider.DetailParser = (*MovieParser)(nil)

// NewMovieParser 拒绝空白页面。
func NewMovieParser(page string) (*MovieParser, error) {
	if strings.TrimSpace(page) == "" {
		return nil, ErrEmptyHTML
	}
	// 先解码再去掉字面量 &nbsp;（来自 &amp;nbsp;）。
	page = strings.ReplaceAll(html.UnescapeString(page), "&nbsp;", "")
	return &MovieParser{page: page}, nil
}

// Title 优先取原始标题（本地化页面上的 originalTitle），否则取 <h1> 文本。
func (p *MovieParser) Title() string {
	if rest, ok := htmlscan.From(p.page, markerOriginalTitle); ok {
		return htmlscan.Text(rest)
	}
	if rest, ok := htmlscan.From(p.page, markerTitle); ok {
		return htmlscan.Text(rest)
	}
	return ""
}

// Year 读取 titleYear 标记后的年份，兼容年份被 <a> 包裹的写法。
// 标记不存在返回 (0, nil)。
func (p *MovieParser) Year() (int, error) {
	rest, ok := htmlscan.From(p.page, markerYear)
	if !ok {
		return 0, nil
	}
	rest = htmlscan.SkipPast(rest, '>')
	if inner := htmlscan.SkipPast(rest, '<'); !strings.HasPrefix(inner, "/") {
		rest = htmlscan.SkipPast(inner, '>')
	}
	raw := htmlscan.TakeUntil(rest, '<')
	text := strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || r == '(' || r == ')'
	})
	year, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: year %q is not a number", domain.ErrPageDefect, strings.TrimSpace(raw))
	}
	return year, nil
}

// Genres 返回 subtext 区块中、ghost 分隔符之前的所有链接文本。
func (p *MovieParser) Genres() []string {
	out := []string{}
	rest, ok := htmlscan.From(p.page, markerSubtext)
	if !ok {
		return out
	}
	section, ok := htmlscan.Section(rest, markerGenreLink, markerGenreEnd)
	if !ok {
		return out
	}
	for _, part := range strings.Split(section, markerGenreLink)[1:] {
		out = append(out, htmlscan.Text(part))
	}
	return out
}

// CoverURL 返回 poster 区块里第一个 src 的引号内的值；找不到返回 ""。
func (p *MovieParser) CoverURL() string {
	rest, ok := htmlscan.From(p.page, markerPoster)
	if !ok {
		return ""
	}
	rest, ok = htmlscan.From(rest, markerSrc)
	if !ok {
		return ""
	}
	return htmlscan.InnerText(rest, '"', '"')
}

// Cover 下载海报；封面所有权交给调用方。
func (p *MovieParser) Cover(ctx context.Context, f provider.ImageFetcher) (*domain.Cover, error) {
	u := p.CoverURL()
	if u == "" {
		return nil, ErrCoverNotFound
	}
	return f.FetchImage(ctx, u)
}

// Detail 汇总除封面下载外的所有字段。
func (p *MovieParser) Detail() (provider.DetailInfo, error) {
	year, err := p.Year()
	if err != nil {
		return provider.DetailInfo{}, err
	}
	return provider.DetailInfo{
		Title:    p.Title(),
		Year:     year,
		Genres:   p.Genres(),
		CoverURL: p.CoverURL(),
	}, nil
}
