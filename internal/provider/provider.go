package provider

import (
	"context"

	"github.com/John-Robertt/imdbmeta/internal/domain"
)

// TextFetcher 抓取页面正文。
type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// ImageFetcher 下载图片并交出所有权（调用方负责 Release）。
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) (*domain.Cover, error)
}

// Fetcher 是抓取边界：一次调用对应一次 GET 语义。
//
// 约束：
// - 重试、限速、代理都在 Fetcher 实现内部（infra/httpx），编排层不关心
// - 非 2xx 应返回 *HTTPStatusError，便于上层给出可操作的提示
type Fetcher interface {
	TextFetcher
	ImageFetcher
}

// DetailInfo 是详情页上能直接读出的字段；缺失字段为空值而不是错误。
type DetailInfo struct {
	Title    string
	Year     int
	Genres   []string
	CoverURL string
}

// Credits 是演职员页上的三个有序列表。
type Credits struct {
	Directors []string
	Writers   []string
	Cast      []string
}

// DetailParser 解析影片详情页。
//
// 约束：
// - 除 Year 与 Cover 外的方法都是纯函数：相同输入 => 相同输出
// - Year 仅在标记存在但内容不是数字时返回错误（包裹 domain.ErrPageDefect）
type DetailParser interface {
	Title() string
	Year() (int, error)
	Genres() []string
	CoverURL() string
	Cover(ctx context.Context, f ImageFetcher) (*domain.Cover, error)
}

// CreditsParser 解析 fullcredits 页面；区块缺失时返回空列表。
type CreditsParser interface {
	Directors() []string
	Writers() []string
	Cast() []string
}

// ParserFactory 把原始页面交给对应的解析器；唯一的失败是空白输入。
type ParserFactory interface {
	NewDetailParser(html string) (DetailParser, error)
	NewCreditsParser(html string) (CreditsParser, error)
}
