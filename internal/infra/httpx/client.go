package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/John-Robertt/imdbmeta/internal/domain"
	"github.com/John-Robertt/imdbmeta/internal/infra/imgx"
	"github.com/John-Robertt/imdbmeta/internal/provider"
)

const (
	maxPageBytes  = 8 << 20
	maxImageBytes = 16 << 20
)

// Client 是 provider.Fetcher 的 HTTP 实现：页面与图片分别走各自的 http.Client。
type Client struct {
	meta  *http.Client
	image *http.Client
	log   *zap.Logger
}

var _ provider.Fetcher = (*Client)(nil)

// NewClient 按 o 构造页面与图片 client，两者共享同一个按 host 限速器。
func NewClient(o Options, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	lim := NewHostLimiter(o.RateLimit)
	meta, err := NewMetaClient(o, lim)
	if err != nil {
		return nil, err
	}
	image, err := NewImageClient(o, lim)
	if err != nil {
		return nil, err
	}
	return &Client{meta: meta, image: image, log: log}, nil
}

// NewClientFrom 用现成的 http.Client 构造（测试或自定义传输）。
func NewClientFrom(meta, image *http.Client, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{meta: meta, image: image, log: log}
}

func (c *Client) FetchText(ctx context.Context, url string) (string, error) {
	b, err := c.get(ctx, c.meta, url, maxPageBytes)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Client) FetchImage(ctx context.Context, url string) (*domain.Cover, error) {
	b, err := c.get(ctx, c.image, url, maxImageBytes)
	if err != nil {
		return nil, err
	}
	cover, err := imgx.NewCover(b)
	if err != nil {
		return nil, fmt.Errorf("封面不是有效图片：%w", err)
	}
	return cover, nil
}

func (c *Client) get(ctx context.Context, hc *http.Client, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &provider.HTTPStatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Location:   resp.Header.Get("Location"),
		}
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("响应过大（超过 %d 字节）：%s", limit, url)
	}
	c.log.Debug("GET 完成", zap.String("url", url), zap.Int("status", resp.StatusCode), zap.Int("bytes", len(b)))
	return b, nil
}
