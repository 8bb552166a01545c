package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/John-Robertt/imdbmeta/internal/domain"
	"github.com/John-Robertt/imdbmeta/internal/infra/fsx"
	"github.com/John-Robertt/imdbmeta/internal/provider"
)

// Store 提供 <root>/cache/pages/ 下的页面缓存读写。
//
// 约束：
// - dry-run：只允许读（ReadOnly=true）
// - apply：允许写（ReadOnly=false）
// - 文件名是页面 URL 的 xxhash（十六进制），与 URL 一一对应
type Store struct {
	Root     string
	ReadOnly bool
}

var ErrReadOnly = errors.New("cache: read-only")

func New(root string, readOnly bool) Store {
	return Store{
		Root:     filepath.Clean(strings.TrimSpace(root)),
		ReadOnly: readOnly,
	}
}

func (s Store) dir() string {
	return filepath.Join(s.Root, "cache", "pages")
}

func pageName(url string) string {
	return fmt.Sprintf("%016x.html", xxhash.Sum64String(url))
}

// PagePath 返回 url 对应的缓存文件路径。
func (s Store) PagePath(url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("url 不能为空")
	}
	return filepath.Join(s.dir(), pageName(url)), nil
}

func (s Store) ReadPage(url string) ([]byte, bool, error) {
	path, err := s.PagePath(url)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s Store) WritePage(url string, page []byte) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("url 不能为空")
	}
	return fsx.WriteFileAtomicReplace(s.dir(), pageName(url), page)
}

// Fetcher 给任意 provider.Fetcher 加上页面缓存：文本走缓存，图片直通。
//
// 缓存读写失败只记日志，不影响抓取结果。
type Fetcher struct {
	Next  provider.Fetcher
	Store Store
	Log   *zap.Logger
}

var _ provider.Fetcher = (*Fetcher)(nil)

func (f *Fetcher) logger() *zap.Logger {
	if f.Log == nil {
		return zap.NewNop()
	}
	return f.Log
}

func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	log := f.logger()
	b, ok, err := f.Store.ReadPage(url)
	if err != nil {
		log.Warn("读取页面缓存失败", zap.String("url", url), zap.Error(err))
	}
	if ok {
		log.Debug("页面缓存命中", zap.String("url", url))
		return string(b), nil
	}

	page, err := f.Next.FetchText(ctx, url)
	if err != nil {
		return "", err
	}
	if !f.Store.ReadOnly {
		if err := f.Store.WritePage(url, []byte(page)); err != nil {
			log.Warn("写入页面缓存失败", zap.String("url", url), zap.Error(err))
		}
	}
	return page, nil
}

func (f *Fetcher) FetchImage(ctx context.Context, url string) (*domain.Cover, error) {
	return f.Next.FetchImage(ctx, url)
}
