package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrNotURL：字符串根本不是绝对 URL。
	ErrNotURL = fmt.Errorf("%w: not an absolute url", ErrInvalidInput)
	// ErrNotMovieURL：是 URL，但不是 IMDb 影片详情页。
	ErrNotMovieURL = fmt.Errorf("%w: not an imdb movie url", ErrInvalidInput)
)

var movieURLRE = regexp.MustCompile(`^(?i)https?://(?:www\.)?imdb\.com/title/(tt\d+)/?(?:\?.*)?$`)

// MovieURL 是校验过的 IMDb 影片详情页地址（形如 https://www.imdb.com/title/tt0111161/）。
//
// 约束：
// - 零值不可用；只能通过 ParseMovieURL 得到
// - CreditsURL 总是指向同一影片的 fullcredits 页面，与原始 URL 是否带尾斜杠/查询串无关
type MovieURL struct {
	raw string
	u   *url.URL
	id  string
}

// ParseMovieURL 校验 s 并返回 MovieURL。
// 返回的错误要么是 ErrNotURL，要么是 ErrNotMovieURL（都包裹 ErrInvalidInput）。
func ParseMovieURL(s string) (MovieURL, error) {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return MovieURL{}, fmt.Errorf("%w: %q", ErrNotURL, s)
	}
	m := movieURLRE.FindStringSubmatch(s)
	if m == nil {
		return MovieURL{}, fmt.Errorf("%w: %q", ErrNotMovieURL, s)
	}
	return MovieURL{raw: s, u: u, id: strings.ToLower(m[1])}, nil
}

func (m MovieURL) String() string { return m.raw }

// TitleID 返回 IMDb 影片 id（例如 "tt0111161"）。
func (m MovieURL) TitleID() string { return m.id }

// IsZero 表示未经过 ParseMovieURL 的零值。
func (m MovieURL) IsZero() bool { return m.u == nil }

// CreditsURL 返回演职员页地址：<scheme>://<host>/title/<id>/fullcredits（丢弃查询串）。
func (m MovieURL) CreditsURL() string {
	if m.u == nil {
		return ""
	}
	path := strings.TrimRight(m.u.Path, "/")
	return m.u.Scheme + "://" + m.u.Host + path + "/fullcredits"
}
