package domain

import "strings"

// Movie 是一次成功抓取得到的影片元数据。
//
// 约束：
// - 只能通过 NewMovie 构造；不变量只在构造时检查一次，之后不可变
// - Title 非空白、Year > 0、Genres/Directors/Cast 非空；Writers 允许为空
// - Movie 持有封面；Release 释放封面，之后 Cover() 返回 ErrDisposed
type Movie struct {
	title     string
	year      int
	genres    []string
	directors []string
	writers   []string
	cast      []string
	cover     *Cover
}

// NewMovie 校验字段并组装 Movie。检查顺序固定：title、year、genres、directors、cast。
// 失败时不会接管 cover，释放由调用方负责。
func NewMovie(title string, year int, genres, directors, writers, cast []string, cover *Cover) (*Movie, error) {
	switch {
	case strings.TrimSpace(title) == "":
		return nil, ErrNoTitle
	case year <= 0:
		return nil, ErrNoYear
	case len(genres) == 0:
		return nil, ErrNoGenres
	case len(directors) == 0:
		return nil, ErrNoDirectors
	case len(cast) == 0:
		return nil, ErrNoCast
	}
	return &Movie{
		title:     title,
		year:      year,
		genres:    clone(genres),
		directors: clone(directors),
		writers:   clone(writers),
		cast:      clone(cast),
		cover:     cover,
	}, nil
}

func (m *Movie) Title() string       { return m.title }
func (m *Movie) Year() int           { return m.year }
func (m *Movie) Genres() []string    { return clone(m.genres) }
func (m *Movie) Directors() []string { return clone(m.directors) }
func (m *Movie) Writers() []string   { return clone(m.writers) }
func (m *Movie) Cast() []string      { return clone(m.cast) }

// Cover 返回封面；Release 之后（或从未有封面时）返回 ErrDisposed。
func (m *Movie) Cover() (*Cover, error) {
	if m.cover == nil || m.cover.Released() {
		return nil, ErrDisposed
	}
	return m.cover, nil
}

// Release 释放封面。可重复调用。
func (m *Movie) Release() {
	if m == nil {
		return
	}
	m.cover.Release()
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
