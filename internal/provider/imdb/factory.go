// Package imdb 实现 IMDb 页面的词法解析器（详情页与 fullcredits 页）。
package imdb

import "github.com/John-Robertt/imdbmeta/internal/provider"

// Factory 是 provider.ParserFactory 的 IMDb 实现；无状态，零值可用。
type Factory struct{}

var _ provider.ParserFactory = Factory{}

func (Factory) NewDetailParser(page string) (provider.DetailParser, error) {
	p, err := NewMovieParser(page)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (Factory) NewCreditsParser(page string) (provider.CreditsParser, error) {
	p, err := NewCreditsParser(page)
	if err != nil {
		return nil, err
	}
	return p, nil
}
