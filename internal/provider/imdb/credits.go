package imdb

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/John-Robertt/imdbmeta/internal/htmlscan"
	"github.com/John-Robertt/imdbmeta/internal/provider"
)

const (
	markerDirectors = `Directed by`
	markerWriters   = `Writing Credits`
	markerCast      = `class="cast_list"`
	markerNameCell  = `class="name"`
	markerCastCell  = `<td>`
	markerLink      = `href=`
	markerCellEnd   = `</td>`
	markerTableEnd  = `</table>`
)

// CreditsParser 从 fullcredits 页面抽取导演、编剧与演员。
//
// 约束：
// - 每个区块从起始标记到其后第一个 </table>，按行分隔符切分
// - 名字可能被 <a> 包裹，也可能是纯文本；两种都要认
// - 区块缺失返回空列表，不是错误
type CreditsParser struct {
	page string
}

var _ provider.CreditsParser = (*CreditsParser)(nil)

// NewCreditsParser 拒绝空白页面。
func NewCreditsParser(page string) (*CreditsParser, error) {
	if strings.TrimSpace(page) == "" {
		return nil, ErrEmptyHTML
	}
	return &CreditsParser{page: html.UnescapeString(page)}, nil
}

func (p *CreditsParser) Directors() []string {
	return mapRows(p.rows(markerDirectors, markerNameCell), linkOrCell)
}

func (p *CreditsParser) Writers() []string {
	return mapRows(p.rows(markerWriters, markerNameCell), linkOrCell)
}

func (p *CreditsParser) Cast() []string {
	return mapRows(p.rows(markerCast, markerCastCell), linkOrRow)
}

// Credits 一次取出三个列表。
func (p *CreditsParser) Credits() provider.Credits {
	return provider.Credits{
		Directors: p.Directors(),
		Writers:   p.Writers(),
		Cast:      p.Cast(),
	}
}

// rows 返回 start 区块内按 sep 切分后的各行（丢弃第一个分隔符之前的部分）。
func (p *CreditsParser) rows(start, sep string) []string {
	section, ok := htmlscan.Section(p.page, start, markerTableEnd)
	if !ok {
		return nil
	}
	return strings.Split(section, sep)[1:]
}

// linkOrCell：单元格内有链接取链接文本，否则取单元格文本。
func linkOrCell(row string) string {
	if k := linkIndex(row); k >= 0 {
		return htmlscan.Text(row[k:])
	}
	return htmlscan.Text(cell(row))
}

// linkOrRow：单元格内有链接取链接文本，否则取行首到第一个标签之前的文本。
func linkOrRow(row string) string {
	if k := linkIndex(row); k >= 0 {
		return htmlscan.Text(row[k:])
	}
	return strings.TrimSpace(htmlscan.TakeUntil(row, '<'))
}

// linkIndex 返回第一个单元格内 href= 在 row 中的下标；没有返回 -1。
func linkIndex(row string) int {
	return htmlscan.IndexFold(cell(row), markerLink)
}

func cell(row string) string {
	if j := htmlscan.IndexFold(row, markerCellEnd); j >= 0 {
		return row[:j]
	}
	return row
}

func mapRows(rows []string, fn func(string) string) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, fn(r))
	}
	return out
}
