// Package tags 生成 Matroska 全局标签文件（mkvmerge --global-tags 可直接读取）。
package tags

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/John-Robertt/imdbmeta/internal/domain"
)

// 多值字段的分隔符。
const Separator = "/"

// Names 是每个字段在 <Name> 中使用的标签名（可配置）。
type Names struct {
	Title     string `mapstructure:"title"`
	Years     string `mapstructure:"years"`
	Genres    string `mapstructure:"genres"`
	Directors string `mapstructure:"directors"`
	Writers   string `mapstructure:"writers"`
	Cast      string `mapstructure:"cast"`
	Languages string `mapstructure:"languages"`
	Subtitles string `mapstructure:"subtitles"`
}

// DefaultNames 返回默认标签名。
func DefaultNames() Names {
	return Names{
		Title:     "Title",
		Years:     "Years",
		Genres:    "Genres",
		Directors: "Directors",
		Writers:   "Writers",
		Cast:      "Actors",
		Languages: "Languages",
		Subtitles: "Subtitles",
	}
}

// Empty 返回第一个为空白的字段名（用于配置校验）；全部非空返回 ""。
func (n Names) Empty() string {
	fields := []struct{ key, val string }{
		{"title", n.Title}, {"years", n.Years}, {"genres", n.Genres}, {"directors", n.Directors},
		{"writers", n.Writers}, {"cast", n.Cast}, {"languages", n.Languages}, {"subtitles", n.Subtitles},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.val) == "" {
			return f.key
		}
	}
	return ""
}

// Encode 生成 <Tags><Tag><Simple><Name/><String/></Simple>...</Tag></Tags>。
//
// 规则：
// - 顺序固定：标题、年份、类型、导演、编剧、演员、音轨语言、字幕语言
// - 编剧与字幕为空时省略对应条目；其它条目总是输出
// - 语言一律小写
func Encode(m *domain.Movie, languages, subtitles []domain.Language, n Names) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	tag := doc.CreateElement("Tags").CreateElement("Tag")

	simple := func(name, value string) {
		s := tag.CreateElement("Simple")
		s.CreateElement("Name").SetText(name)
		s.CreateElement("String").SetText(value)
	}

	simple(n.Title, m.Title())
	simple(n.Years, strconv.Itoa(m.Year()))
	simple(n.Genres, strings.Join(m.Genres(), Separator))
	simple(n.Directors, strings.Join(m.Directors(), Separator))
	if w := m.Writers(); len(w) > 0 {
		simple(n.Writers, strings.Join(w, Separator))
	}
	simple(n.Cast, strings.Join(m.Cast(), Separator))
	simple(n.Languages, joinLanguages(languages))
	if len(subtitles) > 0 {
		simple(n.Subtitles, joinLanguages(subtitles))
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

func joinLanguages(in []domain.Language) string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		out = append(out, strings.ToLower(string(l)))
	}
	return strings.Join(out, Separator)
}
