package nfo

import (
	"encoding/xml"
	"strings"

	"github.com/John-Robertt/imdbmeta/internal/domain"
)

type movie struct {
	XMLName xml.Name `xml:"movie"`

	Title         string `xml:"title"`
	OriginalTitle string `xml:"originaltitle"`
	Year          int    `xml:"year,omitempty"`

	Genres    []string `xml:"genre,omitempty"`
	Directors []string `xml:"director,omitempty"`
	Credits   []string `xml:"credits,omitempty"`
	Actors    []actor  `xml:"actor,omitempty"`

	Thumb    string   `xml:"thumb,omitempty"`
	UniqueID uniqueID `xml:"uniqueid"`
	Website  string   `xml:"website,omitempty"`
}

type actor struct {
	Name  string `xml:"name"`
	Order int    `xml:"order"`
}

type uniqueID struct {
	Type    string `xml:"type,attr"`
	Default bool   `xml:"default,attr"`
	Value   string `xml:",chardata"`
}

// Options 是 NFO 中不属于影片本身的引用信息。
type Options struct {
	TitleID string // IMDb id（tt...）
	Website string // 详情页 URL
	Thumb   string // 封面文件名（相对 NFO 所在目录）
}

// Encode 把 Movie 转成 Kodi/Jellyfin/Emby 可读取的电影 NFO（XML）。
//
// 规则：
// - 列表去空白、去重、保持输入顺序
// - 编剧写入 <credits>，演员按出现顺序编号（order 从 0 开始）
func Encode(m *domain.Movie, o Options) ([]byte, error) {
	title := strings.TrimSpace(m.Title())
	out := movie{
		Title:         title,
		OriginalTitle: title,
		Year:          m.Year(),

		Genres:    normList(m.Genres()),
		Directors: normList(m.Directors()),
		Credits:   normList(m.Writers()),

		Thumb: strings.TrimSpace(o.Thumb),
		UniqueID: uniqueID{
			Type:    "imdb",
			Default: true,
			Value:   strings.TrimSpace(o.TitleID),
		},
		Website: strings.TrimSpace(o.Website),
	}

	cast := normList(m.Cast())
	if len(cast) > 0 {
		out.Actors = make([]actor, 0, len(cast))
		for i, a := range cast {
			out.Actors = append(out.Actors, actor{Name: a, Order: i})
		}
	}

	b, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	// 约定：输出带 standalone="yes" 的 XML 头，便于与常见刮削器产物兼容。
	const header = `<?xml version="1.0" encoding="UTF-8" standalone="yes" ?>` + "\n"
	return append([]byte(header), b...), nil
}

func normList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	m := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := m[s]; ok {
			continue
		}
		m[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
