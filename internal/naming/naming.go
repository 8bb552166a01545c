// Package naming 生成影片文件名：
// "<标题> (<年份>); <类型>; <音轨语言>[; <字幕语言>].mkv"
package naming

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/John-Robertt/imdbmeta/internal/domain"
)

const (
	listSeparator  = ", "
	partSeparator  = "; "
	fileExtension  = ".mkv"
	invalidInNames = `<>:"/\|?*`
)

// FileName 返回不含目录的文件名。标题中的非法文件名字符会被删除。
func FileName(m *domain.Movie, languages, subtitles []domain.Language) string {
	var b strings.Builder
	b.WriteString(cleanTitle(m.Title()))
	b.WriteString(" (")
	b.WriteString(strconv.Itoa(m.Year()))
	b.WriteString(")")
	b.WriteString(partSeparator)
	b.WriteString(strings.Join(m.Genres(), listSeparator))
	b.WriteString(partSeparator)
	b.WriteString(upper(languages))
	if len(subtitles) > 0 {
		b.WriteString(partSeparator)
		b.WriteString(upper(subtitles))
	}
	b.WriteString(fileExtension)
	return b.String()
}

func cleanTitle(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(invalidInNames, r) {
			return -1
		}
		return r
	}, s)
}

func upper(in []domain.Language) string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		out = append(out, strings.ToUpper(string(l)))
	}
	return strings.Join(out, listSeparator)
}
