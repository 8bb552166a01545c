package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrLanguageInvalid   = fmt.Errorf("%w: language must be a 2-3 letter code", ErrInvalidInput)
	ErrLanguageDuplicate = fmt.Errorf("%w: duplicate language", ErrInvalidInput)
)

var languageRE = regexp.MustCompile(`^[a-z]{2,3}$`)

// Language 是小写的 ISO-639 语言代码（例如 "en"、"lit"）。
type Language string

// ParseLanguage 规范化为小写并校验。
func ParseLanguage(s string) (Language, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if !languageRE.MatchString(v) {
		return "", fmt.Errorf("%w: %q", ErrLanguageInvalid, s)
	}
	return Language(v), nil
}

// ParseLanguages 逐个解析并保持输入顺序；重复项视为错误。
func ParseLanguages(in []string) ([]Language, error) {
	out := make([]Language, 0, len(in))
	seen := make(map[Language]struct{}, len(in))
	for _, s := range in {
		l, err := ParseLanguage(s)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[l]; ok {
			return nil, fmt.Errorf("%w: %q", ErrLanguageDuplicate, l)
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out, nil
}
