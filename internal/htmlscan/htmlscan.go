// Package htmlscan 提供面向半结构化 HTML 的词法扫描原语。
//
// 这些函数只做“找标记 / 截片段”，不构建 DOM；调用方用它们组合出站点相关的抽取规则。
//
// 约束：
// - 任何函数都不返回错误：标记缺失时退化为空串或原串（由各函数说明）
// - 标记按字节比较；多字节标记的查找不区分 ASCII 大小写（IndexFold）
package htmlscan

import "strings"

// SkipPast 返回 s 中第一个 marker 之后的部分。
// marker 不存在或恰好是最后一个字符时返回 ""。
func SkipPast(s string, marker byte) string {
	i := strings.IndexByte(s, marker)
	if i < 0 || i+1 >= len(s) {
		return ""
	}
	return s[i+1:]
}

// TakeUntil 返回 s 中第一个 marker 之前的部分；marker 不存在时返回整个 s。
func TakeUntil(s string, marker byte) string {
	if i := strings.IndexByte(s, marker); i >= 0 {
		return s[:i]
	}
	return s
}

// InnerText 跳过第一个 skip，截取到随后的第一个 take，并去掉首尾空白。
func InnerText(s string, skip, take byte) string {
	return strings.TrimSpace(TakeUntil(SkipPast(s, skip), take))
}

// Text 是 InnerText(s, '>', '<')：紧跟在标签开头之后的文本。
func Text(s string) string {
	return InnerText(s, '>', '<')
}

// IndexFold 在 s 中查找 marker（ASCII 不区分大小写），返回字节下标；找不到返回 -1。
func IndexFold(s, marker string) int {
	n := len(marker)
	if n == 0 {
		return 0
	}
	first := lower(marker[0])
	for i := 0; i+n <= len(s); i++ {
		if lower(s[i]) != first {
			continue
		}
		if strings.EqualFold(s[i:i+n], marker) {
			return i
		}
	}
	return -1
}

// From 返回从 marker 开始（含 marker）的后缀；ok=false 表示 marker 不存在。
func From(s, marker string) (rest string, ok bool) {
	i := IndexFold(s, marker)
	if i < 0 {
		return "", false
	}
	return s[i:], true
}

// Section 返回从 start（含）到其后第一个 end（不含）之间的片段。
// 任一标记缺失时 ok=false。
func Section(s, start, end string) (section string, ok bool) {
	rest, ok := From(s, start)
	if !ok {
		return "", false
	}
	j := IndexFold(rest, end)
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}

func lower(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
