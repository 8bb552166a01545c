package provider

import (
	"fmt"
	"strings"
)

// HTTPStatusError 表示站点返回了非 2xx 的 HTTP 状态码。
// Fetcher 可以返回该错误，让上层生成更可操作的 error_msg。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}

// Stage 取值。
const (
	StageFetch = "fetch"
	StageParse = "parse"
	StageBuild = "build"
)

// Error 是抓取编排中的可追溯错误。
// 上层据此把失败归类为 fetch_failed / parse_failed / missing_field，并写入 report。
type Error struct {
	Stage string // "fetch" / "parse" / "build"
	URL   string
	Err   error
}

func (e *Error) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("stage=%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("stage=%s url=%s: %v", e.Stage, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
